package roster

type Observer interface {
	MutationApplied(op string)
	PersistFailed(op string)
	LoadFellBack(reason string)
}

type noopObserver struct{}

func (noopObserver) MutationApplied(string) {}

func (noopObserver) PersistFailed(string) {}

func (noopObserver) LoadFellBack(string) {}
