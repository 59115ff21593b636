package dashboard

import "bandly-go/internal/domain/roster"

// Source is the read side of the roster store.
type Source interface {
	Snapshot() roster.Snapshot
	UserName() string
	LoadWarning() error
}
