package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bandly-go/pkg/logger"
)

const (
	DefaultDataKey = "bandly-data"
	DefaultUserKey = "bandly-user"

	corruptSuffix = ".corrupt"
)

const (
	OpAddMember    = "add_member"
	OpUpdateMember = "update_member"
	OpDeleteMember = "delete_member"
	OpAddEvent     = "add_event"
	OpUpdateEvent  = "update_event"
	OpDeleteEvent  = "delete_event"
	OpPersist      = "persist"
	OpSaveUserName = "save_user_name"
)

type Config struct {
	DataKey  string
	UserKey  string
	Observer Observer
	// Location reads persisted timestamps that carry no offset. Defaults to
	// time.Local.
	Location *time.Location
}

// Store owns the canonical snapshot. Every mutation builds the next snapshot
// as a copy, writes it to storage and only then makes it current, so a failed
// write leaves the previous state in place.
type Store struct {
	storage  Storage
	log      logger.Logger
	observer Observer
	dataKey  string
	userKey  string
	location *time.Location

	mu          sync.RWMutex
	snapshot    Snapshot
	userName    string
	loaded      bool
	loadWarning error
}

func NewStore(storage Storage, log logger.Logger) *Store {
	return NewStoreWithConfig(storage, log, Config{})
}

func NewStoreWithConfig(storage Storage, log logger.Logger, cfg Config) *Store {
	if cfg.DataKey == "" {
		cfg.DataKey = DefaultDataKey
	}
	if cfg.UserKey == "" {
		cfg.UserKey = DefaultUserKey
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Store{
		storage:  storage,
		log:      log.With("component", "roster.store"),
		observer: cfg.Observer,
		dataKey:  cfg.DataKey,
		userKey:  cfg.UserKey,
		location: cfg.Location,
		snapshot: Snapshot{Members: []Member{}, Events: []Event{}},
	}
}

// Load reads the persisted snapshot. Missing or malformed data falls back to an
// empty snapshot and is only logged; the returned error is reserved for the
// storage itself being unreachable.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.storage.Get(ctx, s.dataKey)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.dataKey, err)
	}

	snapshot := Snapshot{Members: []Member{}, Events: []Event{}}
	s.loadWarning = nil

	switch {
	case !found:
		s.log.Info("store: no persisted snapshot, starting empty", "key", s.dataKey)
	default:
		decoded, pruned, err := decodeSnapshot(raw, s.location)
		if err != nil {
			s.loadWarning = fmt.Errorf("persisted data under %q was unreadable and has been ignored: %w", s.dataKey, err)
			s.observer.LoadFellBack("malformed")
			s.log.InternalError("store: malformed snapshot, starting empty", err, "key", s.dataKey, "bytes", len(raw))
			s.keepCorrupt(ctx, raw)
		} else {
			snapshot = decoded
			if pruned > 0 {
				s.log.Warn("store: dropped references to unknown members", "key", s.dataKey, "references", pruned)
			}
		}
	}

	userRaw, userFound, err := s.storage.Get(ctx, s.userKey)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.userKey, err)
	}
	s.userName = ""
	if userFound {
		s.userName = string(userRaw)
	}

	s.snapshot = snapshot
	s.loaded = true
	s.log.Info("store: loaded", "members", len(snapshot.Members), "events", len(snapshot.Events))
	return nil
}

func (s *Store) keepCorrupt(ctx context.Context, raw []byte) {
	key := s.dataKey + corruptSuffix
	if err := s.storage.Set(ctx, key, raw); err != nil {
		s.log.Warn("store: could not keep copy of malformed snapshot", "key", key, "err", err)
	}
}

// decodeSnapshot reads a persisted document. Event member ids are deduplicated
// and ids with no matching member are dropped; pruned counts the drops.
func decodeSnapshot(raw []byte, loc *time.Location) (snapshot Snapshot, pruned int, err error) {
	var document struct {
		Members []Member          `json:"members"`
		Events  []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(raw, &document); err != nil {
		return Snapshot{}, 0, err
	}

	snapshot.Members = document.Members
	snapshot.Events = make([]Event, len(document.Events))
	for i, data := range document.Events {
		if err := snapshot.Events[i].decode(data, loc); err != nil {
			return Snapshot{}, 0, err
		}
	}
	snapshot = snapshot.Clone()

	known := make(map[string]struct{}, len(snapshot.Members))
	for _, member := range snapshot.Members {
		known[member.ID] = struct{}{}
	}
	for i := range snapshot.Events {
		ids := uniqueIDs(snapshot.Events[i].MemberIDs)
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := known[id]; ok {
				kept = append(kept, id)
			} else {
				pruned++
			}
		}
		snapshot.Events[i].MemberIDs = kept
	}
	return snapshot, pruned, nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadWarning is non-nil when the last Load discarded unreadable data.
func (s *Store) LoadWarning() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadWarning
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

func (s *Store) Member(id string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.snapshot.memberIndex(id)
	if idx < 0 {
		return Member{}, false
	}
	return s.snapshot.Members[idx], true
}

func (s *Store) Event(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.snapshot.eventIndex(id)
	if idx < 0 {
		return Event{}, false
	}
	return s.snapshot.Events[idx].Clone(), true
}

func (s *Store) AddMember(ctx context.Context, member Member) error {
	if strings.TrimSpace(member.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMember)
	}

	_, err := s.mutate(ctx, OpAddMember, func(next *Snapshot) (bool, error) {
		if next.memberIndex(member.ID) >= 0 {
			return false, fmt.Errorf("member %q: %w", member.ID, ErrDuplicateID)
		}
		next.Members = append(next.Members, member)
		return true, nil
	})
	return err
}

// UpdateMember merges patch into the member with the given id. An unknown id
// is a no-op reported as found=false.
func (s *Store) UpdateMember(ctx context.Context, id string, patch MemberPatch) (bool, error) {
	return s.mutate(ctx, OpUpdateMember, func(next *Snapshot) (bool, error) {
		idx := next.memberIndex(id)
		if idx < 0 {
			return false, nil
		}
		patch.apply(&next.Members[idx])
		return true, nil
	})
}

// DeleteMember removes the member and its id from every event.
func (s *Store) DeleteMember(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, OpDeleteMember, func(next *Snapshot) (bool, error) {
		idx := next.memberIndex(id)
		if idx < 0 {
			return false, nil
		}
		next.Members = append(next.Members[:idx], next.Members[idx+1:]...)
		for i := range next.Events {
			next.Events[i].MemberIDs = withoutID(next.Events[i].MemberIDs, id)
		}
		return true, nil
	})
}

func (s *Store) AddEvent(ctx context.Context, event Event) error {
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}

	_, err := s.mutate(ctx, OpAddEvent, func(next *Snapshot) (bool, error) {
		if next.eventIndex(event.ID) >= 0 {
			return false, fmt.Errorf("event %q: %w", event.ID, ErrDuplicateID)
		}
		event = event.Clone()
		event.MemberIDs = uniqueIDs(event.MemberIDs)
		if err := next.checkMembers(event.MemberIDs); err != nil {
			return false, err
		}
		next.Events = append(next.Events, event)
		return true, nil
	})
	return err
}

func (s *Store) UpdateEvent(ctx context.Context, id string, patch EventPatch) (bool, error) {
	return s.mutate(ctx, OpUpdateEvent, func(next *Snapshot) (bool, error) {
		idx := next.eventIndex(id)
		if idx < 0 {
			return false, nil
		}
		patch.apply(&next.Events[idx])
		if patch.MemberIDs != nil {
			if err := next.checkMembers(next.Events[idx].MemberIDs); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}

func (s *Store) DeleteEvent(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, OpDeleteEvent, func(next *Snapshot) (bool, error) {
		idx := next.eventIndex(id)
		if idx < 0 {
			return false, nil
		}
		next.Events = append(next.Events[:idx], next.Events[idx+1:]...)
		return true, nil
	})
}

// Persist writes the current snapshot as is.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.write(ctx, s.snapshot); err != nil {
		s.observer.PersistFailed(OpPersist)
		return err
	}
	return nil
}

func (s *Store) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

func (s *Store) SaveUserName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.storage.Set(ctx, s.userKey, []byte(name)); err != nil {
		s.observer.PersistFailed(OpSaveUserName)
		return fmt.Errorf("write %s: %w", s.userKey, err)
	}
	s.userName = name
	s.observer.MutationApplied(OpSaveUserName)
	return nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func(next *Snapshot) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return false, ErrNotLoaded
	}

	next := s.snapshot.Clone()
	changed, err := fn(&next)
	if err != nil {
		s.log.BusinessError("store: mutation rejected", err, "op", op)
		return false, err
	}
	if !changed {
		s.log.Debug("store: mutation matched nothing", "op", op)
		return false, nil
	}

	if err := s.write(ctx, next); err != nil {
		s.observer.PersistFailed(op)
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.snapshot = next
	s.observer.MutationApplied(op)
	return true, nil
}

func (s *Store) write(ctx context.Context, snapshot Snapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.storage.Set(ctx, s.dataKey, encoded); err != nil {
		s.log.InternalError("store: persist failed", err, "key", s.dataKey)
		return fmt.Errorf("write %s: %w", s.dataKey, err)
	}
	return nil
}

func (s Snapshot) checkMembers(ids []string) error {
	for _, id := range ids {
		if s.memberIndex(id) < 0 {
			return fmt.Errorf("member %q: %w", id, ErrUnknownMember)
		}
	}
	return nil
}

func withoutID(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			result = append(result, candidate)
		}
	}
	return result
}

// IsValidationError reports whether err was caused by caller input rather than storage.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMember) ||
		errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrUnknownMember)
}
