package roster

import (
	"context"
	"log"
	"slices"
	"sync"
)

// Storage persists a whole set of members under a key.
type Storage interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, members []string) error
}

// DeltaStorage applies set-union and set-difference updates in the backend itself, so
// concurrent sessions sharing one key never overwrite each other's edits.
type DeltaStorage interface {
	Storage
	Add(ctx context.Context, key string, members []string) error
	Remove(ctx context.Context, key string, members []string) error
}

// PhoneSet is a set of phone numbers.
type PhoneSet map[string]struct{}

// NewPhoneSet builds a set from the given phone numbers.
func NewPhoneSet(phones ...string) PhoneSet {
	s := make(PhoneSet, len(phones))
	for _, p := range phones {
		s[p] = struct{}{}
	}
	return s
}

func (s PhoneSet) Has(phone string) bool {
	_, ok := s[phone]
	return ok
}

// Sorted returns the members in ascending order.
func (s PhoneSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s PhoneSet) Clone() PhoneSet {
	out := make(PhoneSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// PartitionStore is the single source of truth for "called" membership. Reads are served
// from memory; every mutation is written through to the storage backend. Storage faults are
// logged and never surface to callers.
type PartitionStore struct {
	mu      sync.RWMutex
	members PhoneSet
	version uint64

	// writeMu is taken before mu by every path that touches the backend and is held until the
	// backend call returns, so backend writes land in the same order as memory changes.
	writeMu sync.Mutex
	storage Storage
	key     string
	logger  *log.Logger
}

// NewPartitionStore creates a store bound to one storage key. A nil storage keeps the
// membership in memory only.
func NewPartitionStore(storage Storage, key string, logger *log.Logger) *PartitionStore {
	if logger == nil {
		logger = log.Default()
	}
	return &PartitionStore{
		members: make(PhoneSet),
		storage: storage,
		key:     key,
		logger:  logger,
	}
}

// Load replaces the in-memory membership with the stored set and returns a copy of it.
// On a storage fault the last known membership (empty on first use) is kept.
func (s *PartitionStore) Load(ctx context.Context) PhoneSet {
	if s.storage == nil {
		return s.Snapshot()
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	members, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Printf("partition store: load %q failed, keeping last known membership: %v", s.key, err)
		return s.Snapshot()
	}

	s.mu.Lock()
	s.members = NewPhoneSet(members...)
	s.version++
	out := s.members.Clone()
	s.mu.Unlock()
	return out
}

// Persist replaces the whole membership with set and writes it as one value.
func (s *PartitionStore) Persist(ctx context.Context, set PhoneSet) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.members = set.Clone()
	s.version++
	s.mu.Unlock()

	s.writeWhole(ctx)
}

// IsCalled reports whether phone is currently in the called partition.
func (s *PartitionStore) IsCalled(phone string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members.Has(phone)
}

// MarkCalled adds phones to the called partition and returns how many were newly added.
// Phones that are already members are left untouched.
func (s *PartitionStore) MarkCalled(ctx context.Context, phones []string) int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	var added []string
	for _, p := range phones {
		if p == "" || s.members.Has(p) {
			continue
		}
		s.members[p] = struct{}{}
		added = append(added, p)
	}
	if len(added) > 0 {
		s.version++
	}
	s.mu.Unlock()

	if len(added) > 0 {
		s.flush(ctx, added, nil)
	}
	return len(added)
}

// MarkNotCalled removes phones from the called partition and returns how many were removed.
func (s *PartitionStore) MarkNotCalled(ctx context.Context, phones []string) int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	var removed []string
	for _, p := range phones {
		if !s.members.Has(p) {
			continue
		}
		delete(s.members, p)
		removed = append(removed, p)
	}
	if len(removed) > 0 {
		s.version++
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		s.flush(ctx, nil, removed)
	}
	return len(removed)
}

// Snapshot returns a copy of the current membership.
func (s *PartitionStore) Snapshot() PhoneSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members.Clone()
}

// Len returns the number of members, including ones absent from the customer collection.
func (s *PartitionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Version increases on every membership change.
func (s *PartitionStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// flush must be called with writeMu held.
func (s *PartitionStore) flush(ctx context.Context, added, removed []string) {
	if s.storage == nil {
		return
	}

	ds, ok := s.storage.(DeltaStorage)
	if !ok {
		s.writeWhole(ctx)
		return
	}
	if len(added) > 0 {
		if err := ds.Add(ctx, s.key, added); err != nil {
			s.logger.Printf("partition store: add %d members to %q failed: %v", len(added), s.key, err)
		}
	}
	if len(removed) > 0 {
		if err := ds.Remove(ctx, s.key, removed); err != nil {
			s.logger.Printf("partition store: remove %d members from %q failed: %v", len(removed), s.key, err)
		}
	}
}

// writeWhole must be called with writeMu held.
func (s *PartitionStore) writeWhole(ctx context.Context) {
	if s.storage == nil {
		return
	}
	s.mu.RLock()
	members := s.members.Sorted()
	s.mu.RUnlock()
	if err := s.storage.Set(ctx, s.key, members); err != nil {
		s.logger.Printf("partition store: persist %d members to %q failed: %v", len(members), s.key, err)
	}
}
