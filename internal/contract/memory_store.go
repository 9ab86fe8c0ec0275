package contract

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with TTL semantics. It backs tests and the
// "memory" data driver. Begin returns a staged view that applies its writes
// only on Commit.
type MemoryStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	minTTL  time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	key       Key
	value     []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMinTTL sets the lifetime of newly created entries.
func WithMinTTL(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.minTTL = d
		}
	}
}

// NewMemoryStore builds an empty store. New entries live for
// DefaultRetention.ExtendTo unless WithMinTTL says otherwise.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:     time.Now,
		minTTL:  DefaultRetention.ExtendTo,
		entries: map[string]memoryEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, state := s.lookup(key, s.now())
	return readEntry(entry, state)
}

func (s *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, state := s.lookup(key, now)
	next, err := writeEntry(key, entry, state, value, now.Add(s.minTTL))
	if err != nil {
		return err
	}
	s.entries[key.String()] = next
	return nil
}

func (s *MemoryStore) Has(_ context.Context, key Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, state := s.lookup(key, s.now())
	return hasEntry(key, state)
}

func (s *MemoryStore) ExtendTTL(_ context.Context, key Key, threshold, extendTo time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, state := s.lookup(key, now)
	next, bump, err := extendEntry(entry, state, now, threshold, extendTo)
	if err != nil || !bump {
		return err
	}
	s.entries[key.String()] = next
	return nil
}

func (s *MemoryStore) Restore(_ context.Context, key Key, extendTo time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, state := s.lookup(key, now)
	if state != entryArchived {
		return false, nil
	}
	entry.expiresAt = now.Add(positiveTTL(extendTo, s.minTTL))
	s.entries[key.String()] = entry
	return true, nil
}

// ExpiresAt reports the expiry of a stored entry, archived ones included.
func (s *MemoryStore) ExpiresAt(key Key) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key.String()]
	return entry.expiresAt, ok
}

// CountArchived returns how many entries are waiting for Restore.
func (s *MemoryStore) CountArchived(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var archived int64
	for _, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			archived++
		}
	}
	return archived, nil
}

// Len returns the number of stored entries, archived ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Begin opens a staged view over the store. Callers must serialize
// transactions themselves.
func (s *MemoryStore) Begin() *MemoryTxn {
	return &MemoryTxn{
		base:   s,
		staged: map[string]memoryEntry{},
	}
}

func (s *MemoryStore) lookup(key Key, now time.Time) (memoryEntry, entryState) {
	entry, ok := s.entries[key.String()]
	if !ok {
		return memoryEntry{}, entryMissing
	}
	return entry, stateOf(entry, now)
}

// MemoryTxn buffers writes against a MemoryStore until Commit.
type MemoryTxn struct {
	base   *MemoryStore
	staged map[string]memoryEntry
	done   bool
}

func (t *MemoryTxn) Get(_ context.Context, key Key) ([]byte, bool, error) {
	entry, state := t.lookup(key, t.base.now())
	return readEntry(entry, state)
}

func (t *MemoryTxn) Set(_ context.Context, key Key, value []byte) error {
	now := t.base.now()
	entry, state := t.lookup(key, now)
	next, err := writeEntry(key, entry, state, value, now.Add(t.base.minTTL))
	if err != nil {
		return err
	}
	t.staged[key.String()] = next
	return nil
}

func (t *MemoryTxn) Has(_ context.Context, key Key) (bool, error) {
	_, state := t.lookup(key, t.base.now())
	return hasEntry(key, state)
}

func (t *MemoryTxn) ExtendTTL(_ context.Context, key Key, threshold, extendTo time.Duration) error {
	now := t.base.now()
	entry, state := t.lookup(key, now)
	next, bump, err := extendEntry(entry, state, now, threshold, extendTo)
	if err != nil || !bump {
		return err
	}
	t.staged[key.String()] = next
	return nil
}

func (t *MemoryTxn) Restore(_ context.Context, key Key, extendTo time.Duration) (bool, error) {
	now := t.base.now()
	entry, state := t.lookup(key, now)
	if state != entryArchived {
		return false, nil
	}
	entry.expiresAt = now.Add(positiveTTL(extendTo, t.base.minTTL))
	t.staged[key.String()] = entry
	return true, nil
}

// Commit applies the staged writes. A committed or rolled back transaction
// cannot be reused.
func (t *MemoryTxn) Commit() {
	if t.done {
		return
	}
	t.done = true
	t.base.mu.Lock()
	defer t.base.mu.Unlock()
	for k, entry := range t.staged {
		t.base.entries[k] = entry
	}
}

// Rollback discards the staged writes.
func (t *MemoryTxn) Rollback() {
	t.done = true
	t.staged = nil
}

func (t *MemoryTxn) lookup(key Key, now time.Time) (memoryEntry, entryState) {
	if entry, ok := t.staged[key.String()]; ok {
		return entry, stateOf(entry, now)
	}
	t.base.mu.RLock()
	defer t.base.mu.RUnlock()
	return t.base.lookup(key, now)
}

type entryState int

const (
	entryMissing entryState = iota
	entryLive
	entryArchived
)

func stateOf(entry memoryEntry, now time.Time) entryState {
	if entry.expiresAt.After(now) {
		return entryLive
	}
	return entryArchived
}

func readEntry(entry memoryEntry, state entryState) ([]byte, bool, error) {
	switch state {
	case entryLive:
		return cloneBytes(entry.value), true, nil
	case entryArchived:
		return nil, false, archivedError(entry.key)
	default:
		return nil, false, nil
	}
}

func hasEntry(key Key, state entryState) (bool, error) {
	switch state {
	case entryLive:
		return true, nil
	case entryArchived:
		return false, archivedError(key)
	default:
		return false, nil
	}
}

func writeEntry(key Key, entry memoryEntry, state entryState, value []byte, fresh time.Time) (memoryEntry, error) {
	switch state {
	case entryArchived:
		return memoryEntry{}, archivedError(key)
	case entryMissing:
		entry = memoryEntry{key: key, expiresAt: fresh}
	}
	entry.value = cloneBytes(value)
	return entry, nil
}

func extendEntry(entry memoryEntry, state entryState, now time.Time, threshold, extendTo time.Duration) (memoryEntry, bool, error) {
	switch state {
	case entryArchived:
		return memoryEntry{}, false, archivedError(entry.key)
	case entryMissing:
		return memoryEntry{}, false, nil
	}
	expiry, bump := extendedExpiry(entry.expiresAt, now, threshold, extendTo)
	if !bump {
		return entry, false, nil
	}
	entry.expiresAt = expiry
	return entry, true, nil
}

func positiveTTL(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func extendedExpiry(current, now time.Time, threshold, extendTo time.Duration) (time.Time, bool) {
	if current.Sub(now) >= threshold {
		return current, false
	}
	target := now.Add(extendTo)
	if !target.After(current) {
		return current, false
	}
	return target, true
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MemoryTxn)(nil)
)
