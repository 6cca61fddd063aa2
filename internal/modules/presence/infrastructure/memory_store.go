package infrastructure

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// MemoryStore is an in-memory implementation of SnapshotStore.
// Writes are serialized; subscribers run synchronously after each write, in write order.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
	ok       bool

	// notifyMu orders notifications without holding mu, so subscribers may call Get.
	notifyMu    sync.Mutex
	subMu       sync.RWMutex
	subscribers []subscriber
	nextSubID   uint64
}

type subscriber struct {
	id uint64
	fn func(domain.Snapshot)
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the current snapshot, or false if none has been published.
func (s *MemoryStore) Get() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ok {
		return domain.Snapshot{}, false
	}
	return s.snapshot.Clone(), true
}

// Set replaces the stored snapshot.
func (s *MemoryStore) Set(next domain.Snapshot) {
	s.Update(func(domain.Snapshot, bool) (domain.Snapshot, bool) {
		return next, true
	})
}

// Update atomically applies fn to the current snapshot.
func (s *MemoryStore) Update(fn func(current domain.Snapshot, ok bool) (domain.Snapshot, bool)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	var current domain.Snapshot
	if s.ok {
		current = s.snapshot.Clone()
	}
	next, changed := fn(current, s.ok)
	if !changed {
		s.mu.Unlock()
		return
	}
	if s.ok && next.ID != s.snapshot.ID {
		slog.Warn("ignoring snapshot id change",
			"user_id", s.snapshot.ID,
			"attempted_id", next.ID,
		)
		next.ID = s.snapshot.ID
	}
	s.snapshot = next.Clone()
	s.ok = true
	s.mu.Unlock()

	s.subMu.RLock()
	subscribers := make([]subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.subMu.RUnlock()

	for _, sub := range subscribers {
		sub.fn(next.Clone())
	}
}

// Subscribe registers fn to be called after each change. Subscribers are called in
// registration order.
func (s *MemoryStore) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// Clear discards the stored snapshot. Subscribers are not notified.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = domain.Snapshot{}
	s.ok = false
}

// SubscriberCount returns the number of subscribers (for testing/monitoring).
func (s *MemoryStore) SubscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	return len(s.subscribers)
}

// Ensure MemoryStore implements SnapshotStore.
var _ domain.SnapshotStore = (*MemoryStore)(nil)
