package store

import (
	"slices"
	"sync"
	"time"

	"etaboard/internal/domain"
)

// ArrivalStore keeps the latest ETA batch of every watched route/stop key.
// A watched key without a batch is pending; a stored batch with no records is
// known-empty.
type ArrivalStore struct {
	mu      sync.RWMutex
	batches map[string]*domain.ArrivalBatch
	watched map[string]time.Time

	watchTTL time.Duration
	now      func() time.Time
}

func NewArrivalStore(watchTTL time.Duration) *ArrivalStore {
	return &ArrivalStore{
		batches:  make(map[string]*domain.ArrivalBatch),
		watched:  make(map[string]time.Time),
		watchTTL: watchTTL,
		now:      time.Now,
	}
}

// Watch marks key as wanted. It returns true the first time a key is watched.
func (s *ArrivalStore) Watch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.watched[key]
	s.watched[key] = s.now()
	return !existed
}

// WatchedKeys lists the keys the ingestor should poll, sorted.
func (s *ArrivalStore) WatchedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.watched))
	for key := range s.watched {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Update stores batch as the latest for its key. Batches for keys nobody watches,
// and batches older than the stored one, are dropped and false is returned.
func (s *ArrivalStore) Update(batch domain.ArrivalBatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.watched[batch.Key]; !ok {
		return false
	}
	if existing, ok := s.batches[batch.Key]; ok && batch.FetchedAt.Before(existing.FetchedAt) {
		return false
	}

	stored := batch
	stored.Records = slices.Clone(batch.Records)
	if stored.Records == nil {
		stored.Records = []domain.ArrivalRecord{}
	}
	s.batches[batch.Key] = &stored
	return true
}

// Get returns a copy of the latest batch. ok is false while the key is pending.
func (s *ArrivalStore) Get(key string) (*domain.ArrivalBatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[key]
	if !ok {
		return nil, false
	}
	out := *b
	out.Records = slices.Clone(b.Records)
	return &out, true
}

// PruneIdle forgets keys that were not watched within the TTL and returns them.
func (s *ArrivalStore) PruneIdle() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.watchTTL)
	var pruned []string
	for key, last := range s.watched {
		if last.Before(cutoff) {
			delete(s.watched, key)
			delete(s.batches, key)
			pruned = append(pruned, key)
		}
	}
	return pruned
}

func (s *ArrivalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watched)
}
