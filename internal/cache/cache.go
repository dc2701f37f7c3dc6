// Package cache is a content-addressed, size- and time-bounded store of prior
// acquisition and match results, consulted before any network-equivalent call.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is implemented by the in-memory and Redis backends.
type Store interface {
	// Get returns the payload for key, or false when the key is absent or
	// expired. An unreadable entry is treated as a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Put stores the payload under key, evicting older entries as needed
	// to stay within the configured budget.
	Put(ctx context.Context, key string, payload []byte) error
	Stats() Stats
}

// Stats are cumulative process-lifetime counters. Reporting only; they never
// affect cache behaviour.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalSize int64
}

type entry struct {
	payload   []byte
	createdAt time.Time
	size      int64
}

// MemoryStore keeps entries in process memory. Entries expire by TTL and are
// evicted oldest-write-first when the aggregate size exceeds MaxSize.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*entry
	order     []string // keys in write order, oldest first
	ttl       time.Duration
	maxSize   int64
	totalSize int64
	stats     Stats
	logger    *zap.Logger

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration, maxSize int64, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: maxSize,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}

	// An expired entry is absent even if eviction has not run yet.
	if s.now().Sub(e.createdAt) > s.ttl {
		s.remove(key)
		s.stats.Misses++
		return nil, false
	}

	if len(e.payload) == 0 {
		// Unreadable entry: discard and proceed as uncached.
		s.remove(key)
		s.stats.Misses++
		return nil, false
	}

	s.stats.Hits++
	return e.payload, true
}

func (s *MemoryStore) Put(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.remove(key)
	}

	size := int64(len(payload))

	// Evict oldest-write-first until the new entry fits.
	for s.totalSize+size > s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		s.remove(oldest)
		s.stats.Evictions++
		s.logger.Debug("evicted cache entry", zap.String("key", oldest))
	}

	s.entries[key] = &entry{payload: payload, createdAt: s.now(), size: size}
	s.order = append(s.order, key)
	s.totalSize += size
	return nil
}

func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.TotalSize = s.totalSize
	return stats
}

// remove deletes the entry and its order slot. Caller holds s.mu.
func (s *MemoryStore) remove(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	s.totalSize -= e.size
	delete(s.entries, key)
	s.removeFromOrder(key)
}

func (s *MemoryStore) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
