package lockout

import (
	"context"
	"sync"
	"time"
)

// Store counts failures per key inside a fixed window that starts at the
// first failure. Counts of an expired window read as zero.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	Count(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

type entry struct {
	count     int
	resetTime time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, exists := s.data[key]; exists && now.Before(e.resetTime) {
		e.count++
		return e.count, nil
	}

	s.sweep(now)
	s.data[key] = &entry{count: 1, resetTime: now.Add(window)}
	return 1, nil
}

func (s *MemoryStore) Count(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.data[key]; exists && s.now().Before(e.resetTime) {
		return e.count, nil
	}
	return 0, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// sweep drops expired windows; called with mu held when a new window opens.
func (s *MemoryStore) sweep(now time.Time) {
	for key, e := range s.data {
		if !now.Before(e.resetTime) {
			delete(s.data, key)
		}
	}
}
