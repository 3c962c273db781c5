package lockstore

import (
	"context"
	"sync"
	"time"
)

type memLock struct {
	holder    string
	expiresAt time.Time
}

// MemoryStore is an in-process mutex table with the same semantics as
// RedisStore.  Expired entries are treated as absent on access and
// removed by Sweep.
type MemoryStore struct {
	mu    sync.Mutex
	locks map[string]memLock
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locks: make(map[string]memLock), now: time.Now}
}

func (s *MemoryStore) live(key string, now time.Time) (memLock, bool) {
	l, ok := s.locks[key]
	if !ok {
		return memLock{}, false
	}
	if !now.Before(l.expiresAt) {
		delete(s.locks, key)
		return memLock{}, false
	}
	return l, true
}

// Acquire creates key if it is absent or expired.
func (s *MemoryStore) Acquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if _, ok := s.live(key, now); ok {
		return false, nil
	}
	s.locks[key] = memLock{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// Peek returns the holder of a live lock.
func (s *MemoryStore) Peek(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.live(key, s.now())
	return l.holder, ok, nil
}

// PeekMany returns the holders of every live lock among keys.
func (s *MemoryStore) PeekMany(ctx context.Context, keys []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make(map[string]string)
	for _, k := range keys {
		if l, ok := s.live(k, now); ok {
			out[k] = l.holder
		}
	}
	return out, nil
}

// Release deletes key if holder owns it.
func (s *MemoryStore) Release(ctx context.Context, key, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.live(key, s.now()); ok && l.holder == holder {
		delete(s.locks, key)
	}
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, l := range s.locks {
		if !now.Before(l.expiresAt) {
			delete(s.locks, k)
			n++
		}
	}
	return n
}

// Len returns the number of live locks.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, l := range s.locks {
		if now.Before(l.expiresAt) {
			n++
		}
	}
	return n
}
