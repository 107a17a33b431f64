package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrMiss signals that a store holds no entry for the requested key.
var ErrMiss = errors.New("cache miss")

// Store is a persistence backend for cached worker responses. Entries are
// keyed by (operation, normalized URL) and carry the time they were fetched;
// expiry is decided by the Cache wrapper, not the backend.
type Store interface {
	Get(ctx context.Context, op, key string) (payload []byte, fetchedAt time.Time, err error)
	Set(ctx context.Context, op, key string, payload []byte, fetchedAt time.Time) error
}

// Cache layers TTL checks over a Store. A nil *Cache is valid and disables
// caching entirely, so callers never need a nil guard.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New builds a TTL cache over the given store. A nil now func defaults to
// time.Now; tests pass a fake clock.
func New(store Store, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{store: store, ttl: ttl, now: now}
}

// Get returns the cached payload when present and not expired.
func (c *Cache) Get(ctx context.Context, op, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, fetchedAt, err := c.store.Get(ctx, op, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("cache: read %s %s: %v", op, key, err)
		}
		return nil, false
	}
	if c.now().Sub(fetchedAt) > c.ttl {
		return nil, false
	}
	return payload, true
}

// Set stores a payload stamped with the current clock. Write failures only
// cost a future refetch, so they are logged and swallowed.
func (c *Cache) Set(ctx context.Context, op, key string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.store.Set(ctx, op, key, payload, c.now()); err != nil {
		log.Printf("cache: write %s %s: %v", op, key, err)
	}
}

type memoryEntry struct {
	payload   []byte
	fetchedAt time.Time
}

// Memory is the in-process Store used by default and in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, op, key string) ([]byte, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[op+"|"+key]
	if !ok {
		return nil, time.Time{}, ErrMiss
	}
	return entry.payload, entry.fetchedAt, nil
}

func (m *Memory) Set(_ context.Context, op, key string, payload []byte, fetchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[op+"|"+key] = memoryEntry{payload: payload, fetchedAt: fetchedAt}
	return nil
}
