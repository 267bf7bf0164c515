package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with a non-positive
// size.
const DefaultMemoryEntries = 10_000

// MemoryCache is a bounded in-process cache. When full, Set evicts expired
// entries first and then the entry closest to expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryCache creates a cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), max: maxEntries, now: time.Now}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evict(now)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) evict(now time.Time) {
	var victim string
	var victimExp time.Time
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			continue
		}
		if victim == "" || expiresBefore(e.expiresAt, victimExp) {
			victim, victimExp = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.max && victim != "" {
		delete(c.entries, victim)
	}
}

// expiresBefore orders expiry times with zero (never) last.
func expiresBefore(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	return b.IsZero() || a.Before(b)
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// collected.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
