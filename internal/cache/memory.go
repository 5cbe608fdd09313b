package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxEntries bounds a memory store built without an explicit limit.
const DefaultMaxEntries = 1024

// Memory is a mutex-guarded in-process Store holding at most maxEntries values.
// Expired entries are dropped lazily on read and swept when the store is full.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	maxEntries int
	closed     atomic.Bool
	now        func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOptions configures NewMemoryWithOptions.
type MemoryOptions struct {
	DefaultTTL time.Duration
	MaxEntries int // 0 uses DefaultMaxEntries
}

// NewMemory creates an empty memory store with the default size limit.
func NewMemory(defaultTTL time.Duration) *Memory {
	return NewMemoryWithOptions(MemoryOptions{DefaultTTL: defaultTTL})
}

// NewMemoryWithOptions creates an empty memory store.
func NewMemoryWithOptions(opts MemoryOptions) *Memory {
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// 重新检查，期间可能已有 Set 写入新值
		if current, ok := m.entries[key]; ok && m.now().After(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value. A zero ttl uses the default. When the store is full
// expired entries are swept first, then the entry closest to expiry is evicted.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked(now)
	}
	m.entries[key] = memoryEntry{value: stored, expiresAt: now.Add(ttl)}
	return nil
}

func (m *Memory) evictLocked(now time.Time) {
	for k, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, k)
		}
	}
	for len(m.entries) >= m.maxEntries {
		var (
			oldestKey string
			oldest    time.Time
			found     bool
		)
		for k, entry := range m.entries {
			if !found || entry.expiresAt.Before(oldest) {
				oldestKey, oldest, found = k, entry.expiresAt, true
			}
		}
		if !found {
			return
		}
		delete(m.entries, oldestKey)
	}
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close marks the store closed.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
