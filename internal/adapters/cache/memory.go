package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/reciperank/pkg/metrics"
)

// entry is a node in the insertion-ordered eviction list.
type entry struct {
	key     string
	value   []byte
	expires time.Time
	next    *entry
}

func (e *entry) reset() {
	e.key = ""
	e.value = nil
	e.expires = time.Time{}
	e.next = nil
}

// Memory is a bounded in-process response cache used when Redis is not
// configured. When full, the oldest entry is evicted. Expired entries read as
// misses and are replaced in place by the next Set.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // oldest
	tail    *entry // newest
	pool    sync.Pool
	settings
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries:  make(map[string]*entry),
		settings: newSettings(opts),
	}
	m.pool.New = func() any { return &entry{} }
	return m
}

// Get returns the cached value for key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expires) {
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(true)
	return e.value, true
}

// Set stores value under key for the configured TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expires := m.now().Add(m.ttl)
	if e, ok := m.entries[key]; ok {
		e.value = value
		e.expires = expires
		return
	}

	if len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}

	e := m.pool.Get().(*entry)
	e.key = key
	e.value = value
	e.expires = expires
	if m.tail == nil {
		m.head = e
	} else {
		m.tail.next = e
	}
	m.tail = e
	m.entries[key] = e
}

func (m *Memory) evictOldest() {
	e := m.head
	if e == nil {
		return
	}
	m.head = e.next
	if m.head == nil {
		m.tail = nil
	}
	delete(m.entries, e.key)
	e.reset()
	m.pool.Put(e)
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
