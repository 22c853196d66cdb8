package contentcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"sopforge/internal/observability"
)

// Memory is an in-process cache for single-instance deployments and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// NewMemory creates an in-memory cache. A non-positive ttl disables
// caching: writes are dropped and every lookup misses.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{entries: make(map[string]entry), ttl: ttl}
}

func (m *Memory) Backend() string { return "memory" }

func (m *Memory) Get(ctx context.Context, key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		observability.RecordCacheMiss(m.Backend())
		return "", false
	}
	if e.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		observability.RecordCacheMiss(m.Backend())
		return "", false
	}

	observability.RecordCacheHit(m.Backend())
	return e.Content, true
}

func (m *Memory) Set(ctx context.Context, key, content string) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{Content: content, ExpiresAt: time.Now().Add(m.ttl)}
}

func (m *Memory) Clear(ctx context.Context, templateType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if templateType == "" || strings.HasPrefix(key, templateType+":") {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}
