package cache

import (
	"context"
	"sync"
	"time"

	"github.com/BAWSA3/brandos/internal/types"
)

// entry pairs a report with its expiry instant.
type entry struct {
	report    *types.UnifiedReport
	expiresAt time.Time
}

// Memory is an in-process Store. It is the default cache and the one
// tests substitute for redis.
type Memory struct {
	mu      sync.RWMutex
	entries map[types.Handle]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[types.Handle]entry),
		now:     time.Now,
	}
}

// Get returns the cached report if present and unexpired. Expired
// entries are dropped lazily.
func (m *Memory) Get(_ context.Context, handle types.Handle) (*types.UnifiedReport, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[handle]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check: a fresh write may have landed in between.
		if current, still := m.entries[handle]; still && m.now().After(current.expiresAt) {
			delete(m.entries, handle)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.report, true, nil
}

// Set stores the report, overwriting any existing entry for the handle.
func (m *Memory) Set(_ context.Context, handle types.Handle, report *types.UnifiedReport, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[handle] = entry{
		report:    report,
		expiresAt: m.now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}
