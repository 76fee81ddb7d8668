// Package memorykv provides an in-memory KV implementation (for testing/dev).
package memorykv

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY KV - In-memory blob storage
// =============================================================================

type KV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailSets, when set, makes every Set return this error. Used by
	// tests to exercise persistence-failure paths.
	failMu  sync.Mutex
	failSet error
}

func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

// FailSets makes subsequent Set calls fail with err (nil restores writes).
func (m *KV) FailSets(err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failSet = err
}

func (m *KV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.failMu.Lock()
	fail := m.failSet
	m.failMu.Unlock()
	if fail != nil {
		return fail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
