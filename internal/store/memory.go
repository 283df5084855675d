package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-memory Store implementation. It is the default
// backend; rooms do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]json.RawMessage),
	}
}

// Read implements Store
func (m *Memory) Read(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.records[path]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

// Write implements Store
func (m *Memory) Write(_ context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[path] = data
	return nil
}

// Delete implements Store
func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, path)
	return nil
}

// List implements Store
func (m *Memory) List(_ context.Context, prefix string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]json.RawMessage)
	for path, raw := range m.records {
		if !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		rest := strings.TrimPrefix(path, prefix+"/")
		if strings.Contains(rest, "/") {
			continue // only direct children
		}
		out[rest] = raw
	}
	return out, nil
}

// Close implements Store
func (m *Memory) Close() {}
