package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Memory keeps options in a map guarded by a RWMutex.
type Memory struct {
	mu     sync.RWMutex
	values map[string]schema.Value
}

// NewMemory returns an empty memory store, optionally seeded.
func NewMemory(seed ...map[string]schema.Value) *Memory {
	m := &Memory{values: make(map[string]schema.Value)}
	for _, values := range seed {
		for name, value := range values {
			m.values[name] = value
		}
	}
	return m
}

func (m *Memory) Get(ctx context.Context, name string) (schema.Value, bool, error) {
	if err := ctx.Err(); err != nil {
		return schema.Value{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[name]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, name string, value schema.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, name)
	return nil
}

func (m *Memory) All(ctx context.Context) (map[string]schema.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]schema.Value, len(m.values))
	for name, value := range m.values {
		out[name] = value
	}
	return out, nil
}

// Close is a no-op so Memory satisfies io.Closer.
func (m *Memory) Close() error { return nil }
