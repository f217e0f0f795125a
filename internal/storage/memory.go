package storage

import (
	"context"
	"sync"
)

// Memory keeps artifacts in a map. It is safe for concurrent use.
type Memory struct {
	Linker

	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory(linker Linker) *Memory {
	return &Memory{
		Linker: linker,
		items:  make(map[string][]byte),
	}
}

func (m *Memory) Save(ctx context.Context, name string, content []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[name]; ok {
		return "", ErrExists
	}
	m.items[name] = append([]byte(nil), content...)
	return m.URL(name), nil
}

func (m *Memory) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.items[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Len returns the number of stored artifacts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
