package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory
type MemoryBackend struct {
	mutex sync.RWMutex
	data  map[string][]byte
	fault error
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// SetFault makes every following call fail with err until cleared with nil
func (m *MemoryBackend) SetFault(err error) {
	m.mutex.Lock()
	m.fault = err
	m.mutex.Unlock()
}

// Get returns a copy of the stored bytes
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.fault != nil {
		return nil, false, m.fault
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.fault != nil {
		return m.fault
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete removes key
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.fault != nil {
		return m.fault
	}
	delete(m.data, key)
	return nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error { return nil }
