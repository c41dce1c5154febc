package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryBlobs is an in-process Blobs. Nothing survives the process.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
	puts   int
}

var _ Blobs = (*MemoryBlobs)(nil)

// NewMemoryBlobs creates an empty in-memory store.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{data: make(map[string][]byte)}
}

// Get implements Blobs.
func (m *MemoryBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return slices.Clone(data), ok, nil
}

// Put implements Blobs. Fails with the error set by FailPuts, if any.
func (m *MemoryBlobs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = slices.Clone(data)
	m.puts++
	return nil
}

// Delete implements Blobs.
func (m *MemoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FailPuts makes every later Put return err. A nil err restores normal writes.
func (m *MemoryBlobs) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// Puts returns the number of successful writes.
func (m *MemoryBlobs) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
