package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// Memory is an in-memory Storage used by tests. It can be told to fail the
// next N Put calls to exercise the retry and cleanup paths.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob

	failPuts    int
	failDeletes int
	putCalls    int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]memoryBlob)}
}

// FailNextPuts makes the next n Put calls return an error.
func (m *Memory) FailNextPuts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = n
}

// FailNextDeletes makes the next n Delete calls return an error.
func (m *Memory) FailNextDeletes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDeletes = n
}

// PutCalls returns how many Put attempts were made.
func (m *Memory) PutCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.putCalls
}

// Has reports whether a blob exists for key.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.failPuts > 0 {
		m.failPuts--
		return fmt.Errorf("simulated put failure for %q", key)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.blobs[key] = memoryBlob{data: buf, contentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes > 0 {
		m.failDeletes--
		return fmt.Errorf("simulated delete failure for %q", key)
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, "", ErrBlobNotFound(key)
	}
	return blob.data, blob.contentType, nil
}

func (m *Memory) SignedURL(ctx context.Context, key string, op Operation, ttl time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("memory://%s?op=%s&ttl=%d", key, op, int64(ttl.Seconds())), nil
}
