package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStorage keeps objects in process memory. It backs local runs
// without a bucket and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ ObjectStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty MemoryStorage whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

// Upload stores the object.
func (m *MemoryStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()
	return nil
}

// GetURL returns the URL of key.
func (m *MemoryStorage) GetURL(key string) string {
	return m.baseURL + "/" + key
}

// Object returns the stored bytes and content type of key.
func (m *MemoryStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}
