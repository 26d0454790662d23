package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	appdoc "github.com/lexdesk/backend/internal/application/document"
)

var _ appdoc.ObjectStorage = (*MemoryObjectStorage)(nil)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps objects in process memory. It backs the
// "memory" storage driver used in development and tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

// NewMemoryObjectStorage creates an empty store. baseURL prefixes the
// download URLs it hands out.
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "memory://documents"
	}
	return &MemoryObjectStorage{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
	}
}

// Put reads body fully and stores it under key
func (m *MemoryObjectStorage) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("upload size mismatch: declared %d, read %d", size, len(data))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// Open returns a reader over a copy of the object
func (m *MemoryObjectStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// PresignDownload returns baseURL/key with an expiry parameter
func (m *MemoryObjectStorage) PresignDownload(_ context.Context, key, filename string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	expiresAt := time.Now().Add(ttl)
	q := url.Values{}
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	if filename != "" {
		q.Set("filename", filename)
	}
	return m.baseURL + "/" + key + "?" + q.Encode(), expiresAt, nil
}

// Delete removes key
func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Exists reports whether key is stored
func (m *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
