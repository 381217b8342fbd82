package memory

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Backend is an in-memory implementation of the helpcenter.BlobStore
// interface, used in tests and development mode.
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// Upload stores the blob contents in memory
func (b *Backend) Upload(ctx context.Context, key, contentType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	b.contentTypes[key] = contentType
	return nil
}

// Delete removes the blob. Deleting a missing key is an error so that
// callers can log compensation failures.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, key)
	delete(b.contentTypes, key)
	return nil
}

// URL returns a synthetic URL for the stored blob
func (b *Backend) URL(key string) string {
	return "memory://" + key
}

// Get returns the stored blob contents. Test helper.
func (b *Backend) Get(key string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, "", false
	}
	return data, b.contentTypes[key], true
}

// Len reports how many blobs are stored. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
