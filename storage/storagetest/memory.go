// Package storagetest provides an in-memory image store.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"storefront-api/storage"
)

type Memory struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	Deleted   []string
	DeleteErr error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Upload(_ context.Context, name, contentType string, body io.Reader, size int64) (storage.Image, error) {
	if err := storage.CheckUpload(contentType, size); err != nil {
		return storage.Image{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Image{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("products/%d-%s", m.seq, name)
	m.objects[id] = data
	return storage.Image{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (m *Memory) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, publicID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.objects, publicID)
	return nil
}

// Put seeds an object so deletes can be observed.
func (m *Memory) Put(publicID string) storage.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[publicID] = nil
	return storage.Image{URL: "https://cdn.test/" + publicID, PublicID: publicID}
}

func (m *Memory) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[publicID]
	return ok
}
