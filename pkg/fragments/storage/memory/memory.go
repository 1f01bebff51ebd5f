package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-fragments/pkg/fragments"
)

// Backend is an in-memory implementation of the fragments.DataStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory data backend
func New() fragments.DataStore {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

func objectKey(ownerID, id string) string {
	return ownerID + "/" + id
}

// PutData stores a private copy of data
func (b *Backend) PutData(ctx context.Context, ownerID, id string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey(ownerID, id)] = stored
	return nil
}

// GetData returns a copy of the stored payload
func (b *Backend) GetData(ctx context.Context, ownerID, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey(ownerID, id)]
	if !exists {
		return nil, fragments.ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DeleteData removes the payload
func (b *Backend) DeleteData(ctx context.Context, ownerID, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := objectKey(ownerID, id)
	if _, exists := b.objects[key]; !exists {
		return false, nil
	}

	delete(b.objects, key)
	return true, nil
}
