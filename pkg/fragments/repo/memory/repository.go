package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tendant/simple-fragments/pkg/fragments"
)

// Repository implements fragments.MetadataStore using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	fragments map[string]map[string]*fragments.Fragment // owner_id -> id -> record
}

// New creates a new in-memory metadata repository
func New() fragments.MetadataStore {
	return &Repository{
		fragments: make(map[string]map[string]*fragments.Fragment),
	}
}

func (r *Repository) PutMetadata(ctx context.Context, fragment *fragments.Fragment) error {
	if fragment == nil || fragment.OwnerID == "" || fragment.ID == "" {
		return fmt.Errorf("%w: owner id and id are required", fragments.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.fragments[fragment.OwnerID]
	if !ok {
		owned = make(map[string]*fragments.Fragment)
		r.fragments[fragment.OwnerID] = owned
	}

	// Store a copy to avoid external modifications
	owned[fragment.ID] = fragment.Clone()
	return nil
}

func (r *Repository) GetMetadata(ctx context.Context, ownerID, id string) (*fragments.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fragment, ok := r.fragments[ownerID][id]
	if !ok {
		return nil, fragments.ErrNotFound
	}
	return fragment.Clone(), nil
}

func (r *Repository) ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error) {
	records, err := r.ListMetadata(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, f := range records {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

func (r *Repository) ListMetadata(ctx context.Context, ownerID string) ([]*fragments.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*fragments.Fragment, 0, len(r.fragments[ownerID]))
	for _, f := range r.fragments[ownerID] {
		result = append(result, f.Clone())
	}

	// Sort by created ascending, id as tie-breaker
	sort.Slice(result, func(i, j int) bool {
		if result[i].Created.Equal(result[j].Created) {
			return result[i].ID < result[j].ID
		}
		return result[i].Created.Before(result[j].Created)
	})

	return result, nil
}

func (r *Repository) DeleteMetadata(ctx context.Context, ownerID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.fragments[ownerID]
	if !ok {
		return false, nil
	}
	if _, ok := owned[id]; !ok {
		return false, nil
	}
	delete(owned, id)
	if len(owned) == 0 {
		delete(r.fragments, ownerID)
	}
	return true, nil
}
