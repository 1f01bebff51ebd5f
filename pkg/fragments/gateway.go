package fragments

import (
	"context"
	"errors"
	"fmt"
)

// storeGateway joins a MetadataStore and a DataStore into a Gateway
type storeGateway struct {
	meta MetadataStore
	data DataStore
}

// NewGateway combines a metadata store and a data store
func NewGateway(meta MetadataStore, data DataStore) Gateway {
	return &storeGateway{meta: meta, data: data}
}

func (g *storeGateway) WriteMetadata(ctx context.Context, fragment *Fragment) error {
	return g.meta.PutMetadata(ctx, fragment)
}

func (g *storeGateway) ReadMetadata(ctx context.Context, ownerID, id string) (*Fragment, error) {
	return g.meta.GetMetadata(ctx, ownerID, id)
}

func (g *storeGateway) ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error) {
	return g.meta.ListMetadataIDs(ctx, ownerID)
}

func (g *storeGateway) ListMetadata(ctx context.Context, ownerID string) ([]*Fragment, error) {
	return g.meta.ListMetadata(ctx, ownerID)
}

func (g *storeGateway) WriteData(ctx context.Context, ownerID, id string, data []byte) error {
	return g.data.PutData(ctx, ownerID, id, data)
}

func (g *storeGateway) ReadData(ctx context.Context, ownerID, id string) ([]byte, error) {
	return g.data.GetData(ctx, ownerID, id)
}

// DeleteAll removes metadata first so readers stop seeing the fragment even if
// the data delete fails.
func (g *storeGateway) DeleteAll(ctx context.Context, ownerID, id string) (bool, error) {
	metaExisted, err := g.meta.DeleteMetadata(ctx, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete metadata: %w", err)
	}

	dataExisted, err := g.data.DeleteData(ctx, ownerID, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return metaExisted, fmt.Errorf("delete data: %w", err)
	}

	return metaExisted || dataExisted, nil
}
