package fragments

import (
	"context"
)

// Service defines the main interface for the fragments library
type Service interface {
	// CreateFragment validates the type, stores metadata then data
	CreateFragment(ctx context.Context, req CreateFragmentRequest) (*WriteResult, error)

	// UpdateFragment replaces the data of an existing fragment
	UpdateFragment(ctx context.Context, req UpdateFragmentRequest) (*WriteResult, error)

	// GetFragment returns the metadata record only
	GetFragment(ctx context.Context, ownerID, id string) (*Fragment, error)

	// ReadFragment returns the stored bytes, converted when an extension is given
	ReadFragment(ctx context.Context, req ReadFragmentRequest) (*FragmentData, error)

	// ListFragments returns ids, or full records when expanded
	ListFragments(ctx context.Context, req ListFragmentsRequest) (*FragmentList, error)

	// DeleteFragment removes metadata and data
	DeleteFragment(ctx context.Context, ownerID, id string) error
}
