package fragments

import (
	"context"
)

// MetadataStore persists fragment metadata records keyed by (owner, id).
// Lookups of a missing record return an error wrapping ErrNotFound.
type MetadataStore interface {
	// PutMetadata upserts the record
	PutMetadata(ctx context.Context, fragment *Fragment) error

	// GetMetadata returns the record for the key
	GetMetadata(ctx context.Context, ownerID, id string) (*Fragment, error)

	// ListMetadataIDs returns the ids of every record the owner has
	ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error)

	// ListMetadata returns every record the owner has
	ListMetadata(ctx context.Context, ownerID string) ([]*Fragment, error)

	// DeleteMetadata removes the record, reporting whether it existed
	DeleteMetadata(ctx context.Context, ownerID, id string) (bool, error)
}

// DataStore persists raw fragment bytes keyed by (owner, id).
// Reads of a missing payload return an error wrapping ErrNotFound.
type DataStore interface {
	// PutData writes the payload, replacing any previous one
	PutData(ctx context.Context, ownerID, id string, data []byte) error

	// GetData reads the payload
	GetData(ctx context.Context, ownerID, id string) ([]byte, error)

	// DeleteData removes the payload, reporting whether it existed
	DeleteData(ctx context.Context, ownerID, id string) (bool, error)
}

// Gateway is everything the service needs from persistence: separate
// metadata and data stores addressed by the same key.
type Gateway interface {
	WriteMetadata(ctx context.Context, fragment *Fragment) error
	ReadMetadata(ctx context.Context, ownerID, id string) (*Fragment, error)
	ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error)
	ListMetadata(ctx context.Context, ownerID string) ([]*Fragment, error)
	WriteData(ctx context.Context, ownerID, id string, data []byte) error
	ReadData(ctx context.Context, ownerID, id string) ([]byte, error)

	// DeleteAll removes metadata and data together. A missing key is not an
	// error here; the returned bool reports whether anything was removed.
	DeleteAll(ctx context.Context, ownerID, id string) (bool, error)
}

// MarkdownRenderer turns UTF-8 markdown into UTF-8 HTML
type MarkdownRenderer interface {
	Render(source []byte) ([]byte, error)
}

// ImageTranscoder re-encodes image bytes into the target media type.
// Malformed input must be reported with an error, never a partial image.
type ImageTranscoder interface {
	Transcode(source []byte, targetMediaType string) ([]byte, error)
}

// EventSink defines the interface for fragment lifecycle notifications
type EventSink interface {
	// FragmentCreated is fired after a fragment's first write
	FragmentCreated(ctx context.Context, fragment *Fragment) error

	// FragmentUpdated is fired after a fragment's data is replaced
	FragmentUpdated(ctx context.Context, fragment *Fragment) error

	// FragmentRead is fired after a fragment's data is served
	FragmentRead(ctx context.Context, fragment *Fragment, mediaType string) error

	// FragmentDeleted is fired after a fragment is removed
	FragmentDeleted(ctx context.Context, ownerID, id string) error
}
