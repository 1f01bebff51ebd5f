package fragments

import (
	"time"

	"github.com/google/uuid"
)

// Fragment is the metadata record of a stored payload. ID, OwnerID, Type and
// Created never change after construction; Size and Updated follow the data.
type Fragment struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"ownerId"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
}

// FragmentParams holds the inputs to NewFragment. Zero values for ID,
// Created and Updated are filled with defaults.
type FragmentParams struct {
	ID      string
	OwnerID string
	Type    string
	Size    int64
	Created time.Time
	Updated time.Time
}

// CommitState describes how far a metadata+data write got.
type CommitState string

const (
	// CommitNone means nothing was persisted
	CommitNone CommitState = "none"
	// CommitMetadataOnly means metadata landed but the data write failed
	CommitMetadataOnly CommitState = "metadata_only"
	// CommitFull means both metadata and data were written
	CommitFull CommitState = "committed"
)

// WriteResult is returned by operations that write a fragment's data.
type WriteResult struct {
	Fragment *Fragment
	State    CommitState
}

// Committed reports whether both halves of the write landed.
func (r *WriteResult) Committed() bool {
	return r != nil && r.State == CommitFull
}

// FragmentData is the payload returned by a read.
type FragmentData struct {
	Fragment  *Fragment
	Data      []byte
	MediaType string
}

// FragmentList holds the result of listing an owner's fragments. IDs is
// always populated; Fragments only when the listing was expanded.
type FragmentList struct {
	IDs       []string
	Fragments []*Fragment
}

func newID() string {
	return uuid.New().String()
}
