package fragments

// CreateFragmentRequest contains parameters for creating a fragment
type CreateFragmentRequest struct {
	OwnerID string
	Type    string
	Data    []byte
}

// UpdateFragmentRequest contains parameters for replacing a fragment's data.
// Type must have the same base media type as the stored fragment.
type UpdateFragmentRequest struct {
	OwnerID string
	ID      string
	Type    string
	Data    []byte
}

// ReadFragmentRequest contains parameters for reading a fragment's data.
// An empty Extension returns the stored bytes and type unchanged.
type ReadFragmentRequest struct {
	OwnerID   string
	ID        string
	Extension string
}

// ListFragmentsRequest contains parameters for listing an owner's fragments
type ListFragmentsRequest struct {
	OwnerID string
	Expand  bool
}
