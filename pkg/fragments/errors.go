package fragments

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrValidation indicates malformed construction input such as a missing
	// owner or a negative size
	ErrValidation = errors.New("invalid fragment")

	// ErrUnsupportedMediaType indicates the declared type is not accepted
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrNotFound indicates the fragment is unknown, deleted, or its data is missing
	ErrNotFound = errors.New("fragment not found")

	// ErrUnsupportedConversion indicates the requested extension is unknown or
	// not a legal target for the fragment's type
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrConversionFailed indicates a codec could not process the stored bytes
	ErrConversionFailed = errors.New("conversion failed")

	// ErrEmptyData indicates an empty or absent payload
	ErrEmptyData = errors.New("fragment data cannot be empty")

	// ErrTypeMismatch indicates an update declared a different base type than
	// the stored fragment
	ErrTypeMismatch = errors.New("fragment type cannot be changed")
)

// FragmentError represents an error related to a fragment operation
type FragmentError struct {
	OwnerID string
	ID      string
	Op      string
	Err     error
}

func (e *FragmentError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("fragment operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fragment operation %s failed for fragment %s: %v", e.Op, e.ID, e.Err)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to a backend operation
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
