package fragments

import (
	"strings"
	"time"
)

// NewFragment validates params and returns a Fragment. The owner is required,
// the type must be supported and the size must not be negative.
func NewFragment(p FragmentParams) (*Fragment, error) {
	if strings.TrimSpace(p.OwnerID) == "" {
		return nil, validationError("owner id is required")
	}
	if !IsSupportedType(p.Type) {
		return nil, validationError("unsupported type %q", p.Type)
	}
	if p.Size < 0 {
		return nil, validationError("size must be a non-negative number, got %d", p.Size)
	}

	now := time.Now().UTC()
	f := &Fragment{
		ID:      p.ID,
		OwnerID: p.OwnerID,
		Type:    p.Type,
		Size:    p.Size,
		Created: p.Created,
		Updated: p.Updated,
	}
	if f.ID == "" {
		f.ID = newID()
	}
	if f.Created.IsZero() {
		f.Created = now
	}
	if f.Updated.IsZero() {
		f.Updated = f.Created
	}
	return f, nil
}

// Validate re-checks the construction invariants, e.g. on a record read back
// from a store.
func (f *Fragment) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return validationError("id is required")
	}
	_, err := NewFragment(FragmentParams{
		ID:      f.ID,
		OwnerID: f.OwnerID,
		Type:    f.Type,
		Size:    f.Size,
		Created: f.Created,
		Updated: f.Updated,
	})
	return err
}

// Kind returns the fragment's base kind.
func (f *Fragment) Kind() Kind {
	k, err := ParseKind(f.Type)
	if err != nil {
		return KindUnknown
	}
	return k
}

// MimeType returns the type without parameters:
// "text/html; charset=utf-8" -> "text/html".
func (f *Fragment) MimeType() string {
	base, err := BaseMediaType(f.Type)
	if err != nil {
		return f.Type
	}
	return base
}

// IsText reports whether the fragment is a text/* type.
func (f *Fragment) IsText() bool {
	return strings.HasPrefix(f.MimeType(), "text/")
}

// Formats returns the media types this fragment can be converted into.
func (f *Fragment) Formats() []string {
	return TargetsFor(f.Type)
}

// Clone returns a copy that can be handed out without aliasing.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// setData records a new payload on the fragment. It only updates Size and
// Updated; persisting is the caller's job.
func (f *Fragment) setData(data []byte, now time.Time) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	f.Size = int64(len(data))
	if now.Before(f.Created) {
		now = f.Created
	}
	f.Updated = now
	return nil
}
