package fragments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// service implements the Service interface
type service struct {
	gateway   Gateway
	converter *Converter
	eventSink EventSink
	logger    *slog.Logger
	now       func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithGateway sets the persistence gateway for the service
func WithGateway(gateway Gateway) Option {
	return func(s *service) {
		s.gateway = gateway
	}
}

// WithStores builds the gateway from a metadata store and a data store
func WithStores(meta MetadataStore, data DataStore) Option {
	return func(s *service) {
		s.gateway = NewGateway(meta, data)
	}
}

// WithConverter sets the conversion engine
func WithConverter(converter *Converter) Option {
	return func(s *service) {
		s.converter = converter
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for warnings and debug output
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source; timestamps are always stored in UTC
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if s.converter == nil {
		s.converter = NewConverter()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

func (s *service) CreateFragment(ctx context.Context, req CreateFragmentRequest) (*WriteResult, error) {
	if !IsSupportedType(req.Type) {
		return nil, &FragmentError{
			OwnerID: req.OwnerID,
			Op:      "create",
			Err:     fmt.Errorf("%w: %q", ErrUnsupportedMediaType, req.Type),
		}
	}

	now := s.now().UTC()
	fragment, err := NewFragment(FragmentParams{
		OwnerID: req.OwnerID,
		Type:    req.Type,
		Created: now,
		Updated: now,
	})
	if err != nil {
		return nil, &FragmentError{OwnerID: req.OwnerID, Op: "create", Err: err}
	}

	result, err := s.writeData(ctx, fragment, req.Data, "create")
	if err != nil {
		return result, err
	}

	s.logger.Debug("fragment created",
		"owner_id", fragment.OwnerID, "fragment_id", fragment.ID,
		"type", fragment.Type, "size", fragment.Size)

	if s.eventSink != nil {
		if err := s.eventSink.FragmentCreated(ctx, result.Fragment); err != nil {
			s.logger.Warn("event sink failed", "event", "created", "fragment_id", fragment.ID, "error", err)
		}
	}

	return result, nil
}

func (s *service) UpdateFragment(ctx context.Context, req UpdateFragmentRequest) (*WriteResult, error) {
	existing, err := s.readMetadata(ctx, req.OwnerID, req.ID, "update")
	if err != nil {
		return nil, err
	}

	kind, err := ParseKind(req.Type)
	if err != nil {
		return nil, &FragmentError{OwnerID: req.OwnerID, ID: req.ID, Op: "update", Err: err}
	}
	if kind != existing.Kind() {
		return nil, &FragmentError{
			OwnerID: req.OwnerID,
			ID:      req.ID,
			Op:      "update",
			Err:     fmt.Errorf("%w: stored %s, got %s", ErrTypeMismatch, existing.MimeType(), kind),
		}
	}

	result, err := s.writeData(ctx, existing, req.Data, "update")
	if err != nil {
		return result, err
	}

	s.logger.Debug("fragment updated",
		"owner_id", existing.OwnerID, "fragment_id", existing.ID, "size", existing.Size)

	if s.eventSink != nil {
		if err := s.eventSink.FragmentUpdated(ctx, result.Fragment); err != nil {
			s.logger.Warn("event sink failed", "event", "updated", "fragment_id", existing.ID, "error", err)
		}
	}

	return result, nil
}

// writeData applies data to the fragment and persists metadata, then data.
// The two writes are not atomic; the returned result records how far it got
// and is returned alongside any error.
func (s *service) writeData(ctx context.Context, fragment *Fragment, data []byte, op string) (*WriteResult, error) {
	if err := fragment.setData(data, s.now().UTC()); err != nil {
		return &WriteResult{Fragment: fragment.Clone(), State: CommitNone},
			&FragmentError{OwnerID: fragment.OwnerID, ID: fragment.ID, Op: op, Err: err}
	}

	if err := s.gateway.WriteMetadata(ctx, fragment); err != nil {
		return &WriteResult{Fragment: fragment.Clone(), State: CommitNone},
			&FragmentError{OwnerID: fragment.OwnerID, ID: fragment.ID, Op: op + "_metadata", Err: err}
	}

	if err := s.gateway.WriteData(ctx, fragment.OwnerID, fragment.ID, data); err != nil {
		s.logger.Warn("fragment metadata written without data",
			"owner_id", fragment.OwnerID, "fragment_id", fragment.ID, "error", err)
		return &WriteResult{Fragment: fragment.Clone(), State: CommitMetadataOnly},
			&FragmentError{OwnerID: fragment.OwnerID, ID: fragment.ID, Op: op + "_data", Err: err}
	}

	return &WriteResult{Fragment: fragment.Clone(), State: CommitFull}, nil
}

func (s *service) GetFragment(ctx context.Context, ownerID, id string) (*Fragment, error) {
	return s.readMetadata(ctx, ownerID, id, "get")
}

func (s *service) ReadFragment(ctx context.Context, req ReadFragmentRequest) (*FragmentData, error) {
	fragment, err := s.readMetadata(ctx, req.OwnerID, req.ID, "read")
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.ReadData(ctx, req.OwnerID, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("fragment metadata has no data", "owner_id", req.OwnerID, "fragment_id", req.ID)
		}
		return nil, &FragmentError{OwnerID: req.OwnerID, ID: req.ID, Op: "read_data", Err: err}
	}

	out := &FragmentData{Fragment: fragment, Data: data, MediaType: fragment.Type}
	if req.Extension != "" {
		conversion, err := s.converter.Convert(fragment.Type, data, req.Extension)
		if err != nil {
			return nil, &FragmentError{OwnerID: req.OwnerID, ID: req.ID, Op: "convert", Err: err}
		}
		out.Data = conversion.Data
		out.MediaType = conversion.MediaType
	}

	if s.eventSink != nil {
		if err := s.eventSink.FragmentRead(ctx, fragment, out.MediaType); err != nil {
			s.logger.Warn("event sink failed", "event", "read", "fragment_id", req.ID, "error", err)
		}
	}

	return out, nil
}

func (s *service) ListFragments(ctx context.Context, req ListFragmentsRequest) (*FragmentList, error) {
	list := &FragmentList{IDs: []string{}}

	if !req.Expand {
		ids, err := s.gateway.ListMetadataIDs(ctx, req.OwnerID)
		if err != nil {
			return nil, &FragmentError{OwnerID: req.OwnerID, Op: "list", Err: err}
		}
		list.IDs = append(list.IDs, ids...)
		return list, nil
	}

	records, err := s.gateway.ListMetadata(ctx, req.OwnerID)
	if err != nil {
		return nil, &FragmentError{OwnerID: req.OwnerID, Op: "list", Err: err}
	}
	list.Fragments = make([]*Fragment, 0, len(records))
	for _, f := range records {
		if err := f.Validate(); err != nil {
			return nil, &FragmentError{OwnerID: req.OwnerID, ID: f.ID, Op: "list", Err: err}
		}
		list.IDs = append(list.IDs, f.ID)
		list.Fragments = append(list.Fragments, f)
	}
	return list, nil
}

func (s *service) DeleteFragment(ctx context.Context, ownerID, id string) error {
	removed, err := s.gateway.DeleteAll(ctx, ownerID, id)
	if err != nil {
		return &FragmentError{OwnerID: ownerID, ID: id, Op: "delete", Err: err}
	}
	if !removed {
		return &FragmentError{OwnerID: ownerID, ID: id, Op: "delete", Err: ErrNotFound}
	}

	s.logger.Debug("fragment deleted", "owner_id", ownerID, "fragment_id", id)

	if s.eventSink != nil {
		if err := s.eventSink.FragmentDeleted(ctx, ownerID, id); err != nil {
			s.logger.Warn("event sink failed", "event", "deleted", "fragment_id", id, "error", err)
		}
	}

	return nil
}

func (s *service) readMetadata(ctx context.Context, ownerID, id, op string) (*Fragment, error) {
	fragment, err := s.gateway.ReadMetadata(ctx, ownerID, id)
	if err != nil {
		return nil, &FragmentError{OwnerID: ownerID, ID: id, Op: op, Err: err}
	}
	if err := fragment.Validate(); err != nil {
		s.logger.Warn("stored fragment metadata is invalid", "owner_id", ownerID, "fragment_id", id, "error", err)
		return nil, &FragmentError{OwnerID: ownerID, ID: id, Op: op, Err: err}
	}
	return fragment, nil
}
