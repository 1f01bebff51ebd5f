package fragments

import (
	"context"
	"errors"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) FragmentCreated(ctx context.Context, fragment *Fragment) error {
	return nil
}

func (n *NoopEventSink) FragmentUpdated(ctx context.Context, fragment *Fragment) error {
	return nil
}

func (n *NoopEventSink) FragmentRead(ctx context.Context, fragment *Fragment, mediaType string) error {
	return nil
}

func (n *NoopEventSink) FragmentDeleted(ctx context.Context, ownerID, id string) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action.
// Useful for development and debugging
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) FragmentCreated(ctx context.Context, fragment *Fragment) error {
	l.logger.InfoContext(ctx, "Fragment created",
		"fragment_id", fragment.ID, "owner_id", fragment.OwnerID, "type", fragment.Type, "size", fragment.Size)
	return nil
}

func (l *LoggingEventSink) FragmentUpdated(ctx context.Context, fragment *Fragment) error {
	l.logger.InfoContext(ctx, "Fragment updated",
		"fragment_id", fragment.ID, "owner_id", fragment.OwnerID, "size", fragment.Size)
	return nil
}

func (l *LoggingEventSink) FragmentRead(ctx context.Context, fragment *Fragment, mediaType string) error {
	l.logger.InfoContext(ctx, "Fragment read",
		"fragment_id", fragment.ID, "owner_id", fragment.OwnerID, "media_type", mediaType)
	return nil
}

func (l *LoggingEventSink) FragmentDeleted(ctx context.Context, ownerID, id string) error {
	l.logger.InfoContext(ctx, "Fragment deleted", "fragment_id", id, "owner_id", ownerID)
	return nil
}

// multiEventSink fans events out to several sinks
type multiEventSink []EventSink

// NewMultiEventSink returns a sink that forwards every event to each of sinks.
// All sinks are called; their errors are joined.
func NewMultiEventSink(sinks ...EventSink) EventSink {
	out := make(multiEventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiEventSink) FragmentCreated(ctx context.Context, fragment *Fragment) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FragmentCreated(ctx, fragment))
	}
	return errors.Join(errs...)
}

func (m multiEventSink) FragmentUpdated(ctx context.Context, fragment *Fragment) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FragmentUpdated(ctx, fragment))
	}
	return errors.Join(errs...)
}

func (m multiEventSink) FragmentRead(ctx context.Context, fragment *Fragment, mediaType string) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FragmentRead(ctx, fragment, mediaType))
	}
	return errors.Join(errs...)
}

func (m multiEventSink) FragmentDeleted(ctx context.Context, ownerID, id string) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FragmentDeleted(ctx, ownerID, id))
	}
	return errors.Join(errs...)
}
