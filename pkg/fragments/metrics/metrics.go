// Package metrics exports fragment service activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tendant/simple-fragments/pkg/fragments"
)

// EventSink counts service events. It implements fragments.EventSink.
type EventSink struct {
	created *prometheus.CounterVec
	updated *prometheus.CounterVec
	reads   *prometheus.CounterVec
	deleted prometheus.Counter
	bytes   *prometheus.HistogramVec
}

// NewEventSink registers the fragment metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewEventSink(reg prometheus.Registerer) (*EventSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &EventSink{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fragments",
			Name:      "created_total",
			Help:      "Fragments created, by base media type.",
		}, []string{"type"}),
		updated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fragments",
			Name:      "updated_total",
			Help:      "Fragment data replacements, by base media type.",
		}, []string{"type"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fragments",
			Name:      "reads_total",
			Help:      "Fragment reads, by stored and served media type.",
		}, []string{"type", "served"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fragments",
			Name:      "deleted_total",
			Help:      "Fragments deleted.",
		}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fragments",
			Name:      "write_bytes",
			Help:      "Size of written fragment data.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"type"}),
	}

	for _, c := range []prometheus.Collector{s.created, s.updated, s.reads, s.deleted, s.bytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *EventSink) FragmentCreated(ctx context.Context, fragment *fragments.Fragment) error {
	typ := fragment.MimeType()
	s.created.WithLabelValues(typ).Inc()
	s.bytes.WithLabelValues(typ).Observe(float64(fragment.Size))
	return nil
}

func (s *EventSink) FragmentUpdated(ctx context.Context, fragment *fragments.Fragment) error {
	typ := fragment.MimeType()
	s.updated.WithLabelValues(typ).Inc()
	s.bytes.WithLabelValues(typ).Observe(float64(fragment.Size))
	return nil
}

func (s *EventSink) FragmentRead(ctx context.Context, fragment *fragments.Fragment, mediaType string) error {
	served, err := fragments.BaseMediaType(mediaType)
	if err != nil {
		served = mediaType
	}
	s.reads.WithLabelValues(fragment.MimeType(), served).Inc()
	return nil
}

func (s *EventSink) FragmentDeleted(ctx context.Context, ownerID, id string) error {
	s.deleted.Inc()
	return nil
}
