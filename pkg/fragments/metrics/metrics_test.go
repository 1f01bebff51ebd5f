package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-fragments/pkg/fragments"
	"github.com/tendant/simple-fragments/pkg/fragments/repo/memory"
	memorystorage "github.com/tendant/simple-fragments/pkg/fragments/storage/memory"
)

func TestEventSinkCountsServiceActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewEventSink(reg)
	require.NoError(t, err)

	svc, err := fragments.New(
		fragments.WithStores(memory.New(), memorystorage.New()),
		fragments.WithEventSink(sink),
	)
	require.NoError(t, err)

	ctx := context.Background()
	created, err := svc.CreateFragment(ctx, fragments.CreateFragmentRequest{
		OwnerID: "owner", Type: "text/markdown; charset=utf-8", Data: []byte("# m"),
	})
	require.NoError(t, err)
	id := created.Fragment.ID

	_, err = svc.UpdateFragment(ctx, fragments.UpdateFragmentRequest{
		OwnerID: "owner", ID: id, Type: "text/markdown", Data: []byte("# mm"),
	})
	require.NoError(t, err)

	_, err = svc.ReadFragment(ctx, fragments.ReadFragmentRequest{OwnerID: "owner", ID: id, Extension: ".html"})
	require.NoError(t, err)
	_, err = svc.ReadFragment(ctx, fragments.ReadFragmentRequest{OwnerID: "owner", ID: id})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFragment(ctx, "owner", id))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.created.WithLabelValues("text/markdown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.updated.WithLabelValues("text/markdown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.reads.WithLabelValues("text/markdown", "text/html")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.reads.WithLabelValues("text/markdown", "text/markdown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.deleted))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.bytes))
}

func TestNewEventSinkRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewEventSink(reg)
	require.NoError(t, err)

	_, err = NewEventSink(reg)
	assert.Error(t, err)
}
