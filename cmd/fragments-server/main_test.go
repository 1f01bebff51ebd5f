package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-fragments/pkg/fragments/api"
	"github.com/tendant/simple-fragments/pkg/fragments/config"
)

func TestServerEndToEnd(t *testing.T) {
	cfg, err := config.Load(config.WithAPIURL("http://fragments.test"))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server, cleanup, err := newServer(context.Background(), cfg, logger, reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	require.NoError(t, err)
	defer cleanup()

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/fragments", strings.NewReader("# hi"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/markdown")
	req.Header.Set(api.OwnerHeader, "user1@email.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "http://fragments.test/v1/fragments/"), location)
	id := strings.TrimPrefix(location, "http://fragments.test/v1/fragments/")

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/v1/fragments/"+id+".html", nil)
	require.NoError(t, err)
	req.Header.Set(api.OwnerHeader, "user1@email.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<h1>hi</h1>\n", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `fragments_created_total{type="text/markdown"} 1`)
}

func TestRunRejectsBadFlags(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--no-such-flag"}, &out)
	assert.Error(t, err)
}

func TestRunRejectsMissingConfigFile(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--config", "/does/not/exist.yaml"}, &out)
	assert.Error(t, err)
}
