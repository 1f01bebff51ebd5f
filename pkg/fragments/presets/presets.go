// Package presets provides ready-made service wirings for common use cases.
// Presets eliminate boilerplate and provide sensible defaults while remaining
// customizable.
package presets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tendant/simple-fragments/pkg/fragments"
	"github.com/tendant/simple-fragments/pkg/fragments/config"
	memoryrepo "github.com/tendant/simple-fragments/pkg/fragments/repo/memory"
	fsstorage "github.com/tendant/simple-fragments/pkg/fragments/storage/fs"
	memorystorage "github.com/tendant/simple-fragments/pkg/fragments/storage/memory"
)

// NewDevelopment creates a service configured for local development.
//
// Features:
//   - In-memory metadata (instant startup, no setup required)
//   - Filesystem data at ./dev-data/
//   - Logging event sink
//
// The cleanup function removes the data directory.
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (fragments.Service, func(), error) {
	cfg := &devConfig{
		storageDir:  "./dev-data",
		compression: fsstorage.CompressionNone,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	fsBackend, err := fsstorage.New(fsstorage.Config{
		BaseDir:     cfg.storageDir,
		Compression: cfg.compression,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	svc, err := fragments.New(
		fragments.WithStores(memoryrepo.New(), fsBackend),
		fragments.WithEventSink(fragments.NewLoggingEventSink(cfg.logger)),
		fragments.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates an in-memory service for unit tests. It fails the test
// on setup errors instead of returning them.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t)
//	    // use svc
//	}
func NewTesting(t *testing.T, opts ...TestingOption) fragments.Service {
	t.Helper()

	cfg := &testConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	options := []fragments.Option{
		fragments.WithStores(memoryrepo.New(), memorystorage.New()),
		fragments.WithEventSink(fragments.NewNoopEventSink()),
	}
	if cfg.clock != nil {
		options = append(options, fragments.WithClock(cfg.clock))
	}

	svc, err := fragments.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	for _, f := range cfg.fixtures {
		if _, err := svc.CreateFragment(context.Background(), f); err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
	}

	return svc
}

// NewProduction builds a service from the environment and insists on
// persistent stores.
func NewProduction(ctx context.Context, logger *slog.Logger, opts ...config.Option) (fragments.Service, func(), error) {
	cfg, err := config.Load(append([]config.Option{config.WithEnv()}, opts...)...)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DatabaseType == "memory" {
		return nil, nil, fmt.Errorf("production preset requires a persistent DATABASE_URL (memory not allowed in production)")
	}
	if cfg.Storage.Type == "memory" {
		return nil, nil, fmt.Errorf("production preset requires persistent storage (s3 or fs, not memory)")
	}

	return cfg.BuildService(ctx, logger)
}

type devConfig struct {
	storageDir  string
	compression string
	logger      *slog.Logger
}

type testConfig struct {
	clock    func() time.Time
	fixtures []fragments.CreateFragmentRequest
}

// DevelopmentOption configures NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the data directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(c *devConfig) {
		c.storageDir = dir
	}
}

// WithDevCompression compresses stored data (zstd or lz4)
func WithDevCompression(compression string) DevelopmentOption {
	return func(c *devConfig) {
		c.compression = compression
	}
}

// WithDevLogger sets the logger for the service and its event sink
func WithDevLogger(logger *slog.Logger) DevelopmentOption {
	return func(c *devConfig) {
		c.logger = logger
	}
}

// TestingOption configures NewTesting
type TestingOption func(*testConfig)

// WithTestClock fixes the service's time source
func WithTestClock(now func() time.Time) TestingOption {
	return func(c *testConfig) {
		c.clock = now
	}
}

// WithTestFixtures creates the given fragments before returning the service
func WithTestFixtures(fixtures ...fragments.CreateFragmentRequest) TestingOption {
	return func(c *testConfig) {
		c.fixtures = append(c.fixtures, fixtures...)
	}
}
