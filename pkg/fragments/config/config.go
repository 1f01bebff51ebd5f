package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-fragments/pkg/fragments"
	"github.com/tendant/simple-fragments/pkg/fragments/objectkey"
	"github.com/tendant/simple-fragments/pkg/fragments/repo/memory"
	repopg "github.com/tendant/simple-fragments/pkg/fragments/repo/postgres"
	reposqlite "github.com/tendant/simple-fragments/pkg/fragments/repo/sqlite"
	fsstorage "github.com/tendant/simple-fragments/pkg/fragments/storage/fs"
	memorystorage "github.com/tendant/simple-fragments/pkg/fragments/storage/memory"
	s3storage "github.com/tendant/simple-fragments/pkg/fragments/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultMaxBodyBytes caps fragment uploads at 5 MiB
const DefaultMaxBodyBytes int64 = 5 << 20

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		APIURL:       "http://localhost:8080",
		DatabaseType: "memory",
		AutoMigrate:  true,
		Storage: StorageConfig{
			Type:        "memory",
			Compression: fsstorage.CompressionNone,
			Layout:      objectkey.LayoutFlat,
			Region:      "us-east-1",
		},
		Auth: AuthConfig{
			Mode: "none",
		},
		MaxBodyBytes:       DefaultMaxBodyBytes,
		LogLevel:           "info",
		LogFormat:          "json",
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the fragments service
type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"` // development, production, testing
	APIURL      string `yaml:"api_url"`     // base URL used in Location headers

	// Database configuration
	DatabaseURL  string `yaml:"database_url"`
	DatabaseType string `yaml:"database_type"` // "memory", "postgres", "sqlite"
	DBSchema     string `yaml:"db_schema"`     // Postgres schema; empty uses search_path
	AutoMigrate  bool   `yaml:"auto_migrate"`

	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`

	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, text, tint

	EnableEventLogging bool `yaml:"enable_event_logging"`
}

// StorageConfig selects and configures the data store
type StorageConfig struct {
	Type string `yaml:"type"` // "memory", "fs", "s3"

	// fs
	BaseDir     string `yaml:"base_dir"`
	Compression string `yaml:"compression"` // none, zstd, lz4

	// fs and s3
	Layout string `yaml:"layout"` // flat, sharded, hashed

	// s3
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CreateBucket    bool   `yaml:"create_bucket"`
}

// AuthConfig selects how requests are mapped to an owner
type AuthConfig struct {
	Mode       string            `yaml:"mode"` // none, basic, jwt
	BasicUsers map[string]string `yaml:"basic_users"`
	JWTSecret  string            `yaml:"jwt_secret"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			return errors.New("database_url (file path) is required when using sqlite")
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Storage.Compression {
	case "", fsstorage.CompressionNone, fsstorage.CompressionZstd, fsstorage.CompressionLZ4:
	default:
		return fmt.Errorf("unsupported storage compression: %s", c.Storage.Compression)
	}

	if _, err := objectkey.NewFromLayout(c.Storage.Layout); err != nil {
		return err
	}

	switch c.Auth.Mode {
	case "none":
	case "basic":
		if len(c.Auth.BasicUsers) == 0 {
			return errors.New("basic auth requires at least one user")
		}
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return errors.New("jwt auth requires a secret")
		}
	default:
		return fmt.Errorf("auth mode must be 'none', 'basic' or 'jwt', got: %s", c.Auth.Mode)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got: %d", c.MaxBodyBytes)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text", "tint":
	default:
		return fmt.Errorf("log format must be 'json', 'text' or 'tint', got: %s", c.LogFormat)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup releases database handles.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger, sinks ...fragments.EventSink) (fragments.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	meta, closeMeta, err := c.buildMetadataStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build metadata store: %w", err)
	}

	data, err := c.buildDataStore()
	if err != nil {
		closeMeta()
		return nil, nil, fmt.Errorf("failed to build data store: %w", err)
	}

	if c.EnableEventLogging {
		sinks = append(sinks, fragments.NewLoggingEventSink(logger))
	}

	svc, err := fragments.New(
		fragments.WithStores(meta, data),
		fragments.WithEventSink(fragments.NewMultiEventSink(sinks...)),
		fragments.WithLogger(logger),
	)
	if err != nil {
		closeMeta()
		return nil, nil, err
	}
	return svc, closeMeta, nil
}

// buildMetadataStore creates a MetadataStore based on the configuration
func (c *ServerConfig) buildMetadataStore(ctx context.Context) (fragments.MetadataStore, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}

		repo := repopg.NewWithPool(pool, c.DBSchema)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repo, pool.Close, nil

	case "sqlite":
		repo, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildDataStore creates a DataStore based on the storage configuration
func (c *ServerConfig) buildDataStore() (fragments.DataStore, error) {
	keys, err := objectkey.NewFromLayout(c.Storage.Layout)
	if err != nil {
		return nil, err
	}

	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:     c.Storage.BaseDir,
			KeyGen:      keys,
			Compression: c.Storage.Compression,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
			KeyGen:                 keys,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
