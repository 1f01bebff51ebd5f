package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithAPIURL sets the externally visible base URL
func WithAPIURL(apiURL string) Option {
	return func(c *ServerConfig) error {
		c.APIURL = apiURL
		return nil
	}
}

// WithDatabase configures the metadata store
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
			url = ""
		case "postgres", "sqlite":
			if url == "" {
				return fmt.Errorf("database url is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithStorage replaces the data store configuration
func WithStorage(storage StorageConfig) Option {
	return func(c *ServerConfig) error {
		if storage.Type == "" {
			return fmt.Errorf("storage type cannot be empty")
		}
		if storage.Region == "" {
			storage.Region = c.Storage.Region
		}
		c.Storage = storage
		return nil
	}
}

// WithFilesystemStorage stores data under baseDir
func WithFilesystemStorage(baseDir, compression, layout string) Option {
	return WithStorage(StorageConfig{
		Type:        "fs",
		BaseDir:     baseDir,
		Compression: compression,
		Layout:      layout,
	})
}

// WithAuth sets how requests are authenticated
func WithAuth(auth AuthConfig) Option {
	return func(c *ServerConfig) error {
		c.Auth = auth
		return nil
	}
}

// WithMaxBodyBytes caps request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive, got: %d", n)
		}
		c.MaxBodyBytes = n
		return nil
	}
}

// WithLogging sets the log format and level
func WithLogging(format, level string) Option {
	return func(c *ServerConfig) error {
		if format != "" {
			c.LogFormat = format
		}
		if level != "" {
			c.LogLevel = level
		}
		return nil
	}
}

// WithEventLogging toggles the logging event sink
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
