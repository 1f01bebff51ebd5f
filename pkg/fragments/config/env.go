package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig lists every recognized environment variable. Unset variables
// leave the loaded configuration untouched.
type envConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`
	APIURL      string `env:"API_URL"`

	// DATABASE_URL - "memory", "postgres://…", "postgresql://…" or "sqlite://path"
	DatabaseURL string `env:"DATABASE_URL"`
	DBSchema    string `env:"CONTENT_DB_SCHEMA"`
	AutoMigrate string `env:"DB_AUTO_MIGRATE"`

	// STORAGE_URL - "memory://", "file:///dir?compress=zstd&layout=sharded" or
	// "s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true"
	StorageURL string `env:"STORAGE_URL"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`

	AuthMode       string `env:"AUTH_MODE"`
	BasicAuthUsers string `env:"BASIC_AUTH_USERS"` // user:pass,user2:pass2
	JWTSecret      string `env:"JWT_SECRET"`

	MaxBodyBytes string `env:"MAX_BODY_BYTES"`
	LogLevel     string `env:"LOG_LEVEL"`
	LogFormat    string `env:"LOG_FORMAT"`
}

// WithEnv applies environment variable overrides.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return env.apply(c)
	}
}

func (e *envConfig) apply(c *ServerConfig) error {
	setString(&c.Port, e.Port)
	setString(&c.Environment, e.Environment)
	setString(&c.APIURL, e.APIURL)
	setString(&c.DBSchema, e.DBSchema)
	setString(&c.LogLevel, e.LogLevel)
	setString(&c.LogFormat, e.LogFormat)

	if e.AutoMigrate != "" {
		v, err := strconv.ParseBool(e.AutoMigrate)
		if err != nil {
			return fmt.Errorf("invalid boolean for DB_AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = v
	}

	if e.DatabaseURL != "" {
		if err := applyDatabaseURL(c, e.DatabaseURL); err != nil {
			return err
		}
	}

	setString(&c.Storage.AccessKeyID, e.AWSAccessKeyID)
	setString(&c.Storage.SecretAccessKey, e.AWSSecretAccessKey)
	setString(&c.Storage.Region, e.AWSRegion)

	// query parameters on STORAGE_URL win over AWS_REGION
	if e.StorageURL != "" {
		if err := applyStorageURL(c, e.StorageURL); err != nil {
			return err
		}
	}

	setString(&c.Auth.Mode, e.AuthMode)
	setString(&c.Auth.JWTSecret, e.JWTSecret)
	if e.BasicAuthUsers != "" {
		users, err := parseBasicUsers(e.BasicAuthUsers)
		if err != nil {
			return err
		}
		c.Auth.BasicUsers = users
	}

	if e.MaxBodyBytes != "" {
		n, err := strconv.ParseInt(e.MaxBodyBytes, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for MAX_BODY_BYTES: %w", err)
		}
		c.MaxBodyBytes = n
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// applyDatabaseURL auto-detects the metadata store from the URL
func applyDatabaseURL(c *ServerConfig, dbURL string) error {
	switch {
	case dbURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseType = "sqlite"
		c.DatabaseURL = path
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://path')", dbURL)
	}
	return nil
}

// applyStorageURL configures the data store from a URL
func applyStorageURL(c *ServerConfig, raw string) error {
	if raw == "memory" || raw == "memory://" {
		c.Storage.Type = "memory"
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	query := u.Query()

	switch u.Scheme {
	case "file":
		path := u.Host + u.Path
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = "fs"
		c.Storage.BaseDir = path
		setString(&c.Storage.Compression, query.Get("compress"))
		setString(&c.Storage.Layout, query.Get("layout"))

	case "s3":
		if u.Host == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = "s3"
		c.Storage.Bucket = u.Host
		setString(&c.Storage.Region, query.Get("region"))
		setString(&c.Storage.Endpoint, query.Get("endpoint"))
		setString(&c.Storage.Layout, query.Get("layout"))
		for key, dst := range map[string]*bool{
			"path_style":    &c.Storage.UsePathStyle,
			"create_bucket": &c.Storage.CreateBucket,
		} {
			if v := query.Get(key); v != "" {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fmt.Errorf("invalid boolean for STORAGE_URL %s: %w", key, err)
				}
				*dst = b
			}
		}

	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
	}
	return nil
}

func parseBasicUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("invalid BASIC_AUTH_USERS entry %q (want user:password)", pair)
		}
		users[user] = pass
	}
	return users, nil
}
