package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got: %s", cfg.Port)
	}
	if cfg.DatabaseType != "memory" || cfg.Storage.Type != "memory" {
		t.Errorf("expected memory stores, got: %s/%s", cfg.DatabaseType, cfg.Storage.Type)
	}
	if cfg.MaxBodyBytes != 5*1024*1024 {
		t.Errorf("expected 5 MiB body limit, got: %d", cfg.MaxBodyBytes)
	}
	if cfg.Auth.Mode != "none" {
		t.Errorf("expected auth mode none, got: %s", cfg.Auth.Mode)
	}
}

func TestWithPort(t *testing.T) {
	cfg, err := Load(WithPort("9090"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got: %s", cfg.Port)
	}
}

func TestWithPortEmpty(t *testing.T) {
	_, err := Load(WithPort(""))
	if err == nil {
		t.Error("expected error for empty port, got nil")
	}
}

func TestWithEnvironment(t *testing.T) {
	cfg, err := Load(WithEnvironment("production"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got: %s", cfg.Environment)
	}
}

func TestWithDatabase(t *testing.T) {
	tests := []struct {
		name      string
		dbType    string
		url       string
		wantError bool
	}{
		{"memory valid", "memory", "", false},
		{"postgres valid", "postgres", "postgresql://localhost/test", false},
		{"postgres missing url", "postgres", "", true},
		{"sqlite valid", "sqlite", "/tmp/fragments.db", false},
		{"sqlite missing path", "sqlite", "", true},
		{"invalid type", "mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithDatabase(tt.dbType, tt.url))
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if cfg.DatabaseType != tt.dbType {
				t.Errorf("expected database type %s, got: %s", tt.dbType, cfg.DatabaseType)
			}
		})
	}
}

func TestWithStorage(t *testing.T) {
	tests := []struct {
		name      string
		storage   StorageConfig
		wantError bool
	}{
		{"memory", StorageConfig{Type: "memory"}, false},
		{"fs", StorageConfig{Type: "fs", BaseDir: "/tmp/fragments", Compression: "lz4", Layout: "hashed"}, false},
		{"fs without dir", StorageConfig{Type: "fs"}, true},
		{"s3", StorageConfig{Type: "s3", Bucket: "bucket"}, false},
		{"s3 without bucket", StorageConfig{Type: "s3"}, true},
		{"empty type", StorageConfig{}, true},
		{"unknown type", StorageConfig{Type: "gcs"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithStorage(tt.storage))
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if cfg.Storage.Type != tt.storage.Type {
				t.Errorf("expected storage type %s, got: %s", tt.storage.Type, cfg.Storage.Type)
			}
			if cfg.Storage.Region != "us-east-1" {
				t.Errorf("expected default region to be kept, got: %s", cfg.Storage.Region)
			}
		})
	}
}

func TestWithAuth(t *testing.T) {
	if _, err := Load(WithAuth(AuthConfig{Mode: "jwt"})); err == nil {
		t.Error("expected error for jwt without secret")
	}
	if _, err := Load(WithAuth(AuthConfig{Mode: "oauth"})); err == nil {
		t.Error("expected error for unknown mode")
	}
	cfg, err := Load(WithAuth(AuthConfig{Mode: "basic", BasicUsers: map[string]string{"a": "b"}}))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Auth.Mode != "basic" {
		t.Errorf("expected basic, got: %s", cfg.Auth.Mode)
	}
}

func TestWithMaxBodyBytes(t *testing.T) {
	if _, err := Load(WithMaxBodyBytes(0)); err == nil {
		t.Error("expected error for zero limit")
	}
	cfg, err := Load(WithMaxBodyBytes(10))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.MaxBodyBytes != 10 {
		t.Errorf("expected 10, got: %d", cfg.MaxBodyBytes)
	}
}

func TestWithLogging(t *testing.T) {
	if _, err := Load(WithLogging("xml", "")); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := Load(WithLogging("", "loud")); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOptionOrder(t *testing.T) {
	cfg, err := Load(WithPort("1000"), nil, WithPort("2000"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "2000" {
		t.Errorf("expected later option to win, got: %s", cfg.Port)
	}
}
