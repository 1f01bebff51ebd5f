package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WithFile overlays a YAML configuration file. Keys absent from the file keep
// their current values, so this is usually applied before WithEnv.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
}
