package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the yaml config, expands ${VAR} references against the
// environment (secrets stay out of the file), applies defaults and validates.
// The returned Config is treated as immutable for the rest of the run.
func LoadConfig(filePath string) (*Config, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.resolveTestMode()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

// resolveTestMode folds the marker-file toggle into the TestMode flag.
// Read once here; nothing re-checks the marker mid-run.
func (c *Config) resolveTestMode() {
	if c.Notify.TestMode || c.Notify.TestMarkerFile == "" {
		return
	}
	if _, err := os.Stat(c.Notify.TestMarkerFile); err == nil {
		c.Notify.TestMode = true
	}
}
