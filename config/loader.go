package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Load loads configuration from a YAML file and environment variables.
//
// The file is optional; defaults and environment variables alone are
// enough to build a working configuration.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err == nil {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to config.
func applyEnvironmentOverrides(cfg *Config) {
	if endpoint := os.Getenv("LUMINAR_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if mode := os.Getenv("LUMINAR_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if db := os.Getenv("LUMINAR_DEFAULT_DATABASE"); db != "" {
		cfg.DefaultDatabase = db
	}
}
