package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"firegate/internal/faults"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Quality.Threshold == 0 {
		cfg.Quality.Threshold = 90
	}
	if cfg.Quality.TrendWindow == 0 {
		cfg.Quality.TrendWindow = time.Hour
	}
	if cfg.Retry == (faults.Policy{}) {
		cfg.Retry = faults.DefaultPolicy
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].Interval == 0 {
			cfg.Sources[i].Interval = 30 * time.Second
		}
		if cfg.Sources[i].BatchSize == 0 {
			cfg.Sources[i].BatchSize = 500
		}
	}

	return &cfg, nil
}
