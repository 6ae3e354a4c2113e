package config

import (
	"time"

	"firegate/internal/faults"
	"firegate/internal/infra/alert"
	redisclient "firegate/internal/infra/redis"
	"firegate/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Sources  []SourceConfig     `yaml:"sources"`
	Rules    []RuleConfig       `yaml:"rules"`
	Quality  QualityConfig      `yaml:"quality"`
	Retry    faults.Policy      `yaml:"retry"`
	Alert    alert.Config       `yaml:"alert"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// QualityConfig holds quality monitoring settings.
type QualityConfig struct {
	Threshold   float64       `yaml:"threshold"`    // minimum acceptable batch score, percent
	TrendWindow time.Duration `yaml:"trend_window"` // lookback for trend queries
}

// SourceConfig holds settings for one ingestion source.
type SourceConfig struct {
	Name       string        `yaml:"name"        mapstructure:"name"`
	Type       string        `yaml:"type"        mapstructure:"type"` // "csv" or "stream"
	Path       string        `yaml:"path"        mapstructure:"path"` // csv only
	BatchSize  int           `yaml:"batch_size"  mapstructure:"batch_size"`
	Interval   time.Duration `yaml:"interval"    mapstructure:"interval"`
	DefectRate float64       `yaml:"defect_rate" mapstructure:"defect_rate"` // stream only
	Seed       int64         `yaml:"seed"        mapstructure:"seed"`        // stream only
}

// RuleConfig declares one validation rule. Kind selects the predicate;
// "cel" rules compile Expression against each record instead.
type RuleConfig struct {
	Name       string   `yaml:"name"       mapstructure:"name"`
	Kind       string   `yaml:"kind"       mapstructure:"kind"` // not_null, between, at_least, membership, cel
	Column     string   `yaml:"column"     mapstructure:"column"`
	Lo         float64  `yaml:"lo"         mapstructure:"lo"`
	Hi         float64  `yaml:"hi"         mapstructure:"hi"`
	Min        float64  `yaml:"min"        mapstructure:"min"`
	Allowed    []string `yaml:"allowed"    mapstructure:"allowed"`
	Expression string   `yaml:"expression" mapstructure:"expression"` // cel only
	Severity   string   `yaml:"severity"   mapstructure:"severity"`
	Action     string   `yaml:"action"     mapstructure:"action"`
}
