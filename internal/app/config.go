package app

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings: where observations come
// from, where results go, and whether debug logging is on. The analysis
// itself is configured by the YAML spec file, not the environment.
type Config struct {
	DatasetPath string `envconfig:"PKCURVE_DATASET" default:""`
	OutputDir   string `envconfig:"PKCURVE_OUT" default:"out"`
	Verbose     bool   `envconfig:"PKCURVE_VERBOSE" default:"false"`

	DatabaseURL   string `envconfig:"PKCURVE_DATABASE_URL" default:""`
	DatabaseToken string `envconfig:"PKCURVE_DATABASE_TOKEN" default:""`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
