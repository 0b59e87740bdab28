// Package config loads the service configuration from config.yml, a .env
// file, and environment variables.
package config

import (
	"fmt"

	"github.com/geniuslabs/voiceapi/auth"
	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/server"
	"github.com/geniuslabs/voiceapi/storage"
	"github.com/geniuslabs/voiceapi/transcription"
	"github.com/geniuslabs/voiceapi/transcription/whisper"
)

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`

	Logging       logger.Config              `yaml:"logging" mapstructure:"logging"`
	Server        server.Config              `yaml:"server" mapstructure:"server"`
	Database      database.Config            `yaml:"database" mapstructure:"database"`
	Storage       storage.Config             `yaml:"storage" mapstructure:"storage"`
	Transcription transcription.ClientConfig `yaml:"transcription" mapstructure:"transcription"`
	Whisper       whisper.Config             `yaml:"whisper" mapstructure:"whisper"`
	Auth          auth.Config                `yaml:"auth" mapstructure:"auth"`
	Tracing       observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics       observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	Jobs          JobsConfig                 `yaml:"jobs" mapstructure:"jobs"`
}

// JobsConfig tunes the transcription pipeline.
type JobsConfig struct {
	// Concurrency is the provider concurrency budget shared by all callers.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	// RatePerMinute is the provider's per-minute price in USD.
	RatePerMinute float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "voiceapi"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Auth.ApplyDefaults()
	if c.Jobs.Concurrency <= 0 {
		c.Jobs.Concurrency = 3
	}
	if c.Jobs.RatePerMinute <= 0 {
		c.Jobs.RatePerMinute = transcription.DefaultRatePerMinute
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing = observability.DefaultTracerConfig(c.Name)
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics = observability.DefaultMeterConfig(c.Name)
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.Whisper.APIKey == "" {
		return fmt.Errorf("whisper.api_key is required")
	}
	return nil
}
