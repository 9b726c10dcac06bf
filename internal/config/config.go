// Package config loads the dsg command configuration.
//
// Values are layered: Default, then an optional YAML file, then DSG_*
// environment variables. Command-line flags are applied last by cmd/dsg.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "DSG_"

// Config holds every setting of a dsg session.
type Config struct {
	Server     string `yaml:"server" env:"SERVER"`
	StatusFile string `yaml:"status_file" env:"STATUS_FILE"`

	Normalize bool    `yaml:"normalize" env:"NORMALIZE"`
	TimeScale float64 `yaml:"time_scale" env:"TIME_SCALE"`
	VRMode    bool    `yaml:"vr_mode" env:"VR_MODE"`

	Temporal     bool   `yaml:"temporal" env:"TEMPORAL"`
	Spontaneous  bool   `yaml:"spontaneous" env:"SPONTANEOUS"`
	MaxChunkSize uint32 `yaml:"max_chunk_size" env:"MAX_CHUNK_SIZE"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`

	Redis Redis `yaml:"redis" envPrefix:"REDIS_"`
}

// Redis configures the optional Redis status publisher, fingerprint store
// and connection lock. An empty Addr disables all three.
type Redis struct {
	Addr   string        `yaml:"addr" env:"ADDR"`
	Prefix string        `yaml:"prefix" env:"PREFIX"`
	TTL    time.Duration `yaml:"ttl" env:"TTL"`
	Lock   bool          `yaml:"lock" env:"LOCK"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:       "127.0.0.1:12345",
		Normalize:    false,
		TimeScale:    1,
		Spontaneous:  true,
		MaxChunkSize: domain.DefaultMaximumChunkSize,
		LogLevel:     "info",
		LogFormat:    "text",
		Redis: Redis{
			Prefix: "dsg:",
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.TimeScale <= 0 {
		errs = append(errs, fmt.Errorf("time_scale must be positive, got %v", c.TimeScale))
	}
	if c.MaxChunkSize == 0 {
		errs = append(errs, errors.New("max_chunk_size must be positive"))
	}
	return errors.Join(errs...)
}

// Control returns the control request announced at connection start.
func (c Config) Control() domain.ControlRequest {
	return domain.ControlRequest{
		AllowSpontaneous:        c.Spontaneous,
		IncludeTemporalGeometry: c.Temporal,
		MaximumChunkSize:        c.MaxChunkSize,
	}
}
