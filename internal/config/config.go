// Package config loads the evidence-locker configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/evidence-locker/internal/kv"
	"github.com/rcliao/evidence-locker/internal/locker"
	"github.com/rcliao/evidence-locker/internal/store"
)

// Environment variables consulted by Load.
const (
	EnvConfig = "EVIDENCE_LOCKER_CONFIG"
	EnvDB     = "EVIDENCE_LOCKER_DB"
	EnvRedis  = "EVIDENCE_LOCKER_REDIS_URL"
)

// Config is the full runtime configuration.
type Config struct {
	Storage          Storage       `yaml:"storage"`
	Retention        time.Duration `yaml:"retention"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	VehicleWindow    time.Duration `yaml:"vehicle_window"`
	Listen           string        `yaml:"listen"`
}

// Storage selects the durable backend.
type Storage struct {
	Backend       string        `yaml:"backend"`
	Path          string        `yaml:"path"`
	Key           string        `yaml:"key"`
	KeepRevisions int           `yaml:"keep_revisions"`
	Timeout       time.Duration `yaml:"timeout"`
	RedisURL      string        `yaml:"redis_url"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	S3            kv.S3Config   `yaml:"s3"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:       kv.BackendSQLite,
			Path:          defaultDBPath(),
			Key:           store.DefaultKey,
			KeepRevisions: kv.DefaultKeepRevisions,
			Timeout:       store.DefaultTimeout,
			RedisPrefix:   "evidence-locker:",
		},
		Retention:        store.DefaultRetention,
		AutosaveInterval: store.DefaultAutosaveInterval,
		VehicleWindow:    locker.DefaultVehicleWindow,
		Listen:           ":8080",
	}
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".evidence-locker", "locker.db")
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $EVIDENCE_LOCKER_CONFIG, or ~/.evidence-locker/config.yaml), then
// environment overrides. A missing file at the default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(filepath.Dir(defaultDBPath()), "config.yaml")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if v := os.Getenv(EnvDB); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvRedis); v != "" {
		cfg.Storage.RedisURL = v
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendSQLite, kv.BackendRedis, kv.BackendS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave_interval must be positive")
	}
	if c.VehicleWindow <= 0 {
		return fmt.Errorf("vehicle_window must be positive")
	}
	return nil
}

// KVOptions converts the storage section for kv.Open.
func (c Config) KVOptions() kv.Options {
	return kv.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		KeepRevisions: c.Storage.KeepRevisions,
		RedisURL:      c.Storage.RedisURL,
		RedisPrefix:   c.Storage.RedisPrefix,
		S3:            c.Storage.S3,
	}
}
