package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the pathflow.yaml file.
type Config struct {
	// Model is the fixture file holding the models to edit.
	Model     string  `yaml:"model" json:"model"`
	GridUnit  float64 `yaml:"grid_unit" json:"grid_unit"`
	UndoLimit int     `yaml:"undo_limit" json:"undo_limit"`
	LogLevel  string  `yaml:"log_level" json:"log_level"`

	HTTP  HTTPConfig   `yaml:"http" json:"http"`
	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

// RedisConfig enables change fan-out and the session lock. Absent means off.
type RedisConfig struct {
	Addr    string        `yaml:"addr" json:"addr"`
	Channel string        `yaml:"channel" json:"channel"`
	History int           `yaml:"history" json:"history"`
	LockKey string        `yaml:"lock_key" json:"lock_key"`
	LockTTL time.Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		GridUnit:  10,
		UndoLimit: 100,
		LogLevel:  "info",
		HTTP: HTTPConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// Relative model paths are resolved against the config file.
	if cfg.Model != "" && !filepath.IsAbs(cfg.Model) {
		cfg.Model = filepath.Join(filepath.Dir(path), cfg.Model)
	}
	cfg.Redis.applyDefaults()

	return cfg, cfg.Validate()
}

func (r *RedisConfig) applyDefaults() {
	if r == nil {
		return
	}
	if r.Channel == "" {
		r.Channel = "pathflow:changes"
	}
	if r.LockKey == "" {
		r.LockKey = "pathflow:session"
	}
	if r.LockTTL == 0 {
		r.LockTTL = 5 * time.Second
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.GridUnit < 0 {
		errs = append(errs, fmt.Errorf("grid_unit must not be negative, got %v", c.GridUnit))
	}
	if c.UndoLimit < 0 {
		errs = append(errs, fmt.Errorf("undo_limit must not be negative, got %d", c.UndoLimit))
	}
	if c.Redis != nil {
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when redis is configured"))
		}
		if c.Redis.History < 0 {
			errs = append(errs, fmt.Errorf("redis.history must not be negative, got %d", c.Redis.History))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
