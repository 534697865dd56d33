// Package config resolves the state directory and the optional
// per-user configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	dirEnv         = "PINGME_DIR"
	logEnv         = "PINGME_LOG"
	fileName       = "config.yaml"
	defaultDirName = ".pingme"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Prefix   string `yaml:"prefix"` // scheduler unit name prefix
	Notify   Notify `yaml:"notify"`

	dir string
}

type Notify struct {
	AppName   string `yaml:"app_name"`
	Icon      string `yaml:"icon"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Load resolves the state directory (PINGME_DIR, else ~/.pingme) and
// merges config.yaml over defaults. A missing file is not an error;
// PINGME_LOG overrides the configured log level.
func Load() (Config, error) {
	dir := os.Getenv(dirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, defaultDirName)
	}

	cfg := Config{
		LogLevel: "warn",
		Prefix:   "pingme",
		Notify:   Notify{AppName: "pingme", Icon: "appointment-soon"},
		dir:      dir,
	}

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", fileName, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", fileName, err)
		}
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "pingme"
	}
	if lv := os.Getenv(logEnv); lv != "" {
		cfg.LogLevel = lv
	}
	return cfg, nil
}

// Dir is the state directory holding the store file, the jobs directory
// and the optional config file.
func (c Config) Dir() string { return c.dir }

// JobsDir holds one unit definition artifact pair per registered job.
func (c Config) JobsDir() string { return filepath.Join(c.dir, "jobs") }

// LogPath is where fired units append their stdout/stderr.
func (c Config) LogPath() string { return filepath.Join(c.dir, "pingme.log") }

func (c Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutMS) * time.Millisecond
}
