package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBaseURL  = "BIZDESK_BASE_URL"
	EnvTimeout  = "BIZDESK_TIMEOUT"
	EnvState    = "BIZDESK_STATE"
	EnvRedisURL = "BIZDESK_REDIS_URL"
	EnvLogLevel = "BIZDESK_LOG_LEVEL"
)

// Path returns the config file location, ~/.config/bizdesk/config.yaml.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bizdesk", "config.yaml")
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "bizdesk", name)
}

// Load loads configuration from ~/.config/bizdesk/config.yaml, then applies
// a .env file in the working directory and the environment on top.
func Load() Config {
	cfg, _ := LoadFile(Path())
	_ = godotenv.Load()
	cfg, _ = ApplyEnv(cfg)
	return cfg
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with BIZDESK_* variables. Invalid values are
// reported and leave the field unchanged.
func ApplyEnv(cfg Config) (Config, error) {
	var firstErr error
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", EnvTimeout, err)
		} else {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv(EnvState); v != "" {
		cfg.State.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.State.RedisURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return cfg, firstErr
}

// parseTimeout accepts a Go duration or a bare number of milliseconds.
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}
