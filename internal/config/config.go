package config

import (
	"time"

	bztls "github.com/sadopc/bizdesk/internal/core/tls"
)

// Config holds the application configuration.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	UploadTimeout time.Duration `yaml:"upload_timeout"`
	UploadPath    string        `yaml:"upload_path"`
	Proxy         string        `yaml:"proxy"`
	MaxFileSizeMB int           `yaml:"max_file_size_mb"`
	MaxFiles      int           `yaml:"max_files"`
	PageSize      int           `yaml:"page_size"`
	Locale        string        `yaml:"locale"`
	Theme         string        `yaml:"theme"`
	State         StateConfig   `yaml:"state"`
	HistoryPath   string        `yaml:"history_path"`
	Log           LogConfig     `yaml:"log"`
	TLS           *bztls.Config `yaml:"tls,omitempty"`
}

// StateConfig selects the session store backend.
type StateConfig struct {
	Backend  string `yaml:"backend"` // memory, sqlite or redis
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MaxFileBytes returns the per-file upload limit in bytes.
func (c Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:5173/api",
		Timeout:       10 * time.Second,
		UploadTimeout: 30 * time.Second,
		UploadPath:    "/upload",
		MaxFileSizeMB: 100,
		MaxFiles:      10,
		PageSize:      15,
		Locale:        "zh",
		Theme:         "catppuccin-mocha",
		State: StateConfig{
			Backend: "sqlite",
			Path:    defaultDataPath("state.db"),
		},
		HistoryPath: defaultDataPath("history.db"),
		Log: LogConfig{
			Level: "warn",
		},
	}
}
