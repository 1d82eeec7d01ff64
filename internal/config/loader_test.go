package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()

	if got.BaseURL != "http://localhost:5173/api" {
		t.Fatalf("BaseURL = %q", got.BaseURL)
	}
	if got.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %s, want 10s", got.Timeout)
	}
	if got.UploadTimeout != 30*time.Second {
		t.Fatalf("UploadTimeout = %s, want 30s", got.UploadTimeout)
	}
	if got.MaxFileBytes() != 100*1024*1024 {
		t.Fatalf("MaxFileBytes() = %d", got.MaxFileBytes())
	}
	if got.PageSize != 15 || got.MaxFiles != 10 {
		t.Fatalf("PageSize/MaxFiles = %d/%d, want 15/10", got.PageSize, got.MaxFiles)
	}
	if got.State.Backend != "sqlite" {
		t.Fatalf("State.Backend = %q, want sqlite", got.State.Backend)
	}
}

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvBaseURL, EnvTimeout, EnvState, EnvRedisURL, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	clearEnv(t)

	got := Load()
	want := DefaultConfig()

	if got.BaseURL != want.BaseURL || got.Timeout != want.Timeout || got.State != want.State {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	clearEnv(t)

	configDir := filepath.Join(home, ".config", "bizdesk")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}

	configYAML := `base_url: https://files.example.com/api
timeout: 5s
page_size: 20
locale: en
state:
  backend: redis
  redis_url: redis://localhost:6379/2
log:
  level: debug
tls:
  ca_file: /etc/ssl/private-ca.pem
`
	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	got := Load()

	if got.BaseURL != "https://files.example.com/api" {
		t.Fatalf("BaseURL = %q", got.BaseURL)
	}
	if got.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %s, want 5s", got.Timeout)
	}
	if got.PageSize != 20 || got.Locale != "en" {
		t.Fatalf("PageSize/Locale = %d/%q", got.PageSize, got.Locale)
	}
	if got.State.Backend != "redis" || got.State.RedisURL != "redis://localhost:6379/2" {
		t.Fatalf("State = %#v", got.State)
	}
	if got.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q", got.Log.Level)
	}
	if got.TLS == nil || got.TLS.CAFile != "/etc/ssl/private-ca.pem" {
		t.Fatalf("TLS = %#v", got.TLS)
	}
	// untouched fields keep their defaults
	if got.MaxFiles != 10 {
		t.Fatalf("MaxFiles = %d, want 10", got.MaxFiles)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("timeout: [nope"), 0644)

	got, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got.Timeout != 10*time.Second {
		t.Fatalf("defaults should survive a parse error, got %s", got.Timeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	t.Chdir(dir)
	clearEnv(t)

	env := EnvBaseURL + "=http://dotenv:8080/api\n" + EnvState + "=memory\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set
	os.Unsetenv(EnvBaseURL)
	os.Unsetenv(EnvState)
	t.Setenv(EnvTimeout, "2500")
	t.Setenv(EnvLogLevel, "info")

	got := Load()
	t.Cleanup(func() {
		os.Unsetenv(EnvBaseURL)
		os.Unsetenv(EnvState)
	})

	if got.BaseURL != "http://dotenv:8080/api" {
		t.Fatalf("BaseURL = %q, want value from .env", got.BaseURL)
	}
	if got.State.Backend != "memory" {
		t.Fatalf("State.Backend = %q", got.State.Backend)
	}
	if got.Timeout != 2500*time.Millisecond {
		t.Fatalf("Timeout = %s, want 2.5s", got.Timeout)
	}
	if got.Log.Level != "info" {
		t.Fatalf("Log.Level = %q", got.Log.Level)
	}
}

func TestApplyEnvRejectsBadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")

	got, err := ApplyEnv(DefaultConfig())
	if err == nil {
		t.Fatal("expected error for invalid timeout")
	}
	if got.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %s, want unchanged 10s", got.Timeout)
	}
}
