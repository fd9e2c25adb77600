package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4310 {
		t.Errorf("expected default port 4310, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Storage.Badger.Path != "./data/folio" {
		t.Errorf("expected default badger path ./data/folio, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Quotes.GetCacheTTL() != 15*time.Minute {
		t.Errorf("expected default quote cache TTL 15m, got %v", cfg.Quotes.GetCacheTTL())
	}
	if cfg.Quotes.GetRequestDelay() != time.Second {
		t.Errorf("expected default request delay 1s, got %v", cfg.Quotes.GetRequestDelay())
	}
	if cfg.Auth.SessionDuration() != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %v", cfg.Auth.SessionDuration())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 4310 {
		t.Errorf("expected default port 4310, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
port = 9090
host = "0.0.0.0"

[auth]
jwt_secret = "file-secret"
session_ttl = "2h"

[quotes]
cache_ttl = "5m"
request_delay = "250ms"

[storage.badger]
path = "/tmp/test-db"

[logging]
level = "debug"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("expected jwt secret from file, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.SessionDuration() != 2*time.Hour {
		t.Errorf("expected session TTL 2h, got %v", cfg.Auth.SessionDuration())
	}
	if cfg.Quotes.GetCacheTTL() != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.Quotes.GetCacheTTL())
	}
	if cfg.Quotes.GetRequestDelay() != 250*time.Millisecond {
		t.Errorf("expected request delay 250ms, got %v", cfg.Quotes.GetRequestDelay())
	}
	if cfg.Storage.Badger.Path != "/tmp/test-db" {
		t.Errorf("expected badger path /tmp/test-db, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_LaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	if err := os.WriteFile(base, []byte("[server]\nport = 8000\nhost = \"base\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(override, []byte("[server]\nport = 8001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 8001 {
		t.Errorf("expected later file to win, got port %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base" {
		t.Errorf("expected untouched keys to survive, got host %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[server\nport ="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFiles(bad); err == nil {
		t.Error("expected parse error for invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "7777")
	t.Setenv("FOLIO_JWT_SECRET", "env-secret")
	t.Setenv("FOLIO_QUOTES_BASE_URL", "http://localhost:9/quote")
	t.Setenv("FOLIO_BADGER_PATH", "/tmp/env-db")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected env port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("expected env jwt secret, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Quotes.BaseURL != "http://localhost:9/quote" {
		t.Errorf("expected env quote base URL, got %s", cfg.Quotes.BaseURL)
	}
	if cfg.Storage.Badger.Path != "/tmp/env-db" {
		t.Errorf("expected env badger path, got %s", cfg.Storage.Badger.Path)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 9100, "0.0.0.0")
	if cfg.Server.Port != 9100 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected flag overrides to apply, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 9100 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected zero-value flags to be ignored, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.JWTSecret = "secret"
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected no issues for complete config, got %v", issues)
	}

	cfg.Auth.JWTSecret = ""
	cfg.Server.Port = 0
	cfg.Storage.Badger.Path = ""
	issues := cfg.Validate()
	if len(issues) != 3 {
		t.Errorf("expected 3 issues, got %d: %v", len(issues), issues)
	}
}

func TestIsDevMode(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.IsDevMode() {
		t.Error("prod default should not be dev mode")
	}
	for _, env := range []string{"dev", "Development", " DEV "} {
		cfg.Environment = env
		if !cfg.IsDevMode() {
			t.Errorf("expected %q to count as dev mode", env)
		}
	}
}
