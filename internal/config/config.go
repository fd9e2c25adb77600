package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	common "github.com/folioworks/folio/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Auth        AuthConfig           `toml:"auth"`
	Quotes      QuotesConfig         `toml:"quotes"`
	Storage     StorageConfig        `toml:"storage"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// AuthConfig contains session settings.
type AuthConfig struct {
	JWTSecret  string `toml:"jwt_secret"`
	SessionTTL string `toml:"session_ttl"`
	UsersFile  string `toml:"users_file"`
}

// SessionDuration parses the session TTL, defaulting to 24h.
func (a AuthConfig) SessionDuration() time.Duration {
	d, err := time.ParseDuration(a.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// QuotesConfig contains upstream quote provider settings.
type QuotesConfig struct {
	BaseURL      string `toml:"base_url"`
	Timeout      string `toml:"timeout"`
	CacheTTL     string `toml:"cache_ttl"`
	RequestDelay string `toml:"request_delay"`
}

// GetTimeout parses and returns the HTTP timeout duration.
func (q QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(q.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses the quote cache TTL, falling back to the freshness default.
func (q QuotesConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(q.CacheTTL)
	if err != nil || d <= 0 {
		return common.FreshnessQuote
	}
	return d
}

// GetRequestDelay parses the inter-request delay, falling back to the default.
func (q QuotesConfig) GetRequestDelay() time.Duration {
	d, err := time.ParseDuration(q.RequestDelay)
	if err != nil || d < 0 {
		return common.QuoteRequestDelay
	}
	return d
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// IsDevMode returns true when the environment is set to dev.
func (c *Config) IsDevMode() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "dev" || env == "development"
}

// Validate checks mandatory configuration and returns a list of issues.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be 1-65535 (got %d)", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		issues = append(issues, "auth.jwt_secret is required (set FOLIO_JWT_SECRET or auth.jwt_secret)")
	}
	if c.Storage.Badger.Path == "" {
		issues = append(issues, "storage.badger.path is required")
	}
	return issues
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENVIRONMENT"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if secret := os.Getenv("FOLIO_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if usersFile := os.Getenv("FOLIO_USERS_FILE"); usersFile != "" {
		config.Auth.UsersFile = usersFile
	}
	if baseURL := os.Getenv("FOLIO_QUOTES_BASE_URL"); baseURL != "" {
		config.Quotes.BaseURL = baseURL
	}
	if badgerPath := os.Getenv("FOLIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
