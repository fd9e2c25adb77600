package config

import common "github.com/folioworks/folio/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4310,
			Host: "localhost",
		},
		Auth: AuthConfig{
			SessionTTL: "24h",
		},
		Quotes: QuotesConfig{
			BaseURL:      "https://query1.finance.yahoo.com/v7/finance/quote",
			Timeout:      "30s",
			CacheTTL:     "15m",
			RequestDelay: "1s",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/folio",
			},
		},
		Logging: common.LoggingConfig{
			Level: "info",
		},
	}
}
