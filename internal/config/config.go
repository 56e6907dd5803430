// Package config provides centralized configuration for the tabular codec.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

// Config holds all codec configuration.
// All settings can be configured via environment variables.
type Config struct {
	Logging  LoggingConfig
	Document DocumentConfig
	Workbook WorkbookConfig
	Remote   RemoteConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envAlt:"TABULAR_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envAlt:"TABULAR_LOG_FORMAT" default:"text"`
}

// DocumentConfig holds text document settings.
type DocumentConfig struct {
	// SkipBOM drops a leading UTF-8 byte order mark on read (default: true)
	SkipBOM bool `env:"TABULAR_SKIP_BOM" default:"true"`

	// SanitizeUTF8 replaces invalid UTF-8 bytes with '?' on read (default: true)
	SanitizeUTF8 bool `env:"TABULAR_SANITIZE_UTF8" default:"true"`

	// CheckInterval is how many rows are processed between context checks (default: 100)
	CheckInterval int `env:"TABULAR_CHECK_INTERVAL" default:"100"`
}

// WorkbookConfig holds spreadsheet settings.
type WorkbookConfig struct {
	// AutoWidth sizes columns from their content on write (default: true)
	AutoWidth bool `env:"TABULAR_AUTO_WIDTH" default:"true"`

	// WidthPadding is added to the widest cell of a column (default: 2)
	WidthPadding float64 `env:"TABULAR_WIDTH_PADDING" default:"2"`

	// MaxWidth caps automatic column widths (default: 80)
	MaxWidth float64 `env:"TABULAR_MAX_WIDTH" default:"80"`

	// DefaultSheet is the sheet used when none is named (default: Sheet1)
	DefaultSheet string `env:"TABULAR_DEFAULT_SHEET" default:"Sheet1"`
}

// RemoteConfig holds URL source settings.
type RemoteConfig struct {
	// MaxBytes limits how much of a remote document is buffered (default: 256MB)
	MaxBytes int64 `env:"TABULAR_REMOTE_MAX_BYTES" default:"268435456"`

	// UserAgent is sent with every GET (default: tabular)
	UserAgent string `env:"TABULAR_USER_AGENT" default:"tabular"`
}

// Default returns the configuration produced by the default tags alone.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Document: DocumentConfig{SkipBOM: true, SanitizeUTF8: true, CheckInterval: 100},
		Workbook: WorkbookConfig{AutoWidth: true, WidthPadding: 2, MaxWidth: 80, DefaultSheet: "Sheet1"},
		Remote:   RemoteConfig{MaxBytes: 268435456, UserAgent: "tabular"},
	}
}
