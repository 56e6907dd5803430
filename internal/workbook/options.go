package workbook

import (
	"net/http"

	"github.com/JonMunkholm/tabular/internal/config"
	"github.com/JonMunkholm/tabular/internal/remote"
)

// Option configures a Workbook.
type Option func(*options)

type options struct {
	autoWidth     bool
	widthPadding  float64
	maxWidth      float64
	defaultSheet  string
	checkInterval int
	remote        remote.Options
}

func defaultOptions() options {
	return options{
		autoWidth:     true,
		widthPadding:  2,
		maxWidth:      80,
		defaultSheet:  "Sheet1",
		checkInterval: 100,
	}
}

// WithAutoWidth toggles content-based column sizing on write.
func WithAutoWidth(on bool) Option {
	return func(o *options) { o.autoWidth = on }
}

// WithWidth sets the padding added to the widest cell and the width cap.
func WithWidth(padding, max float64) Option {
	return func(o *options) {
		if padding >= 0 {
			o.widthPadding = padding
		}
		if max > 0 {
			o.maxWidth = max
		}
	}
}

// WithDefaultSheet names the first sheet of a created workbook.
func WithDefaultSheet(name string) Option {
	return func(o *options) {
		if name != "" {
			o.defaultSheet = name
		}
	}
}

// WithCheckInterval sets how many rows are processed between cancellation
// checks.
func WithCheckInterval(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.checkInterval = n
		}
	}
}

// WithHTTPClient sets the client used by OpenURL.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.remote.Client = c }
}

// FromConfig translates loaded configuration into options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithAutoWidth(cfg.Workbook.AutoWidth),
		WithWidth(cfg.Workbook.WidthPadding, cfg.Workbook.MaxWidth),
		WithDefaultSheet(cfg.Workbook.DefaultSheet),
		WithCheckInterval(cfg.Document.CheckInterval),
		func(o *options) {
			o.remote.MaxBytes = cfg.Remote.MaxBytes
			o.remote.UserAgent = cfg.Remote.UserAgent
		},
	}
}
