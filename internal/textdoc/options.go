package textdoc

import (
	"net/http"

	"github.com/JonMunkholm/tabular/internal/config"
	"github.com/JonMunkholm/tabular/internal/csv"
	"github.com/JonMunkholm/tabular/internal/remote"
)

// Option configures a Document.
type Option func(*options)

type options struct {
	stream        csv.StreamOptions
	checkInterval int
	remote        remote.Options
}

func defaultOptions() options {
	return options{
		stream:        csv.StreamOptions{SkipBOM: true, SanitizeUTF8: true},
		checkInterval: 100,
	}
}

// WithStream selects the read-side stream hygiene.
func WithStream(s csv.StreamOptions) Option {
	return func(o *options) { o.stream = s }
}

// WithCheckInterval sets how many lines are read between cancellation checks.
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

// WithMaxBytes bounds the size of a URL source.
func WithMaxBytes(n int64) Option {
	return func(o *options) { o.remote.MaxBytes = n }
}

// FromConfig translates loaded configuration into options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithStream(csv.StreamOptions{
			SkipBOM:      cfg.Document.SkipBOM,
			SanitizeUTF8: cfg.Document.SanitizeUTF8,
		}),
		WithCheckInterval(cfg.Document.CheckInterval),
		WithMaxBytes(cfg.Remote.MaxBytes),
		func(o *options) { o.remote.UserAgent = cfg.Remote.UserAgent },
	}
}
