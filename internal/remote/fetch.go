// Package remote fetches documents over HTTP for read-only URL sources.
//
// A fetch is one blocking GET with no retry. The whole body is buffered so
// the document model can reread it; MaxBytes bounds that buffer.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/logging"
)

// Options controls a fetch. Zero values select the defaults.
type Options struct {
	Client    *http.Client // default: http.DefaultClient
	MaxBytes  int64        // default: DefaultMaxBytes
	UserAgent string
}

// DefaultMaxBytes caps remote documents at 256MB.
const DefaultMaxBytes int64 = 256 << 20

// Path returns the path component of rawURL, used for format detection.
func Path(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", core.InvalidArgument("parse url", "%q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", core.InvalidArgument("parse url", "%q: scheme must be http or https", rawURL)
	}
	return u.Path, nil
}

// Fetch downloads rawURL. A 404 is ErrNotFound; any other non-2xx status or
// transport failure is ErrIO.
func Fetch(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	const op = "fetch"

	if _, err := Path(rawURL); err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	logger := logging.WithFields(ctx, "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.InvalidArgument(op, "%q: %v", rawURL, err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("remote fetch failed", "error", err)
		return nil, core.IOFailure(op, rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.NotFound(op, rawURL, fmt.Errorf("status %s", resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logger.Error("remote fetch rejected", "status", resp.StatusCode)
		return nil, core.IOFailure(op, rawURL, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		logger.Error("remote body read failed", "error", err)
		return nil, core.IOFailure(op, rawURL, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, core.IOFailure(op, rawURL, fmt.Errorf("document exceeds %d bytes", maxBytes))
	}

	logger.Debug("remote document fetched", "bytes", len(body))
	return body, nil
}
