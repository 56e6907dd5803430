// Package logging provides structured logging configuration using log/slog.
//
// Loggers taken from a context carry the chi request id (when the codec runs
// behind an HTTP handler) and the document operation id, so every line
// emitted while one document handle is in use can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey int

const operationKey ctxKey = iota

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Logs go to stderr; stdout is reserved for document output.
func Setup(level, format string) {
	SetupWriter(os.Stderr, level, format)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithOperation tags ctx with a document operation id.
func ContextWithOperation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationKey, id)
}

// NewOperation tags ctx with a fresh random operation id and returns both.
func NewOperation(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return ContextWithOperation(ctx, id), id
}

// OperationID returns the operation id stored in ctx, or "".
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(operationKey).(string)
	return id
}

// FromContext returns the default logger enriched with the request id and
// operation id found in ctx.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Debug("column dropped", "column", name)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if opID := OperationID(ctx); opID != "" {
		logger = logger.With("op_id", opID)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
//
//	docLogger := logging.WithFields(ctx, "source", path, "format", "csv")
//	docLogger.Debug("read complete", "rows", len(rows))
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
