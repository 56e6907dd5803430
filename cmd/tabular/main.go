// Command tabular reads, converts and summarizes text and spreadsheet
// documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tabular/internal/core"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, describeError(err))
		}
		os.Exit(1)
	}
}

// describeError prefers the mapped user message and keeps the technical
// error for anything unmapped.
func describeError(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("%s\n  %v", core.FormatUserError(err), err)
	}
	return err.Error()
}
