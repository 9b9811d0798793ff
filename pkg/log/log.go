// Package log configures the process wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger writing to stderr. Levels are the slog names
// (debug, info, warn, error) and formats are "text" or "json".
func Setup(level, format string) error {
	logger, err := New(os.Stderr, level, format)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	return nil
}

// New builds a logger tagged with the service name.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level

	if level != "" {
		err := lvl.UnmarshalText([]byte(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler

	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return slog.New(handler).With("service", "pathway"), nil
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
