// Package logging builds the slog loggers shared by the CLI and the library packages.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns the CLI logger. Logs go to stderr so stdout carries only what the user asked for.
func New(level slog.Level) *slog.Logger {
	return slog.New(newHandler(os.Stderr, level))
}

// NewNop discards everything. Components default to it until WithLogger is given.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHandler writes text records with "error" attributes renamed to "err".
func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})
}
