// Package log configures the process-wide slog handler.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr at the requested level. The level
// string is anything slog can parse ("debug", "warn", "error+2", case does
// not matter); anything it cannot parse falls back to info.
func Setup(logLevel string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule derives a logger from the default one, tagged with the
// component name every line from that component will carry.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
