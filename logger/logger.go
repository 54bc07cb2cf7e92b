// Package logger provides the structured console logger used by the
// delivery wrappers and background jobs.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// New returns a logger tagged with the given context name, e.g. "email".
func New(context string) zerolog.Logger {
	return base.With().Str("context", context).Logger()
}

// SetOutput redirects all loggers created afterwards. pretty selects the
// human readable console format; otherwise each entry is a JSON line.
func SetOutput(w io.Writer, pretty bool) {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel parses a level name ("debug", "info", ...) and applies it globally.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
