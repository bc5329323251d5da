// Package logger provides a configurable logger for the library. By default
// it writes human-readable output to stdout; users may replace or disable it.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Logger returns the current logger.
func Logger() zerolog.Logger {
	return logger
}

// Set replaces the logger.
func Set(l zerolog.Logger) {
	logger = l
}

// SetOutput redirects log output to w.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Disable silences all log output.
func Disable() {
	logger = zerolog.Nop()
}
