package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// logEnvVar selects the log level when no flag does.
const logEnvVar = "MDBOOK_D2_PNG_LOG"

// logTimeFormat is short on purpose: mdBook prefixes its own timestamps.
const logTimeFormat = "15:04:05.00"

// newLogger creates the stderr logger. stdout is reserved for the book.
func newLogger(w io.Writer, f commonFlags, getenv func(string) string) *log.Logger {
	level, unknown := resolveLogLevel(f, getenv(logEnvVar))
	logger := newLoggerAt(w, level)
	if unknown != "" {
		logger.Warn("unknown log level, using info", "env", logEnvVar, "value", unknown)
	}
	return logger
}

func newLoggerAt(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
		Prefix:          "d2-png",
	})
}

// resolveLogLevel picks the level: --verbose, then --quiet, then the
// environment, then info. An unparsable environment value is returned so
// the caller can report it.
func resolveLogLevel(f commonFlags, envValue string) (log.Level, string) {
	switch {
	case f.verbose:
		return log.DebugLevel, ""
	case f.quiet:
		return log.ErrorLevel, ""
	}
	envValue = strings.TrimSpace(envValue)
	if envValue == "" {
		return log.InfoLevel, ""
	}
	level, err := log.ParseLevel(envValue)
	if err != nil {
		return log.InfoLevel, envValue
	}
	return level, ""
}
