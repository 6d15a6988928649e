package main

import (
	"errors"
	"os"

	d2png "github.com/alnah/mdbook-d2-png"
	"github.com/alnah/mdbook-d2-png/internal/config"
)

// Exit codes for the mdbook-d2-png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
// mdBook treats any non-zero status as a failed preprocessor.
const (
	ExitSuccess = 0 // Book or files written
	ExitGeneral = 1 // Protocol errors, failed diagrams in render, unexpected errors
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoOutput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrBookNotFound) ||
		errors.Is(err, d2png.ErrEmptyCompilerPath) ||
		errors.Is(err, d2png.ErrEmptyOutputDir) ||
		errors.Is(err, d2png.ErrAbsoluteOutputDir) ||
		errors.Is(err, d2png.ErrInvalidFonts) ||
		errors.Is(err, d2png.ErrInvalidTimeout) ||
		errors.Is(err, d2png.ErrInvalidWorkers) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteMarkdown) {
		return ExitIO
	}

	return ExitGeneral
}
