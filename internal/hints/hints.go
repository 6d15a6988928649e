// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
	"time"
)

// SectionName is the book.toml table the preprocessor reads.
const SectionName = "[preprocessor.d2-png]"

// ForCompilerNotFound returns hints for a compiler that could not be started.
// A bare name is looked up in PATH; anything with a separator is a file.
func ForCompilerNotFound(path string) string {
	if strings.ContainsAny(path, "/\\") {
		return format("check that " + path + " exists and is executable")
	}
	return formatHints([]string{
		"install d2 from https://d2lang.com",
		"or set path = \"/path/to/d2\" in " + SectionName,
	})
}

// ForTimeout returns a hint about raising the per-diagram timeout.
func ForTimeout(current time.Duration) string {
	return format("large diagrams may need more than " + current.String() +
		"; set timeout in " + SectionName + " or use --timeout")
}

// ForConfigNotFound returns hints for a missing preprocessor section.
func ForConfigNotFound() string {
	return format("add a " + SectionName + " section to book.toml")
}

// ForFonts returns hints for an incomplete font set.
func ForFonts() string {
	return format("fonts.regular, fonts.italic and fonts.bold must be set together")
}

// ForIncompatibleVersion returns hints for an unsupported mdBook version.
func ForIncompatibleVersion(supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	return format("supported mdBook versions: " + strings.Join(supported, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
