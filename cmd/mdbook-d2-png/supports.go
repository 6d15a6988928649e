package main

import (
	"fmt"
	"strings"
)

// runSupports answers mdBook's "supports <renderer>" probe. Images are
// plain Markdown, so every renderer is supported.
func runSupports(args []string, env *Environment) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(env.Stderr, "Usage: mdbook-d2-png supports <renderer>")
		return ExitGeneral
	}
	return ExitSuccess
}
