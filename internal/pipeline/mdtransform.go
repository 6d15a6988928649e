package pipeline

import "regexp"

// Line ending normalization.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// NormalizeLineEndings converts \r\n and \r to \n.
// goldmark keeps the carriage return inside fenced lines, and the diagram
// compiler should see the same source on every platform.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
