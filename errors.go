package d2png

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for diagram rendering.
var (
	ErrSpawn    = errors.New("failed to spawn D2 process")
	ErrPipeIO   = errors.New("D2 process I/O failed")
	ErrTimeout  = errors.New("D2 process timed out")
	ErrCompile  = errors.New("failed to compile D2 diagram")
	ErrCanceled = errors.New("D2 process canceled")

	// Configuration validation errors.
	ErrEmptyCompilerPath = errors.New("compiler path cannot be empty")
	ErrEmptyOutputDir    = errors.New("output directory cannot be empty")
	ErrAbsoluteOutputDir = errors.New("output directory must be relative to the source directory")
	ErrInvalidFonts      = errors.New("fonts require regular, italic and bold")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrInvalidWorkers    = errors.New("invalid worker count")
)

// RenderError describes a diagram that could not be rendered.
// Kind is one of ErrSpawn, ErrPipeIO, ErrTimeout, ErrCompile or ErrCanceled.
type RenderError struct {
	Kind    error
	Chapter string
	Path    string
	Index   int
	Detail  string // compiler stderr or cause text, may be empty
	Err     error  // underlying cause, may be nil
}

func (e *RenderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, #%d)", e.Kind, e.Chapter, e.Index)
	if e.Detail != "" {
		b.WriteString(":")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *RenderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// indentStderr formats compiler output on its own indented lines.
func indentStderr(stderr []byte) string {
	s := strings.TrimRight(string(stderr), " \t\r\n")
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll("\n"+s, "\n", "\n  ")
}
