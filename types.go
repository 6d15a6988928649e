package d2png

import (
	"strconv"
	"strings"

	"github.com/alnah/mdbook-d2-png/internal/pipeline"
)

// Event is one element of a chapter's token stream.
type Event = pipeline.Event

// SectionNumber is a chapter's hierarchical number, e.g. [1 2] for 1.2.
type SectionNumber []int

// String renders the number the way mdBook displays it, with a trailing
// dot after each component ("1.2."). Empty numbers render as "".
func (n SectionNumber) String() string {
	var b strings.Builder
	for _, part := range n {
		b.WriteString(strconv.Itoa(part))
		b.WriteByte('.')
	}
	return b.String()
}

// Document is one chapter of the collection.
type Document struct {
	// Path is the chapter file relative to the source directory.
	Path string
	// Name is the chapter's display name.
	Name string
	// Number is nil for unnumbered chapters (prefix, suffix, drafts).
	Number  SectionNumber
	Content string
}

// RenderContext is the part of a job needed for naming and diagnostics.
type RenderContext struct {
	Path   string
	Name   string
	Number SectionNumber
	Index  int // 1-based within the document
}

// RenderJob is one diagram to render. Jobs are never mutated after Extract.
type RenderJob struct {
	Doc     int
	Context RenderContext
	Source  string
}

// RenderResult is the outcome of one job. Err is non-nil for a recovered
// failure, in which case Events is empty.
type RenderResult struct {
	Doc    int
	Index  int
	Events []Event
	Err    error
}
