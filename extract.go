package d2png

import (
	"strings"

	"github.com/alnah/mdbook-d2-png/internal/pipeline"
)

// Marker is the fenced block language tag that identifies a diagram.
const Marker = "d2"

// isDiagramStart is the predicate shared by Extract and Stitch. Both walks
// must agree on it so the i-th extracted job is the i-th stitched region.
func isDiagramStart(ev Event) bool {
	return ev.IsFenceStart(Marker)
}

// Extract scans a document's events and returns one job per diagram
// block, indexed from 1 in scan order. Text split over several events is
// concatenated. It does not render anything.
func Extract(events []Event, doc Document, docIndex int) []RenderJob {
	var (
		jobs   []RenderJob
		buf    strings.Builder
		inside bool
		index  int
	)

	for _, ev := range events {
		switch {
		case isDiagramStart(ev):
			inside = true
			index++
			buf.Reset()
		case !inside:
			continue
		case ev.Kind == pipeline.KindText:
			buf.WriteString(ev.Text)
		case ev.Kind == pipeline.KindFenceEnd:
			inside = false
			jobs = append(jobs, RenderJob{
				Doc: docIndex,
				Context: RenderContext{
					Path:   doc.Path,
					Name:   doc.Name,
					Number: doc.Number,
					Index:  index,
				},
				Source: pipeline.NormalizeLineEndings(buf.String()),
			})
			buf.Reset()
		}
	}
	return jobs
}
