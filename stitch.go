package d2png

import "github.com/alnah/mdbook-d2-png/internal/pipeline"

// Stitch replays events with every diagram block replaced by the events
// of its result. results must be sorted by index; a result with no events
// removes its block, leaving a bare ParagraphEnd in its place. Everything
// outside diagram blocks is kept in place.
func Stitch(events []Event, results []RenderResult) []Event {
	out := make([]Event, 0, len(events))
	next := 0
	inside := false

	for _, ev := range events {
		switch {
		case isDiagramStart(ev):
			inside = true
		case inside && ev.Kind == pipeline.KindFenceEnd:
			inside = false
			var sub []Event
			if next < len(results) {
				sub = results[next].Events
				next++
			}
			if len(sub) == 0 {
				// A bare end keeps the neighbours of a removed block apart.
				sub = []Event{pipeline.ParagraphEnd()}
			}
			out = append(out, sub...)
		case inside:
			// Diagram source is replaced wholesale.
		default:
			out = append(out, ev)
		}
	}
	return out
}
