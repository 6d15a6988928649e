package pipeline

import "fmt"

// Kind identifies the type of an Event.
type Kind int

// Event kinds.
const (
	KindRaw Kind = iota
	KindFenceStart
	KindText
	KindFenceEnd
	KindParagraphStart
	KindParagraphEnd
	KindImageStart
	KindImageEnd
)

var kindNames = [...]string{
	KindRaw:            "Raw",
	KindFenceStart:     "FenceStart",
	KindText:           "Text",
	KindFenceEnd:       "FenceEnd",
	KindParagraphStart: "ParagraphStart",
	KindParagraphEnd:   "ParagraphEnd",
	KindImageStart:     "ImageStart",
	KindImageEnd:       "ImageEnd",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one element of a chapter's token stream.
type Event struct {
	Kind Kind

	// Lang is the first word of the info string (FenceStart).
	Lang string
	// Info is the full info string (FenceStart).
	Info string
	// Text is the line content (Text), without container prefixes.
	Text string

	// Dest, Title and ID describe an inline image link (ImageStart).
	Dest  string
	Title string
	ID    string

	// Source is the exact input covered by the event; nil when synthesized.
	Source []byte
}

// Paragraph start/end and image constructors for synthesized events.

func ParagraphStart() Event { return Event{Kind: KindParagraphStart} }
func ParagraphEnd() Event   { return Event{Kind: KindParagraphEnd} }
func ImageEnd() Event       { return Event{Kind: KindImageEnd} }

// ImageStart returns an inline image link event.
func ImageStart(dest, title, id string) Event {
	return Event{Kind: KindImageStart, Dest: dest, Title: title, ID: id}
}

// IsFenceStart reports whether e opens a fenced block tagged lang.
func (e Event) IsFenceStart(lang string) bool {
	return e.Kind == KindFenceStart && e.Lang == lang
}
