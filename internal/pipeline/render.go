package pipeline

import (
	"bytes"
	"strings"
)

// Render serializes events back to Markdown. Events with Source are copied
// verbatim; synthesized events are written as CommonMark.
//
// A synthesized paragraph is separated from adjacent content lines by blank
// lines carrying the enclosing container prefix, so neighbouring blocks keep
// their type. A ParagraphEnd with no open paragraph marks a removed block:
// it ends a dangling prefix line, or owes a blank line when the removal
// would join two content lines.
func Render(events []Event) []byte {
	var w writer
	for _, ev := range events {
		w.event(ev)
	}
	return w.buf.Bytes()
}

type writer struct {
	buf    bytes.Buffer
	images []Event

	inParagraph bool
	// cont is the line prefix of the paragraph's continuation lines.
	cont string
	// pending is set when a blank line is owed before the next content line.
	pending bool
}

func (w *writer) event(ev Event) {
	if ev.Source != nil {
		if w.pending {
			w.pending = false
			if !blankLine(ev.Source) {
				w.blank()
			}
		}
		w.buf.Write(ev.Source)
		return
	}

	switch ev.Kind {
	case KindParagraphStart:
		w.pending = false
		w.startParagraph()
		return
	case KindParagraphEnd:
		w.endParagraph()
		return
	}

	if w.pending {
		w.pending = false
		w.blank()
	}
	switch ev.Kind {
	case KindImageStart:
		w.buf.WriteString("![")
		w.images = append(w.images, ev)
	case KindImageEnd:
		if len(w.images) == 0 {
			return
		}
		img := w.images[len(w.images)-1]
		w.images = w.images[:len(w.images)-1]
		w.buf.WriteString("](")
		w.buf.WriteString(formatDest(img.Dest))
		if img.Title != "" {
			w.buf.WriteString(` "`)
			w.buf.WriteString(strings.ReplaceAll(img.Title, `"`, `\"`))
			w.buf.WriteByte('"')
		}
		w.buf.WriteByte(')')
	case KindText:
		w.buf.WriteString(ev.Text)
	case KindFenceStart:
		w.buf.WriteString("```")
		w.buf.WriteString(ev.Info)
		w.buf.WriteByte('\n')
	case KindFenceEnd:
		w.buf.WriteString("```\n")
	}
}

func (w *writer) startParagraph() {
	prefix := w.currentLine()
	w.inParagraph = true
	w.cont = continuation(prefix)

	// A list marker in the prefix opens a fresh item.
	if strings.Trim(prefix, " \t>") != "" {
		return
	}
	if !w.followsContent(len(prefix)) {
		return
	}
	w.buf.Truncate(w.buf.Len() - len(prefix))
	w.blank()
	w.buf.WriteString(prefix)
}

func (w *writer) endParagraph() {
	if w.inParagraph {
		w.inParagraph = false
		w.buf.WriteByte('\n')
		w.pending = true
		return
	}
	if prefix := w.currentLine(); prefix != "" {
		w.buf.WriteByte('\n')
		return
	}
	if w.followsContent(0) {
		w.cont = ""
		w.pending = true
	}
}

// blank writes an empty line inside the current container.
func (w *writer) blank() {
	w.buf.WriteString(strings.TrimRight(w.cont, " \t"))
	w.buf.WriteByte('\n')
}

// currentLine returns what has been written since the last newline.
func (w *writer) currentLine() string {
	b := w.buf.Bytes()
	return string(b[bytes.LastIndexByte(b, '\n')+1:])
}

// followsContent reports whether the line before the last n bytes holds
// more than container markers.
func (w *writer) followsContent(n int) bool {
	b := w.buf.Bytes()[:w.buf.Len()-n]
	if len(b) == 0 {
		return false
	}
	b = bytes.TrimSuffix(b, []byte("\n"))
	return !blankLine(b[bytes.LastIndexByte(b, '\n')+1:])
}

// continuation turns a line prefix into the prefix of the lines that
// continue it: list markers become indentation.
func continuation(prefix string) string {
	return strings.Map(func(r rune) rune {
		if r == '>' || r == '\t' {
			return r
		}
		return ' '
	}, prefix)
}

// blankLine reports whether the first line of b holds only container
// markers and whitespace.
func blankLine(b []byte) bool {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return len(bytes.Trim(b, " \t\r>")) == 0
}

// formatDest wraps destinations CommonMark would otherwise split or
// misread in angle brackets.
func formatDest(dest string) string {
	if strings.ContainsAny(dest, " ()<>") {
		r := strings.NewReplacer("<", `\<`, ">", `\>`)
		return "<" + r.Replace(dest) + ">"
	}
	return dest
}
