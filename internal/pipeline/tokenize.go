package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Tokenizer splits Markdown into an event stream. Safe for concurrent use.
type Tokenizer struct {
	parser parser.Parser
}

// NewTokenizer creates a Tokenizer with the same extensions mdBook enables
// by default (tables, strikethrough, task lists, footnotes), so fences nested
// in those constructs are found.
func NewTokenizer() *Tokenizer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
	)
	return &Tokenizer{parser: md.Parser()}
}

// fence locates one fenced code block opener in the source.
type fence struct {
	start   int // first fence character
	lineEnd int // just past the opener's newline
	char    byte
	length  int
}

// Tokenize returns the event stream for source. Events tile the input:
// concatenating every event's Source reproduces source exactly.
func (t *Tokenizer) Tokenize(source []byte) []Event {
	doc := t.parser.Parse(text.NewReader(source))

	var events []Event
	pos := 0

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if block.Info == nil {
			return ast.WalkSkipChildren, nil
		}
		f := locateFence(source, block.Info.Segment.Start)
		if f.start < pos {
			return ast.WalkSkipChildren, nil
		}

		if f.start > pos {
			events = append(events, Event{Kind: KindRaw, Source: source[pos:f.start]})
		}
		events = append(events, Event{
			Kind:   KindFenceStart,
			Lang:   string(block.Language(source)),
			Info:   string(block.Info.Segment.Value(source)),
			Source: source[f.start:f.lineEnd],
		})
		pos = f.lineEnd

		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if seg.Stop < pos {
				continue
			}
			events = append(events, Event{
				Kind:   KindText,
				Text:   string(seg.Value(source)),
				Source: source[pos:seg.Stop],
			})
			pos = seg.Stop
		}

		end := closingFenceEnd(source, pos, f)
		events = append(events, Event{Kind: KindFenceEnd, Source: source[pos:end]})
		pos = end

		return ast.WalkSkipChildren, nil
	})

	if pos < len(source) {
		events = append(events, Event{Kind: KindRaw, Source: source[pos:]})
	}
	return events
}

// locateFence walks back from the info string to the fence characters.
// Whatever precedes them on the line (indentation, "> ", "- ") stays Raw.
func locateFence(source []byte, infoStart int) fence {
	lineStart := bytes.LastIndexByte(source[:infoStart], '\n') + 1

	end := infoStart
	for end > lineStart && isSpace(source[end-1]) {
		end--
	}
	start := end
	for start > lineStart && isFenceChar(source[start-1]) {
		start--
	}

	lineEnd := len(source)
	if i := bytes.IndexByte(source[infoStart:], '\n'); i >= 0 {
		lineEnd = infoStart + i + 1
	}

	var char byte = '`'
	if start < end {
		char = source[start]
	}
	return fence{start: start, lineEnd: lineEnd, char: char, length: end - start}
}

// closingFenceEnd returns the end of the closing fence line starting at pos,
// or pos itself when the block ran to the end of its container unclosed.
func closingFenceEnd(source []byte, pos int, f fence) int {
	if pos >= len(source) {
		return pos
	}
	lineEnd := len(source)
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		lineEnd = pos + i + 1
	}
	line := source[pos:lineEnd]

	// Strip container markers: indentation and blockquote '>'.
	i := 0
	for i < len(line) && (isSpace(line[i]) || line[i] == '>') {
		i++
	}
	n := 0
	for i+n < len(line) && line[i+n] == f.char {
		n++
	}
	if n < f.length || len(bytes.TrimSpace(line[i+n:])) != 0 {
		return pos
	}
	return lineEnd
}

func isSpace(c byte) bool     { return c == ' ' || c == '\t' }
func isFenceChar(c byte) bool { return c == '`' || c == '~' }
