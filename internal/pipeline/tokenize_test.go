package pipeline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// summary is the comparable projection of an Event used in expectations.
type summary struct {
	Kind   Kind
	Lang   string
	Text   string
	Source string
}

func summarize(events []Event) []summary {
	out := make([]summary, len(events))
	for i, ev := range events {
		out[i] = summary{Kind: ev.Kind, Lang: ev.Lang, Text: ev.Text, Source: string(ev.Source)}
	}
	return out
}

// ---------------------------------------------------------------------------
// TestTokenize - Event shapes for fenced blocks
// ---------------------------------------------------------------------------

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []summary
	}{
		{
			name:   "plain document is one raw event",
			source: "# Title\n\nSome text.\n",
			want: []summary{
				{Kind: KindRaw, Source: "# Title\n\nSome text.\n"},
			},
		},
		{
			name:   "d2 fence between paragraphs",
			source: "# Title\n\n```d2\na: A\nb: B\n```\n\nAfter\n",
			want: []summary{
				{Kind: KindRaw, Source: "# Title\n\n"},
				{Kind: KindFenceStart, Lang: "d2", Source: "```d2\n"},
				{Kind: KindText, Text: "a: A\n", Source: "a: A\n"},
				{Kind: KindText, Text: "b: B\n", Source: "b: B\n"},
				{Kind: KindFenceEnd, Source: "```\n"},
				{Kind: KindRaw, Source: "\nAfter\n"},
			},
		},
		{
			name:   "tilde fence with extra info words",
			source: "~~~~d2 title=flow\nx -> y\n~~~~\n",
			want: []summary{
				{Kind: KindFenceStart, Lang: "d2", Source: "~~~~d2 title=flow\n"},
				{Kind: KindText, Text: "x -> y\n", Source: "x -> y\n"},
				{Kind: KindFenceEnd, Source: "~~~~\n"},
			},
		},
		{
			name:   "blockquote prefix stays raw",
			source: "> ```d2\n> a: A\n> ```\n",
			want: []summary{
				{Kind: KindRaw, Source: "> "},
				{Kind: KindFenceStart, Lang: "d2", Source: "```d2\n"},
				{Kind: KindText, Text: "a: A\n", Source: "> a: A\n"},
				{Kind: KindFenceEnd, Source: "> ```\n"},
			},
		},
		{
			name:   "unclosed fence at end of document",
			source: "```d2\na: A\n",
			want: []summary{
				{Kind: KindFenceStart, Lang: "d2", Source: "```d2\n"},
				{Kind: KindText, Text: "a: A\n", Source: "a: A\n"},
				{Kind: KindFenceEnd, Source: ""},
			},
		},
		{
			name:   "empty fence",
			source: "```d2\n```\n",
			want: []summary{
				{Kind: KindFenceStart, Lang: "d2", Source: "```d2\n"},
				{Kind: KindFenceEnd, Source: "```\n"},
			},
		},
		{
			name:   "fence without info string stays raw",
			source: "```\nplain\n```\n",
			want: []summary{
				{Kind: KindRaw, Source: "```\nplain\n```\n"},
			},
		},
		{
			name:   "indented code block stays raw",
			source: "    ```d2\n    a: A\n",
			want: []summary{
				{Kind: KindRaw, Source: "    ```d2\n    a: A\n"},
			},
		},
	}

	tok := NewTokenizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := summarize(tok.Tokenize([]byte(tt.source)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_ListItemFence(t *testing.T) {
	t.Parallel()

	source := "- step one\n\n  ```d2\n  a -> b\n  ```\n- step two\n"
	events := NewTokenizer().Tokenize([]byte(source))

	var starts int
	var content strings.Builder
	inside := false
	for _, ev := range events {
		switch {
		case ev.IsFenceStart("d2"):
			starts++
			inside = true
		case ev.Kind == KindText && inside:
			content.WriteString(ev.Text)
		case ev.Kind == KindFenceEnd:
			inside = false
		}
	}

	if starts != 1 {
		t.Fatalf("found %d d2 fences, want 1", starts)
	}
	if content.String() != "a -> b\n" {
		t.Errorf("fence content = %q, want %q", content.String(), "a -> b\n")
	}
}

func TestTokenize_CRLFSplitsLines(t *testing.T) {
	t.Parallel()

	source := "```d2\r\na: A\r\nb: B\r\n```\r\n"
	events := NewTokenizer().Tokenize([]byte(source))

	var texts []string
	for _, ev := range events {
		if ev.Kind == KindText {
			texts = append(texts, ev.Text)
		}
	}
	if len(texts) != 2 {
		t.Fatalf("got %d text events, want 2: %q", len(texts), texts)
	}
	if got := NormalizeLineEndings(strings.Join(texts, "")); got != "a: A\nb: B\n" {
		t.Errorf("normalized content = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRoundTrip - Render(Tokenize(src)) reproduces src byte for byte
// ---------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"empty":              "",
		"no trailing newline": "text\n\n```d2\na: A\n```",
		"two diagrams":       "```d2\na\n```\n\n```d2\nb\n```\n",
		"other languages":    "```rust\nfn main() {}\n```\n\n```d2\nx\n```\n",
		"nested blockquote":  "> > ```d2\n> > a -> b\n> > ```\n",
		"list item":          "1. first\n\n   ```d2\n   a\n   ```\n2. second\n",
		"crlf":               "# T\r\n\r\n```d2\r\na: A\r\n```\r\n",
		"tabs":               "```d2\n\ta: A\n```\n",
		"footnote":           "Text[^1]\n\n[^1]: note\n\n    ```d2\n    a\n    ```\n",
		"table":              "| a | b |\n|---|---|\n| 1 | 2 |\n\n```d2\nx\n```\n",
		"longer closing":     "````d2\na\n``````\n",
		"unclosed in quote":  "> ```d2\n> a\n\nafter\n",
	}

	tok := NewTokenizer()
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := string(Render(tok.Tokenize([]byte(src))))
			if got != src {
				t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, src)
			}
		})
	}
}
