// Package pipeline implements the Markdown event stream the diagram
// preprocessor works on.
//
// A chapter is tokenized into an ordered list of events that tile the source:
//   - Raw: bytes outside fenced code blocks, copied verbatim
//   - FenceStart, Text, FenceEnd: one fenced code block, one Text per line
//
// Events produced by Tokenize keep the exact source bytes they cover, so
// Render(Tokenize(src)) == src. Synthesized events (paragraphs and images
// substituted for diagrams) carry no source and are serialized as Markdown.
//
// Block structure comes from goldmark's AST; only fenced code blocks with an
// info string are split out, everything else stays Raw.
package pipeline
