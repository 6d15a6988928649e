// Package d2png renders D2 diagrams embedded in Markdown chapters to PNG
// images for mdBook.
//
// # Quick Start
//
// Build a processor from a configuration and run it over the chapters:
//
//	cfg := d2png.DefaultConfig("/path/to/book/src")
//	proc, err := d2png.NewProcessor(cfg, d2png.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	contents, summary, err := proc.Process(ctx, []d2png.Document{
//	    {Path: "intro.md", Name: "Intro", Number: d2png.SectionNumber{1}, Content: md},
//	})
//
// Every ```d2 block in the chapter is replaced by an image paragraph
// pointing at src/d2/1.1.png, or by a data URI when Config.Inline is set.
//
// # Pipeline
//
//  1. Tokenize the chapter (goldmark, see internal/pipeline)
//  2. Extract one RenderJob per diagram, indexed from 1
//  3. Render jobs on a fixed pool of workers, each run of the d2
//     compiler bounded by Config.Timeout
//  4. Sort results per chapter and Stitch them over the original events
//
// Rendering order is unspecified; substitution order always matches the
// source. A diagram that fails to render is logged and removed.
//
// # File Names
//
// Numbered chapters produce "<section><index>.png" (1.2.3.png). Unnumbered
// chapters produce "<hash>_<index>.png" where hash is derived from the
// chapter path, so names are stable across runs.
//
// # Compiler Requirements
//
// The d2 executable must be on PATH or set with Config.Path. It is invoked
// as:
//
//	d2 [--font-regular R --font-italic I --font-bold B] [--layout L] \
//	   [--theme T] [--dark-theme D] - [destination]
package d2png
