package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	d2png "github.com/alnah/mdbook-d2-png"
	"github.com/alnah/mdbook-d2-png/internal/config"
	"github.com/alnah/mdbook-d2-png/internal/mdbook"
)

// runPreprocess reads [context, book] from stdin, renders every d2 block
// and writes the updated book to stdout. Diagram failures are logged and
// never fail the build.
func runPreprocess(ctx context.Context, args []string, env *Environment) error {
	flags, err := parsePreprocessFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := newLogger(env.Stderr, *flags, env.Getenv)

	bookCtx, book, err := mdbook.ParseInput(env.Stdin)
	if err != nil {
		return err
	}
	if err := mdbook.CheckVersion(bookCtx.Version); err != nil {
		return err
	}

	section := bookCtx.Preprocessor(config.SectionKey)
	cfg, err := config.FromJSON(section, bookCtx.SourceDir())
	if err != nil {
		return err
	}
	for _, key := range config.UnknownKeys(section) {
		logger.Warn("unknown config key, ignored", "key", key)
	}
	proc, err := d2png.NewProcessor(cfg, d2png.WithLogger(logger))
	if err != nil {
		return err
	}

	chapters, docs := chapterDocuments(book.Chapters())
	logger.Debug("preprocessing book",
		"renderer", bookCtx.Renderer,
		"mdbook", bookCtx.Version,
		"chapters", len(docs),
	)

	contents, _, err := proc.Process(ctx, docs)
	if err != nil {
		return fmt.Errorf("preprocessing interrupted: %w", err)
	}
	for i, ch := range chapters {
		if contents[i] == ch.Content {
			continue
		}
		if err := book.SetContent(ch, contents[i]); err != nil {
			return err
		}
	}

	if _, err := env.Stdout.Write(book.Bytes()); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}
	return nil
}

// chapterDocuments turns chapters with a source file into documents.
// Draft chapters have no file and are left alone.
func chapterDocuments(all []mdbook.Chapter) ([]mdbook.Chapter, []d2png.Document) {
	chapters := make([]mdbook.Chapter, 0, len(all))
	docs := make([]d2png.Document, 0, len(all))
	for _, ch := range all {
		if ch.Path == "" {
			continue
		}
		chapters = append(chapters, ch)
		docs = append(docs, d2png.Document{
			Path:    ch.Path,
			Name:    ch.Name,
			Number:  d2png.SectionNumber(ch.Number),
			Content: ch.Content,
		})
	}
	return chapters, docs
}
