package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	d2png "github.com/alnah/mdbook-d2-png"
	"github.com/alnah/mdbook-d2-png/internal/config"
	"github.com/alnah/mdbook-d2-png/internal/fileutil"
)

// Sentinel errors for the render command.
var (
	ErrNoOutput         = errors.New("several inputs need --output")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrWriteMarkdown    = errors.New("failed to write markdown file")
	ErrDiagramsFailed   = errors.New("some diagrams failed to render")
)

// markdownFile is one input of the render command.
type markdownFile struct {
	InputPath string
	// DocPath is InputPath relative to the source directory; images are
	// linked relative to it.
	DocPath    string
	OutputPath string
}

// runRender runs the preprocessor over Markdown files outside mdBook.
// One file without --output goes to stdout; otherwise the tree is
// mirrored under --output.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, inputs, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := newLogger(env.Stderr, flags.common, env.Getenv)

	cfg, err := loadRenderConfig(flags)
	if err != nil {
		return err
	}
	proc, err := d2png.NewProcessor(cfg, d2png.WithLogger(logger))
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		inputs = []string{cfg.SourceDir}
	}
	files, err := discoverFiles(inputs, cfg.SourceDir, flags.output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no markdown files found", "inputs", strings.Join(inputs, " "))
		return nil
	}
	if flags.output == "" && len(files) > 1 {
		return fmt.Errorf("%w: found %d markdown files", ErrNoOutput, len(files))
	}

	docs := make([]d2png.Document, len(files))
	for i, f := range files {
		content, err := os.ReadFile(f.InputPath) // #nosec G304 -- user-provided input
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		}
		docs[i] = d2png.Document{
			Path:    f.DocPath,
			Name:    strings.TrimSuffix(filepath.Base(f.DocPath), filepath.Ext(f.DocPath)),
			Content: string(content),
		}
	}

	contents, summary, err := proc.Process(ctx, docs)
	if err != nil {
		return fmt.Errorf("rendering interrupted: %w", err)
	}

	if flags.output == "" {
		if _, err := fmt.Fprint(env.Stdout, contents[0]); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteMarkdown, err)
		}
	} else {
		for i, f := range files {
			if err := fileutil.WriteFile(f.OutputPath, []byte(contents[i])); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteMarkdown, err)
			}
			logger.Debug("wrote markdown", "path", f.OutputPath)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDiagramsFailed, summary.Failed, summary.Diagrams)
	}
	return nil
}

// loadRenderConfig reads --config when given, book.toml otherwise, then
// applies command-line overrides.
func loadRenderConfig(f *renderFlags) (d2png.Config, error) {
	var (
		cfg d2png.Config
		err error
	)
	if f.config != "" {
		src := f.src
		if src == "" {
			src = "."
		}
		if src, err = filepath.Abs(src); err != nil {
			return d2png.Config{}, fmt.Errorf("resolving source directory: %w", err)
		}
		cfg, err = config.LoadFile(f.config, src)
	} else {
		cfg, err = config.LoadBook(f.book)
	}
	if err != nil {
		return d2png.Config{}, err
	}

	if f.config == "" && f.src != "" {
		if cfg.SourceDir, err = filepath.Abs(f.src); err != nil {
			return d2png.Config{}, fmt.Errorf("resolving source directory: %w", err)
		}
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if f.inline {
		cfg.Inline = true
	}
	return cfg, nil
}

// discoverFiles expands inputs into Markdown files. Directories are walked
// recursively; the output directory is skipped so reruns do not pick up
// their own results.
func discoverFiles(inputs []string, sourceDir, outputDir string) ([]markdownFile, error) {
	skip := ""
	if outputDir != "" {
		if abs, err := filepath.Abs(outputDir); err == nil {
			skip = abs
		}
	}

	var files []markdownFile
	add := func(path string) error {
		file, err := newMarkdownFile(path, sourceDir, outputDir)
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := validateMarkdownExtension(input); err != nil {
				return nil, err
			}
			if err := add(input); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if abs, _ := filepath.Abs(path); skip != "" && abs == skip {
					return filepath.SkipDir
				}
				return nil
			}
			if !isMarkdown(path) {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// newMarkdownFile places path relative to sourceDir and under outputDir.
// Files outside the source directory keep only their base name in the
// output tree.
func newMarkdownFile(path, sourceDir, outputDir string) (markdownFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return markdownFile{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	docPath, err := filepath.Rel(sourceDir, abs)
	if err != nil {
		docPath = filepath.Base(abs)
	}

	f := markdownFile{InputPath: path, DocPath: docPath}
	if outputDir != "" {
		rel := docPath
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = filepath.Base(abs)
		}
		f.OutputPath = filepath.Join(outputDir, rel)
	}
	return f, nil
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

func isMarkdown(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}
