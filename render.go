package d2png

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/alnah/mdbook-d2-png/internal/fileutil"
	"github.com/alnah/mdbook-d2-png/internal/hints"
	"github.com/alnah/mdbook-d2-png/internal/pipeline"
	"github.com/alnah/mdbook-d2-png/internal/process"
)

// dataURIPrefix starts every inline image destination.
const dataURIPrefix = "data:image/png;base64,"

// stdinMarker tells the compiler to read the diagram from stdin.
const stdinMarker = "-"

// Renderer runs the d2 compiler for one diagram at a time.
// Safe for concurrent use: it holds only read-only configuration.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a Renderer. A zero Timeout uses DefaultTimeout.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Renderer{cfg: cfg}
}

// Render compiles source and returns the image fragment that replaces the
// diagram block. Every failure is a *RenderError.
func (r *Renderer) Render(ctx context.Context, rc RenderContext, source string) ([]Event, error) {
	if r.cfg.Inline {
		return r.renderInline(ctx, rc, source)
	}
	return r.renderFile(ctx, rc, source)
}

// renderFile writes the PNG under the output directory and links to it.
func (r *Renderer) renderFile(ctx context.Context, rc RenderContext, source string) ([]Event, error) {
	dir := r.cfg.AbsoluteOutputDir()
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, r.fail(rc, ErrPipeIO, " "+err.Error(), err)
	}

	args := append(buildArgs(r.cfg), r.cfg.AbsoluteOutputPath(rc))
	if _, err := r.run(ctx, rc, source, args); err != nil {
		return nil, err
	}
	return imageFragment(r.cfg.LinkPath(rc)), nil
}

// renderInline reads the PNG from stdout and embeds it as a data URI.
func (r *Renderer) renderInline(ctx context.Context, rc RenderContext, source string) ([]Event, error) {
	png, err := r.run(ctx, rc, source, buildArgs(r.cfg))
	if err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, r.fail(rc, ErrPipeIO, " compiler wrote no image data", nil)
	}
	return imageFragment(dataURIPrefix + base64.StdEncoding.EncodeToString(png)), nil
}

// run spawns the compiler, feeds source on stdin and waits for it within
// the configured timeout. On timeout the whole process group is killed
// and reaped before run returns.
func (r *Renderer) run(ctx context.Context, rc RenderContext, source string, args []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.fail(rc, ErrCanceled, "", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.cfg.Path, args...)
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	process.Supervise(cmd, process.DefaultWaitDelay)

	if err := cmd.Start(); err != nil {
		detail := " " + err.Error()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			detail += hints.ForCompilerNotFound(r.cfg.Path)
		}
		return nil, r.fail(rc, ErrSpawn, detail, err)
	}

	err := cmd.Wait()
	switch {
	case err == nil:
		return stdout.Bytes(), nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, r.fail(rc, ErrTimeout, " killed after "+r.cfg.Timeout.String()+hints.ForTimeout(r.cfg.Timeout), ctx.Err())
	case ctx.Err() != nil:
		return nil, r.fail(rc, ErrCanceled, "", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := indentStderr(stderr.Bytes())
		if detail == "" {
			detail = indentStderr([]byte(exitErr.Error()))
		}
		return nil, r.fail(rc, ErrCompile, detail, err)
	}
	return nil, r.fail(rc, ErrPipeIO, " "+err.Error(), err)
}

func (r *Renderer) fail(rc RenderContext, kind error, detail string, cause error) *RenderError {
	return &RenderError{
		Kind:    kind,
		Chapter: rc.Name,
		Path:    rc.Path,
		Index:   rc.Index,
		Detail:  detail,
		Err:     cause,
	}
}

// buildArgs returns the compiler flags followed by the stdin marker.
// The destination, if any, is appended by the caller.
func buildArgs(cfg Config) []string {
	var args []string
	if cfg.Fonts != nil {
		args = append(args,
			"--font-regular", cfg.Fonts.Regular,
			"--font-italic", cfg.Fonts.Italic,
			"--font-bold", cfg.Fonts.Bold,
		)
	}
	if cfg.Layout != "" {
		args = append(args, "--layout", cfg.Layout)
	}
	if cfg.ThemeID != "" {
		args = append(args, "--theme", cfg.ThemeID)
	}
	if cfg.DarkThemeID != "" {
		args = append(args, "--dark-theme", cfg.DarkThemeID)
	}
	return append(args, stdinMarker)
}

// imageFragment is the fixed four-event replacement for a diagram.
func imageFragment(dest string) []Event {
	return []Event{
		pipeline.ParagraphStart(),
		pipeline.ImageStart(dest, "", ""),
		pipeline.ImageEnd(),
		pipeline.ParagraphEnd(),
	}
}
