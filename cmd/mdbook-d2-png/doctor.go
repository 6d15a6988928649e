package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	d2png "github.com/alnah/mdbook-d2-png"
	"github.com/alnah/mdbook-d2-png/internal/config"
	"github.com/alnah/mdbook-d2-png/internal/fileutil"
	"github.com/alnah/mdbook-d2-png/internal/hints"
	"github.com/alnah/mdbook-d2-png/internal/process"
)

// versionTimeout bounds "d2 --version".
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo   `json:"config"`
	Compiler compilerInfo `json:"compiler"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// configInfo describes the configuration the preprocessor would use.
type configInfo struct {
	BookFile  string   `json:"book_file,omitempty"`
	SourceDir string   `json:"source_dir"`
	OutputDir string   `json:"output_dir,omitempty"`
	Inline    bool     `json:"inline"`
	Timeout   string   `json:"timeout"`
	Workers   int      `json:"workers"`
	Fonts     []string `json:"fonts,omitempty"`
}

// compilerInfo holds d2 detection results.
type compilerInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// systemInfo holds platform and output checks.
type systemInfo struct {
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	GOMAXPROCS     int    `json:"gomaxprocs"`
	OutputWritable bool   `json:"output_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return reportError(env, err)
	}

	result := runDoctor(ctx, flags.book, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks for the book in bookDir.
func runDoctor(ctx context.Context, bookDir string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	cfg, ok := checkConfig(bookDir, result)
	if ok {
		checkCompiler(ctx, cfg.Path, env, result)
		checkFonts(bookDir, cfg.Fonts, result)
		checkOutputDir(cfg, result)
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads book.toml. A missing book or section falls back to
// defaults with a warning so the compiler can still be checked.
func checkConfig(bookDir string, result *doctorResult) (d2png.Config, bool) {
	cfg, err := config.LoadBook(bookDir)
	switch {
	case err == nil:
		result.Config.BookFile = filepath.Join(bookDir, config.BookFile)
	case errors.Is(err, config.ErrBookNotFound), errors.Is(err, config.ErrConfigNotFound):
		result.Warnings = append(result.Warnings, firstLine(err.Error())+"; using defaults")
		src, absErr := filepath.Abs(filepath.Join(bookDir, "src"))
		if absErr != nil {
			src = filepath.Join(bookDir, "src")
		}
		cfg = d2png.DefaultConfig(src)
	default:
		result.Errors = append(result.Errors, firstLine(err.Error()))
		return d2png.Config{}, false
	}

	result.Config.SourceDir = cfg.SourceDir
	result.Config.Inline = cfg.Inline
	result.Config.Timeout = cfg.Timeout.String()
	result.Config.Workers = d2png.ResolvePoolSize(cfg.Workers)
	if !cfg.Inline {
		result.Config.OutputDir = cfg.AbsoluteOutputDir()
	}
	return cfg, true
}

// checkCompiler locates d2 and asks for its version.
func checkCompiler(ctx context.Context, path string, env *Environment, result *doctorResult) {
	resolved := path
	if fileutil.IsFilePath(path) {
		if !fileutil.FileExists(path) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("d2 compiler %q not found%s", path, hints.ForCompilerNotFound(path)))
			return
		}
	} else {
		found, err := env.LookPath(path)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("d2 compiler %q not found%s", path, hints.ForCompilerNotFound(path)))
			return
		}
		resolved = found
	}
	result.Compiler.Found = true
	result.Compiler.Path = resolved

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, resolved, "--version") // #nosec G204 -- compiler path is user configuration
	process.Supervise(cmd, process.DefaultWaitDelay)
	out, err := cmd.Output()
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not get d2 version: %v", err))
		return
	}
	result.Compiler.Version = strings.TrimSpace(string(out))
}

// checkFonts verifies the custom font files exist. Relative paths are
// resolved against the book root, where mdBook runs the preprocessor.
func checkFonts(bookDir string, fonts *d2png.Fonts, result *doctorResult) {
	if fonts == nil {
		return
	}
	for _, font := range []struct{ style, path string }{
		{"regular", fonts.Regular},
		{"italic", fonts.Italic},
		{"bold", fonts.Bold},
	} {
		path := font.path
		if !filepath.IsAbs(path) {
			path = filepath.Join(bookDir, path)
		}
		if !fileutil.FileExists(path) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s font not found: %s", font.style, path))
			continue
		}
		result.Config.Fonts = append(result.Config.Fonts, path)
	}
}

// checkOutputDir verifies rendered images can be written.
func checkOutputDir(cfg d2png.Config, result *doctorResult) {
	if cfg.Inline {
		result.System.OutputWritable = true
		return
	}
	dir := cfg.AbsoluteOutputDir()
	if err := fileutil.CheckWritableDir(dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("output directory not writable: %s: %v", dir, err))
		return
	}
	result.System.OutputWritable = true
}

// firstLine drops hints from an error message.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdbook-d2-png doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.BookFile != "" {
		fmt.Fprintf(w, "  [OK] Book: %s\n", r.Config.BookFile)
	}
	if r.Config.SourceDir != "" {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.SourceDir)
		if r.Config.Inline {
			fmt.Fprintln(w, "  [OK] Images: inline data URIs")
		} else {
			fmt.Fprintf(w, "  [OK] Images: %s\n", r.Config.OutputDir)
		}
		fmt.Fprintf(w, "  [OK] Timeout: %s, workers: %d\n", r.Config.Timeout, r.Config.Workers)
		for _, font := range r.Config.Fonts {
			fmt.Fprintf(w, "  [OK] Font: %s\n", font)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "D2 compiler")
	if r.Compiler.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Compiler.Path)
		if r.Compiler.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Compiler.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s, GOMAXPROCS %d\n", r.System.OS, r.System.Arch, r.System.GOMAXPROCS)
	if r.System.OutputWritable {
		fmt.Fprintln(w, "  [OK] Output: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Output: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
