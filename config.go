package d2png

import (
	"fmt"
	"path/filepath"
	"time"
)

// Configuration defaults.
const (
	DefaultCompilerPath = "d2"
	DefaultOutputDir    = "d2"
	DefaultTimeout      = 30 * time.Second
)

// Fonts is the custom font trio passed to the compiler.
type Fonts struct {
	Regular string
	Italic  string
	Bold    string
}

// Validate checks that either all three fonts are set or none is.
// Returns nil if f is nil (nil means default fonts).
func (f *Fonts) Validate() error {
	if f == nil {
		return nil
	}
	if f.Regular == "" || f.Italic == "" || f.Bold == "" {
		return fmt.Errorf("%w: regular=%q italic=%q bold=%q", ErrInvalidFonts, f.Regular, f.Italic, f.Bold)
	}
	return nil
}

// Config is shared read-only by every render worker.
type Config struct {
	// Path is the compiler executable, resolved through PATH when bare.
	Path string
	// OutputDir is where PNG files go, relative to SourceDir.
	OutputDir string
	// SourceDir is the absolute book source directory.
	SourceDir string
	// Inline embeds images as data URIs instead of writing files.
	Inline bool

	Layout      string
	Fonts       *Fonts
	ThemeID     string
	DarkThemeID string

	// Timeout bounds each compiler run.
	Timeout time.Duration
	// Workers is the pool size; 0 selects ResolvePoolSize's default.
	Workers int
}

// DefaultConfig returns a Config with default values for sourceDir.
func DefaultConfig(sourceDir string) Config {
	return Config{
		Path:      DefaultCompilerPath,
		OutputDir: DefaultOutputDir,
		SourceDir: sourceDir,
		Timeout:   DefaultTimeout,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Path == "" {
		return ErrEmptyCompilerPath
	}
	if !c.Inline {
		if c.OutputDir == "" {
			return ErrEmptyOutputDir
		}
		if filepath.IsAbs(c.OutputDir) {
			return fmt.Errorf("%w: %q", ErrAbsoluteOutputDir, c.OutputDir)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %v (must be positive)", ErrInvalidTimeout, c.Timeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkers, c.Workers)
	}
	return c.Fonts.Validate()
}
