// Package config loads the [preprocessor.d2-png] section and turns it into
// a validated d2png.Config.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	d2png "github.com/alnah/mdbook-d2-png"
	"github.com/alnah/mdbook-d2-png/internal/hints"
	"github.com/alnah/mdbook-d2-png/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("d2-png preprocessor config not found")
	ErrConfigParse    = errors.New("failed to parse d2-png preprocessor config")
	ErrBookNotFound   = errors.New("book.toml not found")
)

// SectionKey is the preprocessor's table name under [preprocessor].
const SectionKey = "d2-png"

// BookFile is mdBook's configuration file name.
const BookFile = "book.toml"

// defaultSrc is mdBook's default source directory.
const defaultSrc = "src"

// Section mirrors [preprocessor.d2-png]. Keys are kebab-case as in
// book.toml. mdBook's own keys (yamlutil.HostKeys) are accepted and
// ignored.
type Section struct {
	Path        string `yaml:"path" toml:"path"`
	OutputDir   string `yaml:"output-dir" toml:"output-dir"`
	Inline      bool   `yaml:"inline" toml:"inline"`
	Layout      string `yaml:"layout" toml:"layout"`
	Fonts       *Fonts `yaml:"fonts" toml:"fonts"`
	ThemeID     any    `yaml:"theme-id" toml:"theme-id"`
	DarkThemeID any    `yaml:"dark-theme-id" toml:"dark-theme-id"`
	Timeout     any    `yaml:"timeout" toml:"timeout"`
	Workers     int    `yaml:"workers" toml:"workers"`
}

// Fonts mirrors the fonts sub-table.
type Fonts struct {
	Regular string `yaml:"regular" toml:"regular"`
	Italic  string `yaml:"italic" toml:"italic"`
	Bold    string `yaml:"bold" toml:"bold"`
}

// fileSection is Section without mdBook's keys, for strict YAML files.
type fileSection Section

// Resolve applies defaults, normalizes scalars and validates the section.
// sourceDir is the book's absolute source directory.
func (s Section) Resolve(sourceDir string) (d2png.Config, error) {
	cfg := d2png.DefaultConfig(sourceDir)
	if s.Path != "" {
		cfg.Path = s.Path
	}
	if s.OutputDir != "" {
		cfg.OutputDir = s.OutputDir
	}
	cfg.Inline = s.Inline
	cfg.Layout = s.Layout
	cfg.Workers = s.Workers

	if s.Fonts != nil {
		cfg.Fonts = &d2png.Fonts{Regular: s.Fonts.Regular, Italic: s.Fonts.Italic, Bold: s.Fonts.Bold}
	}

	var err error
	if cfg.ThemeID, err = scalarString("theme-id", s.ThemeID); err != nil {
		return d2png.Config{}, err
	}
	if cfg.DarkThemeID, err = scalarString("dark-theme-id", s.DarkThemeID); err != nil {
		return d2png.Config{}, err
	}
	if s.Timeout != nil {
		if cfg.Timeout, err = parseTimeout(s.Timeout); err != nil {
			return d2png.Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, d2png.ErrInvalidFonts) {
			return d2png.Config{}, fmt.Errorf("%w%s", err, hints.ForFonts())
		}
		return d2png.Config{}, err
	}
	return cfg, nil
}

// FromJSON decodes the section mdBook passes in the preprocessor context.
// A nil or empty section means the table is missing from book.toml.
func FromJSON(section []byte, sourceDir string) (d2png.Config, error) {
	if len(section) == 0 || string(section) == "null" {
		return d2png.Config{}, fmt.Errorf("%w%s", ErrConfigNotFound, hints.ForConfigNotFound())
	}
	var s Section
	if err := yamlutil.Unmarshal(section, &s); err != nil {
		return d2png.Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return s.Resolve(sourceDir)
}

// UnknownKeys lists keys of a JSON or YAML section that the preprocessor
// does not read, mdBook's own keys excepted.
func UnknownKeys(section []byte) []string {
	if len(section) == 0 {
		return nil
	}
	keys, err := yamlutil.UnknownKeys(section, &Section{})
	if err != nil {
		return nil
	}
	return keys
}

// LoadBook reads bookDir/book.toml and returns the resolved config along
// with the book's absolute source directory.
func LoadBook(bookDir string) (d2png.Config, error) {
	path := filepath.Join(bookDir, BookFile)

	var book struct {
		Book struct {
			Src string `toml:"src"`
		} `toml:"book"`
		Preprocessor map[string]toml.Primitive `toml:"preprocessor"`
	}
	md, err := toml.DecodeFile(path, &book)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d2png.Config{}, fmt.Errorf("%w: %s", ErrBookNotFound, path)
		}
		return d2png.Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	prim, ok := book.Preprocessor[SectionKey]
	if !ok {
		return d2png.Config{}, fmt.Errorf("%w in %s%s", ErrConfigNotFound, path, hints.ForConfigNotFound())
	}
	var s Section
	if err := md.PrimitiveDecode(prim, &s); err != nil {
		return d2png.Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	src := book.Book.Src
	if src == "" {
		src = defaultSrc
	}
	sourceDir, err := filepath.Abs(filepath.Join(bookDir, src))
	if err != nil {
		return d2png.Config{}, fmt.Errorf("resolving source directory: %w", err)
	}
	return s.Resolve(sourceDir)
}

// LoadFile reads a standalone YAML config. Unknown keys are rejected.
func LoadFile(path, sourceDir string) (d2png.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return d2png.Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return d2png.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var s fileSection
	if err := yamlutil.UnmarshalStrict(data, &s); err != nil {
		return d2png.Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return Section(s).Resolve(sourceDir)
}

// scalarString accepts theme ids written as numbers or strings.
func scalarString(key string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		if x != math.Trunc(x) {
			return "", fmt.Errorf("%w: %s must be an integer, got %v", ErrConfigParse, key, x)
		}
		return strconv.FormatInt(int64(x), 10), nil
	default:
		return "", fmt.Errorf("%w: %s has unsupported type %T", ErrConfigParse, key, v)
	}
}

// parseTimeout accepts a duration string ("45s", "2m") or a number of
// seconds.
func parseTimeout(v any) (time.Duration, error) {
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: timeout: %v", ErrConfigParse, err)
		}
		return d, nil
	}
	secs, err := scalarString("timeout", v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout: %v", ErrConfigParse, err)
	}
	return time.Duration(n) * time.Second, nil
}
