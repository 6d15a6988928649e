package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	quiet   bool
	verbose bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	config  string
	book    string
	src     string
	output  string
	workers int
	timeout time.Duration
	inline  bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	book string
	json bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-diagram timing")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to stderr.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseFlagSet parses args and wraps failures in ErrUsage. flag.ErrHelp is
// returned as is so callers can exit 0.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	fs.Usage()
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parsePreprocessFlags parses the flags accepted in preprocessor mode.
func parsePreprocessFlags(args []string, stderr io.Writer) (*commonFlags, error) {
	fs := newFlagSet("mdbook-d2-png", stderr, printUsage)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := newFlagSet("render", stderr, printRenderUsage)
	f := &renderFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "YAML config file (instead of book.toml)")
	fs.StringVar(&f.book, "book", ".", "book directory containing book.toml")
	fs.StringVar(&f.src, "src", "", "source directory (overrides book.src)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel d2 processes (0 = auto)")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-diagram timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.inline, "inline", false, "embed images as data URIs")
	addCommonFlags(fs, &f.common)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if fs.Changed("workers") && f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrUsage, f.workers)
	}
	if fs.Changed("timeout") && f.timeout <= 0 {
		return nil, nil, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, f.timeout)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	fs := newFlagSet("doctor", stderr, printDoctorUsage)
	f := &doctorFlags{}

	fs.StringVar(&f.book, "book", ".", "book directory containing book.toml")
	fs.BoolVar(&f.json, "json", false, "output as JSON")

	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}
