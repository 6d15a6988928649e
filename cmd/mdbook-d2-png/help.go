package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdbook-d2-png [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command, reads mdBook's [context, book] JSON on stdin and")
	fmt.Fprintln(w, "writes the book with d2 diagrams replaced by images on stdout.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  supports   Tell mdBook whether a renderer is supported")
	fmt.Fprintln(w, "  render     Render d2 blocks in Markdown files outside mdBook")
	fmt.Fprintln(w, "  doctor     Check the d2 compiler and book configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -q, --quiet     Only show errors")
	fmt.Fprintln(w, "  -v, --verbose   Show per-diagram timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  "+logEnvVar+"   Log level: debug, info, warn, error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdbook-d2-png help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdbook-d2-png render [input...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render d2 blocks in Markdown files. Inputs are files or directories")
	fmt.Fprintln(w, "(default: the book's source directory). One file is written to stdout;")
	fmt.Fprintln(w, "several need --output. Image links are relative to the source tree;")
	fmt.Fprintln(w, "use --inline for self-contained output.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config:")
	fmt.Fprintln(w, "      --book <dir>          Book directory with book.toml (default \".\")")
	fmt.Fprintln(w, "  -c, --config <file>       YAML config instead of book.toml")
	fmt.Fprintln(w, "      --src <dir>           Source directory (overrides book.src)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --inline              Embed images as data URIs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel d2 processes (0 = auto)")
	fmt.Fprintln(w, "      --timeout <d>         Per-diagram timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-diagram timing")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdbook-d2-png doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that d2 is installed and the output directory is writable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --book <dir>   Book directory with book.toml (default \".\")")
	fmt.Fprintln(w, "      --json         Output as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "supports":
		fmt.Fprintln(env.Stdout, "Usage: mdbook-d2-png supports <renderer>")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Exit 0 when the renderer is supported. Every renderer is.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdbook-d2-png version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdbook-d2-png help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
