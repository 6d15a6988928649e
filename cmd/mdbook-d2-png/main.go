// Command mdbook-d2-png is an mdBook preprocessor that renders ```d2
// code blocks to PNG images with the d2 compiler.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply. Commands report a bad log
	// level themselves.
	level, _ := resolveLogLevel(commonFlags{}, env.Getenv(logEnvVar))
	_, _ = maxprocs.Set(maxprocs.Logger(newLoggerAt(env.Stderr, level).Debugf))

	os.Exit(runMain(os.Args, env))
}

// runMain dispatches to a command and returns the process exit code.
// Without a command it runs as a preprocessor: book JSON in, book JSON out.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) < 2 {
		return reportError(env, runPreprocess(ctx, nil, env))
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "supports":
		return runSupports(rest, env)
	case "render":
		return reportError(env, runRender(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdbook-d2-png %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}

	if isFlag(cmd) {
		return reportError(env, runPreprocess(ctx, args[1:], env))
	}
	fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// reportError prints err and maps it to an exit code.
func reportError(env *Environment, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "mdbook-d2-png: %v\n", err)
	return exitCodeFor(err)
}

// isFlag reports whether arg looks like a command-line flag.
func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}
