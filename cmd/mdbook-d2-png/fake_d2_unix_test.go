//go:build !windows

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// pngMagic is what the fake compiler writes for every diagram.
const pngMagic = "\x89PNG\r\n\x1a\n"

// fakeD2Script stands in for the d2 compiler: --version prints a version,
// FAIL in the diagram fails to compile, anything else writes PNG magic to
// the argument after "-" or to stdout.
const fakeD2Script = `#!/bin/sh
if [ "$1" = "--version" ]; then
	echo "v0.7.0"
	exit 0
fi
input=$(cat)
case "$input" in
*FAIL*)
	echo "err: failed to compile -" >&2
	echo "1:1: unexpected token" >&2
	exit 1
	;;
esac
dest=""
seen=0
for arg in "$@"; do
	if [ "$seen" = 1 ]; then dest="$arg"; fi
	if [ "$arg" = "-" ]; then seen=1; fi
done
if [ -n "$dest" ]; then
	printf '\211PNG\r\n\032\n' > "$dest"
else
	printf '\211PNG\r\n\032\n'
fi
`

// writeFakeD2 installs the fake compiler in a temp dir and returns its path.
func writeFakeD2(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "d2")
	if err := os.WriteFile(path, []byte(fakeD2Script), 0o755); err != nil {
		t.Fatalf("failed to write fake d2: %v", err)
	}
	return path
}

// writeFile writes content under dir, creating parents.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeBookTOML writes a book.toml using the fake compiler.
func writeBookTOML(t *testing.T, bookDir, d2Path, extra string) {
	t.Helper()

	quoted, err := json.Marshal(d2Path)
	if err != nil {
		t.Fatalf("quoting path: %v", err)
	}
	writeFile(t, bookDir, "book.toml",
		"[book]\ntitle = \"Test\"\n\n[preprocessor.d2-png]\npath = "+string(quoted)+"\n"+extra)
}
