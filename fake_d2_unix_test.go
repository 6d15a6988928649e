//go:build !windows

package d2png

import (
	"os"
	"path/filepath"
	"testing"
)

// pngMagic is what the fake compiler writes for every diagram.
const pngMagic = "\x89PNG\r\n\x1a\n"

// fakeD2Script stands in for the d2 compiler. It reads the diagram from
// stdin, fails on FAIL, hangs on SLEEP, and otherwise writes PNG magic to
// the argument after "-" or to stdout when there is none. Arguments are
// appended to args.log next to the script.
const fakeD2Script = `#!/bin/sh
input=$(cat)
echo "$@" >> "$(dirname "$0")/args.log"
case "$input" in
*FAIL*)
	echo "err: failed to compile -" >&2
	echo "1:1: unexpected token" >&2
	exit 1
	;;
*SLEEP*)
	sleep 10
	;;
*EMPTY*)
	exit 0
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

// fakeConfig returns a file-mode config using the fake compiler and a
// fresh source directory.
func fakeConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig(t.TempDir())
	cfg.Path = writeFakeD2(t)
	return cfg
}
