// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrNotDirectory is returned when a path expected to be a directory is not.
var ErrNotDirectory = errors.New("path is not a directory")

// EnsureDir creates dir and any missing parents.
// Safe to call concurrently for the same directory: an existing directory
// is success, never an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	// #nosec G306 -- rendered chapters are meant to be readable
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CheckWritableDir verifies dir exists (or can be created) and accepts new
// files by creating and removing a probe file.
func CheckWritableDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// The renderer creates it on demand; the nearest existing parent decides.
		return CheckWritableDir(filepath.Dir(dir))
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	probe, err := os.CreateTemp(dir, ".d2png-probe-*")
	if err != nil {
		return fmt.Errorf("creating probe file: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath reports whether a compiler setting names a file rather than a
// command to look up on PATH. A string containing / or \ is a path.
//
// Examples:
//   - "d2" -> false (looked up on PATH)
//   - "./bin/d2" -> true (relative path)
//   - "/usr/local/bin/d2" -> true (absolute)
//   - "C:\tools\d2.exe" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
