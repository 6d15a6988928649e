package d2png

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
)

// imageExt is the extension of every rendered diagram.
const imageExt = ".png"

// hashLen is the number of hex characters kept from the path digest.
const hashLen = 8

// Filename returns the output file name for a diagram.
//
// Numbered chapters yield "<section><index>.png" (section [1 2], index 3
// gives "1.2.3.png"). Unnumbered chapters yield "<hash>_<index>.png" where
// hash depends on the chapter path only, so reruns reuse the same names.
func Filename(ctx RenderContext) string {
	if len(ctx.Number) > 0 {
		return ctx.Number.String() + strconv.Itoa(ctx.Index) + imageExt
	}
	return pathHash(ctx.Path) + "_" + strconv.Itoa(ctx.Index) + imageExt
}

func pathHash(path string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(path)))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// RelativeOutputPath is the diagram file relative to the source directory.
func (c Config) RelativeOutputPath(ctx RenderContext) string {
	return filepath.Join(c.OutputDir, Filename(ctx))
}

// AbsoluteOutputDir is the directory diagram files are written to.
func (c Config) AbsoluteOutputDir() string {
	return filepath.Join(c.SourceDir, c.OutputDir)
}

// AbsoluteOutputPath is the diagram file on disk.
func (c Config) AbsoluteOutputPath(ctx RenderContext) string {
	return filepath.Join(c.SourceDir, c.RelativeOutputPath(ctx))
}

// LinkPath is the slash-separated path from the chapter's directory to
// the diagram file. When no relative path exists (different volumes) it
// falls back to RelativeOutputPath.
func (c Config) LinkPath(ctx RenderContext) string {
	chapterDir := filepath.Dir(filepath.Join(c.SourceDir, ctx.Path))
	rel, err := filepath.Rel(chapterDir, c.AbsoluteOutputPath(ctx))
	if err != nil {
		return filepath.ToSlash(c.RelativeOutputPath(ctx))
	}
	return filepath.ToSlash(rel)
}
