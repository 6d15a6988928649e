// Package mdbook speaks mdBook's preprocessor protocol: a JSON array
// [context, book] on stdin, the book JSON on stdout.
//
// The book is edited in place with sjson so fields this tool does not
// know about survive untouched.
package mdbook

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/mod/semver"

	"github.com/alnah/mdbook-d2-png/internal/hints"
)

// Sentinel errors for protocol operations.
var (
	ErrMalformedInput      = errors.New("malformed mdBook input")
	ErrIncompatibleVersion = errors.New("incompatible mdBook version")
	ErrInputTooLarge       = errors.New("mdBook input too large")
)

// MaxInputSize limits how much JSON is read from stdin.
// Variable (not const) to allow testing with smaller limits.
var MaxInputSize = 512 << 20

// SupportedVersions lists the mdBook major.minor lines this tool accepts.
var SupportedVersions = []string{"v0.4", "v0.5"}

// defaultSrc is mdBook's default source directory.
const defaultSrc = "src"

// Context is the first element of the preprocessor input.
type Context struct {
	Root     string
	Src      string
	Renderer string
	Version  string
	raw      gjson.Result
}

// Preprocessor returns the raw JSON of [preprocessor.<name>], or nil when
// the table is missing.
func (c *Context) Preprocessor(name string) []byte {
	section := c.raw.Get("config.preprocessor." + gjson.Escape(name))
	if !section.Exists() {
		return nil
	}
	return []byte(section.Raw)
}

// SourceDir is the book's source directory (root joined with book.src).
func (c *Context) SourceDir() string {
	src := c.Src
	if src == "" {
		src = defaultSrc
	}
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(c.Root, src)
}

// Book is the second element of the preprocessor input.
type Book struct {
	raw      []byte
	itemsKey string
}

// Chapter is one chapter of the book with its position in the JSON.
type Chapter struct {
	Name    string
	Content string
	// Path is the source file relative to the source directory, or ""
	// for draft chapters.
	Path   string
	Number []int
	key    string
}

// ParseInput reads and validates [context, book] from r.
func ParseInput(r io.Reader) (*Context, *Book, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(MaxInputSize)+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}
	if len(data) > MaxInputSize {
		return nil, nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, MaxInputSize)
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: invalid JSON", ErrMalformedInput)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() || len(root.Array()) != 2 {
		return nil, nil, fmt.Errorf("%w: expected [context, book]", ErrMalformedInput)
	}
	ctxJSON, bookJSON := root.Get("0"), root.Get("1")
	if !ctxJSON.IsObject() || !bookJSON.IsObject() {
		return nil, nil, fmt.Errorf("%w: context and book must be objects", ErrMalformedInput)
	}

	ctx := &Context{
		Root:     ctxJSON.Get("root").String(),
		Src:      ctxJSON.Get("config.book.src").String(),
		Renderer: ctxJSON.Get("renderer").String(),
		Version:  ctxJSON.Get("mdbook_version").String(),
		raw:      ctxJSON,
	}
	if ctx.Root == "" {
		return nil, nil, fmt.Errorf("%w: context has no root", ErrMalformedInput)
	}

	book := &Book{raw: []byte(bookJSON.Raw)}
	switch {
	case bookJSON.Get("sections").IsArray():
		book.itemsKey = "sections"
	case bookJSON.Get("items").IsArray():
		book.itemsKey = "items"
	default:
		return nil, nil, fmt.Errorf("%w: book has no sections", ErrMalformedInput)
	}
	return ctx, book, nil
}

// CheckVersion accepts mdBook versions whose major.minor is supported.
func CheckVersion(version string) error {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: cannot parse %q", ErrIncompatibleVersion, version)
	}
	for _, supported := range SupportedVersions {
		if semver.MajorMinor(v) == supported {
			return nil
		}
	}
	return fmt.Errorf("%w: %s%s", ErrIncompatibleVersion, version, hints.ForIncompatibleVersion(SupportedVersions))
}

// Chapters returns every chapter in reading order, nested ones included.
func (b *Book) Chapters() []Chapter {
	var out []Chapter
	b.walk(gjson.GetBytes(b.raw, b.itemsKey), b.itemsKey, &out)
	return out
}

func (b *Book) walk(items gjson.Result, prefix string, out *[]Chapter) {
	for i, item := range items.Array() {
		ch := item.Get("Chapter")
		if !ch.IsObject() {
			continue // Separator, PartTitle
		}
		key := prefix + "." + strconv.Itoa(i) + ".Chapter"

		path := ch.Get("source_path").String()
		if path == "" {
			path = ch.Get("path").String()
		}
		var number []int
		for _, n := range ch.Get("number").Array() {
			number = append(number, int(n.Int()))
		}
		*out = append(*out, Chapter{
			Name:    ch.Get("name").String(),
			Content: ch.Get("content").String(),
			Path:    filepath.FromSlash(path),
			Number:  number,
			key:     key,
		})
		b.walk(ch.Get("sub_items"), key+".sub_items", out)
	}
}

// SetContent replaces a chapter's content.
func (b *Book) SetContent(ch Chapter, content string) error {
	if ch.key == "" {
		return fmt.Errorf("%w: chapter %q has no position", ErrMalformedInput, ch.Name)
	}
	raw, err := sjson.SetBytes(b.raw, ch.key+".content", content)
	if err != nil {
		return fmt.Errorf("updating chapter %q: %w", ch.Name, err)
	}
	b.raw = raw
	return nil
}

// Bytes returns the book JSON.
func (b *Book) Bytes() []byte {
	return b.raw
}
