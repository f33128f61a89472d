package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"tunepull/internal/textutil"
	"tunepull/internal/track"
)

// Naming styles.
const (
	NamingReadable = "readable"
	NamingSlug     = "slug"
)

const fallbackCollection = "Unsorted"

// Layout maps records onto output paths:
// <root>/<collection>/<artist> - <title>.<ext>.
type Layout struct {
	Root      string
	Naming    string
	Extension string
}

// NewLayout builds a layout. Unknown naming styles fall back to readable.
func NewLayout(root, naming, extension string) Layout {
	naming = strings.ToLower(strings.TrimSpace(naming))
	if naming != NamingSlug {
		naming = NamingReadable
	}
	return Layout{
		Root:      filepath.Clean(root),
		Naming:    naming,
		Extension: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(extension)), "."),
	}
}

// CollectionDir returns the directory holding a collection's tracks.
func (l Layout) CollectionDir(collection string) string {
	return filepath.Join(l.Root, l.segment(collection, fallbackCollection))
}

// FileName returns the file name for rec.
func (l Layout) FileName(rec track.Record) string {
	base := l.segment(rec.Artist+" - "+rec.Title, "")
	if base == "" {
		base = textutil.SanitizeToken(rec.Label())
	}
	if l.Extension == "" {
		return base
	}
	return base + "." + l.Extension
}

// Path returns the output path for rec inside collection.
func (l Layout) Path(collection string, rec track.Record) string {
	return filepath.Join(l.CollectionDir(collection), l.FileName(rec))
}

// Exists reports whether a regular file is already present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l Layout) segment(value, fallback string) string {
	var out string
	if l.Naming == NamingSlug {
		out = slug.Make(textutil.NormalizeField(value))
	} else {
		out = textutil.SanitizeFileName(value)
	}
	if out == "" {
		return fallback
	}
	return out
}
