package track

import (
	"fmt"
	"strings"

	"tunepull/internal/textutil"
)

// Kind identifies which catalog object a URL points at.
type Kind string

const (
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
)

// ParseKind maps a URL path segment onto a Kind.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindTrack:
		return KindTrack, true
	case KindAlbum:
		return KindAlbum, true
	case KindPlaylist:
		return KindPlaylist, true
	default:
		return "", false
	}
}

// Record is one track to fetch.
type Record struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// NewRecord normalizes the three fields and rejects empty values.
func NewRecord(title, artist, album string) (Record, error) {
	rec := Record{
		Title:  textutil.NormalizeField(title),
		Artist: textutil.NormalizeField(artist),
		Album:  textutil.NormalizeField(album),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Validate reports the first empty field.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("record title is empty")
	case strings.TrimSpace(r.Artist) == "":
		return fmt.Errorf("record artist is empty")
	case strings.TrimSpace(r.Album) == "":
		return fmt.Errorf("record album is empty")
	}
	return nil
}

// Key returns the identity of the record. Two records are the same logical
// track when their keys match.
func (r Record) Key() string {
	return textutil.NormalizeField(r.Title) + "\x1f" +
		textutil.NormalizeField(r.Artist) + "\x1f" +
		textutil.NormalizeField(r.Album)
}

// Same reports whether r and other describe the same logical track.
func (r Record) Same(other Record) bool {
	return r.Key() == other.Key()
}

// Label is the "artist - title" form used in logs and user-facing output.
func (r Record) Label() string {
	return r.Artist + " - " + r.Title
}

// SearchQuery is the free-text query sent to the search provider.
func (r Record) SearchQuery() string {
	return strings.TrimSpace(r.Artist + " " + r.Title)
}

// Catalog is the ordered result of resolving a catalog URL.
type Catalog struct {
	Kind           Kind     `json:"kind"`
	ID             string   `json:"id"`
	SourceURL      string   `json:"source_url"`
	CollectionName string   `json:"collection_name"`
	Records        []Record `json:"records"`
}

// Len returns the number of records.
func (c Catalog) Len() int {
	return len(c.Records)
}
