package library

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bogem/id3v2"
)

// Entry is one stored file.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	// Tags read back from the file, when the format carries readable tags.
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// Collection groups the files stored under one collection directory.
type Collection struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Size returns the total bytes stored in the collection.
func (c Collection) Size() int64 {
	var total int64
	for _, e := range c.Entries {
		total += e.Size
	}
	return total
}

// Tree lists stored tracks grouped by collection directory, sorted by name.
// Hidden and temporary files are ignored. A missing root yields no
// collections.
func Tree(root string) ([]Collection, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var collections []Collection
	for _, dir := range dirs {
		if !dir.IsDir() || hidden(dir.Name()) {
			continue
		}
		entries, err := listEntries(filepath.Join(root, dir.Name()))
		if err != nil {
			return nil, err
		}
		collections = append(collections, Collection{Name: dir.Name(), Entries: entries})
	}
	sort.Slice(collections, func(i, j int) bool {
		return strings.ToLower(collections[i].Name) < strings.ToLower(collections[j].Name)
	})
	return collections, nil
}

func listEntries(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		if !file.Type().IsRegular() || hidden(file.Name()) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			return nil, err
		}
		entry := Entry{
			Name: file.Name(),
			Path: filepath.Join(dir, file.Name()),
			Size: info.Size(),
		}
		if strings.EqualFold(filepath.Ext(file.Name()), ".mp3") {
			readID3(&entry)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// id3Frames are the id3v2 frame descriptions for TIT2, TPE1 and TALB.
var id3Frames = []string{"Title", "Artist", "Album/Movie/Show title"}

// readID3 fills tag fields from an mp3 file. Unreadable tags are ignored.
func readID3(entry *Entry) {
	tag, err := id3v2.Open(entry.Path, id3v2.Options{Parse: true, ParseFrames: id3Frames})
	if err != nil {
		return
	}
	defer tag.Close()
	entry.Title = strings.TrimSpace(tag.Title())
	entry.Artist = strings.TrimSpace(tag.Artist())
	entry.Album = strings.TrimSpace(tag.Album())
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
