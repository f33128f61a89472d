package library

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bogem/id3v2"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestTreeGroupsByCollection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Road Trip", "B - Two.m4a"), "22")
	writeFile(t, filepath.Join(root, "Road Trip", "A - One.m4a"), "1")
	writeFile(t, filepath.Join(root, "Album X", "C - Three.m4a"), "333")
	writeFile(t, filepath.Join(root, "Album X", ".tunepull-partial.tmp"), "x")
	writeFile(t, filepath.Join(root, ".hidden", "ignored.m4a"), "x")

	collections, err := Tree(root)
	if err != nil {
		t.Fatalf("Tree returned error: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("expected 2 collections, got %+v", collections)
	}
	if collections[0].Name != "Album X" || collections[1].Name != "Road Trip" {
		t.Fatalf("unexpected collection order %+v", collections)
	}
	if len(collections[0].Entries) != 1 {
		t.Fatalf("expected temp file to be ignored, got %+v", collections[0].Entries)
	}
	if collections[1].Entries[0].Name != "A - One.m4a" || collections[1].Size() != 3 {
		t.Fatalf("unexpected entries %+v", collections[1].Entries)
	}
}

func TestTreeMissingRoot(t *testing.T) {
	collections, err := Tree(filepath.Join(t.TempDir(), "missing"))
	if err != nil || collections != nil {
		t.Fatalf("expected empty tree, got %v %v", collections, err)
	}
}

func TestTreeReadsMP3Tags(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "LP", "Band - Song.mp3")
	writeFile(t, path, "")

	tag := id3v2.NewEmptyTag()
	tag.SetTitle("Song")
	tag.SetArtist("Band")
	tag.SetAlbum("LP")
	file, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := tag.WriteTo(file); err != nil {
		t.Fatalf("write tag: %v", err)
	}
	file.Close()

	collections, err := Tree(root)
	if err != nil {
		t.Fatalf("Tree returned error: %v", err)
	}
	entry := collections[0].Entries[0]
	if entry.Title != "Song" || entry.Artist != "Band" || entry.Album != "LP" {
		t.Fatalf("expected tags to be read back, got %+v", entry)
	}
}

func TestReadID3ReadsAlbumOnlyTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "only-album.mp3")
	writeFile(t, path, "")

	tag := id3v2.NewEmptyTag()
	tag.SetAlbum("Side B")
	file, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := tag.WriteTo(file); err != nil {
		t.Fatalf("write tag: %v", err)
	}
	file.Close()

	entry := Entry{Path: path}
	readID3(&entry)
	if entry.Album != "Side B" || entry.Title != "" {
		t.Fatalf("expected album frame to be read back, got %+v", entry)
	}
}

func TestArchiveZipsTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "LP", "A - One.m4a"), "one")
	writeFile(t, filepath.Join(root, "LP", ".tunepull-x.tmp"), "partial")
	writeFile(t, filepath.Join(root, "Single", "B - Two.m4a"), "two")
	dest := filepath.Join(root, "tunepull.zip")

	count, err := Archive(root, dest)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 files archived, got %d", count)
	}

	reader, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer reader.Close()
	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "LP/A - One.m4a" || names[1] != "Single/B - Two.m4a" {
		t.Fatalf("unexpected archive entries %v", names)
	}
}

func TestClearEmptiesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(root, "LP", "A - One.m4a"), "one")

	if err := Clear(root); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("expected root to be recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty root, got %d entries", len(entries))
	}
	if err := Clear("/"); err == nil {
		t.Fatal("expected refusal to clear filesystem root")
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.lock")
	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock returned error: %v", err)
	}
	if _, err := AcquireLock(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	second, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	_ = second.Release()
}
