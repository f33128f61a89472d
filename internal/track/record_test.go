package track_test

import (
	"testing"

	"tunepull/internal/track"
)

func TestNewRecordTrimsFields(t *testing.T) {
	rec, err := track.NewRecord("  Song  ", "\tArtist ", " Album\n")
	if err != nil {
		t.Fatalf("NewRecord returned error: %v", err)
	}
	if rec.Title != "Song" || rec.Artist != "Artist" || rec.Album != "Album" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestNewRecordRejectsEmptyFields(t *testing.T) {
	cases := []struct {
		name                 string
		title, artist, album string
	}{
		{"title", " ", "Artist", "Album"},
		{"artist", "Song", "", "Album"},
		{"album", "Song", "Artist", "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := track.NewRecord(tc.title, tc.artist, tc.album); err == nil {
				t.Fatalf("expected error for empty %s", tc.name)
			}
		})
	}
}

func TestRecordIdentityIgnoresSurroundingWhitespace(t *testing.T) {
	a := track.Record{Title: "Song", Artist: "Artist", Album: "Album"}
	b := track.Record{Title: " Song", Artist: "Artist ", Album: "Album"}
	if !a.Same(b) {
		t.Fatal("expected records to be the same logical track")
	}
	c := track.Record{Title: "Song", Artist: "Artist", Album: "Other"}
	if a.Same(c) {
		t.Fatal("expected records with different albums to differ")
	}
}

func TestRecordIdentityUsesUnicodeNormalization(t *testing.T) {
	composed := track.Record{Title: "Caf\u00e9", Artist: "A", Album: "B"}
	decomposed := track.Record{Title: "Cafe\u0301", Artist: "A", Album: "B"}
	if !composed.Same(decomposed) {
		t.Fatal("expected NFC-equivalent titles to match")
	}
}

func TestSearchQueryOrdersArtistThenTitle(t *testing.T) {
	rec := track.Record{Title: "TrackA", Artist: "ArtistA", Album: "AlbumA"}
	if got := rec.SearchQuery(); got != "ArtistA TrackA" {
		t.Fatalf("unexpected query %q", got)
	}
	if got := rec.Label(); got != "ArtistA - TrackA" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, value := range []string{"track", "Album", " playlist "} {
		if _, ok := track.ParseKind(value); !ok {
			t.Fatalf("expected %q to parse", value)
		}
	}
	if _, ok := track.ParseKind("artist"); ok {
		t.Fatal("expected artist to be rejected")
	}
}

func TestSummarize(t *testing.T) {
	results := []track.FetchResult{
		{Outcome: track.OutcomeSuccess},
		{Outcome: track.OutcomeSuccess, Skipped: true},
		{Outcome: track.OutcomeNotFound},
		{Outcome: track.OutcomeTranscodeFailed},
	}
	s := track.Summarize(results)
	if s.Total != 4 || s.Succeeded != 2 || s.Skipped != 1 || s.Failed != 2 {
		t.Fatalf("unexpected summary: %#v", s)
	}
}
