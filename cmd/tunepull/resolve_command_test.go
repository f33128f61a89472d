package main

import (
	"encoding/json"
	"errors"
	"testing"

	"tunepull/internal/services"
	"tunepull/internal/track"
)

func TestResolveJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"resolve", "--json", albumURL("alb1") + "?si=abc"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var view resolveView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if view.Kind != track.KindAlbum || view.Collection != "Album X" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.EmbedURL != "https://open.spotify.com/embed/album/alb1" {
		t.Fatalf("unexpected embed url %q", view.EmbedURL)
	}
	want := []track.Record{
		{Title: "One", Artist: "Band", Album: "Album X"},
		{Title: "Two", Artist: "Band", Album: "Album X"},
	}
	if len(view.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(view.Records))
	}
	for i := range want {
		if view.Records[i] != want[i] {
			t.Fatalf("record %d: got %+v want %+v", i, view.Records[i], want[i])
		}
	}
}

func TestResolveTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"resolve", albumURL("alb1")}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, `album: Album X (2 tracks)`)
	requireContains(t, out, "Embed: https://open.spotify.com/embed/album/alb1")
	requireContains(t, out, "Two")
}

func TestResolveErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"resolve", "https://open.spotify.com/artist/abc"}, env.configPath); !errors.Is(err, services.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"resolve", albumURL("missing")}, env.configPath); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
