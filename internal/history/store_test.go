package history_test

import (
	"context"
	"errors"
	"testing"

	"tunepull/internal/history"
	"tunepull/internal/testsupport"
	"tunepull/internal/track"
)

func sampleCatalog() track.Catalog {
	return track.Catalog{
		Kind:           track.KindAlbum,
		ID:             "alb1",
		SourceURL:      "https://open.spotify.com/album/alb1",
		CollectionName: "Record",
		Records: []track.Record{
			{Title: "One", Artist: "Band", Album: "Record"},
			{Title: "Two", Artist: "Band", Album: "Record"},
			{Title: "Three", Artist: "Band", Album: "Record"},
		},
	}
}

func sampleResults(cat track.Catalog) []track.FetchResult {
	return []track.FetchResult{
		{Record: cat.Records[0], Outcome: track.OutcomeSuccess, OutputPath: "/music/Record/Band - One.m4a"},
		{Record: cat.Records[1], Outcome: track.OutcomeNotFound, Detail: "no candidate found"},
		{Record: cat.Records[2], Outcome: track.OutcomeSuccess, OutputPath: "/music/Record/Band - Three.m4a", Skipped: true},
	}
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	cat := sampleCatalog()

	run, err := store.Begin(ctx, cat)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if run.ID == "" || run.Finished() {
		t.Fatalf("unexpected new run %+v", run)
	}

	open, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get open run: %v", err)
	}
	if open.Finished() || open.Collection != "Record" || open.Kind != track.KindAlbum {
		t.Fatalf("unexpected open run %+v", open)
	}

	if err := store.Finish(ctx, run, sampleResults(cat), false); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	stored, err := store.Get(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("Get by prefix: %v", err)
	}
	if !stored.Finished() || stored.Total != 3 || stored.Succeeded != 2 || stored.Skipped != 1 || stored.Failed != 1 {
		t.Fatalf("unexpected tallies %+v", stored)
	}

	entries, err := store.Entries(ctx, run.ID)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Outcome != track.OutcomeNotFound || entries[1].Detail == "" || entries[1].OutputPath != "" {
		t.Fatalf("unexpected failed entry %+v", entries[1])
	}
	if !entries[2].Skipped || entries[2].Record.Title != "Three" || entries[2].Position != 3 {
		t.Fatalf("unexpected skipped entry %+v", entries[2])
	}
}

func TestListNewestFirstAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	cat := sampleCatalog()

	first := testsupport.RecordRun(t, store, cat, sampleResults(cat))
	second := testsupport.RecordRun(t, store, cat, nil)

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one run with limit, got %d (%v)", len(limited), err)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 runs removed, got %d", removed)
	}
	if _, err := store.Get(ctx, first.ID); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound after clear, got %v", err)
	}
	entries, err := store.Entries(ctx, first.ID)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected results removed with runs, got %d (%v)", len(entries), err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cat := sampleCatalog()
	run := testsupport.RecordRun(t, store, cat, sampleResults(cat))
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	if reopened.Path() != cfg.HistoryPath() {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
	if _, err := reopened.Get(context.Background(), run.ID); err != nil {
		t.Fatalf("expected run to survive reopen: %v", err)
	}
}
