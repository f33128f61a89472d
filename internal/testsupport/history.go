package testsupport

import (
	"context"
	"testing"

	"tunepull/internal/config"
	"tunepull/internal/history"
	"tunepull/internal/track"
)

// MustOpenHistory opens the history store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores a finished run for cat with the given results.
func RecordRun(t testing.TB, store *history.Store, cat track.Catalog, results []track.FetchResult) *history.Run {
	t.Helper()

	ctx := context.Background()
	run, err := store.Begin(ctx, cat)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, run, results, false); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return run
}
