package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tunepull/internal/catalog"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

type fakeSpotify struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	pageFetches atomic.Int32
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()
	fake := &fakeSpotify{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fake.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token on %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		body, status := fake.route(r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeSpotify) route(r *http.Request) (string, int) {
	base := f.server.URL + "/v1"
	switch r.URL.Path {
	case "/v1/tracks/ok1":
		return `{"id":"ok1","name":" Song   One ","artists":[{"name":"Artist A"},{"name":"Artist B"}],"album":{"name":"Album X"}}`, http.StatusOK
	case "/v1/tracks/noartist":
		return `{"id":"noartist","name":"Lonely","artists":[],"album":{"name":"Album X"}}`, http.StatusOK
	case "/v1/tracks/noalbum":
		return `{"id":"noalbum","name":"Lonely","artists":[{"name":"A"}],"album":{"name":""}}`, http.StatusOK
	case "/v1/tracks/denied":
		return `{"error":{"status":403,"message":"Forbidden"}}`, http.StatusForbidden
	case "/v1/tracks/gone":
		return `{"error":{"status":404,"message":"Non existing id"}}`, http.StatusNotFound
	case "/v1/tracks/busy":
		return `{"error":{"status":503,"message":"Service unavailable"}}`, http.StatusServiceUnavailable
	case "/v1/albums/alb1":
		return fmt.Sprintf(`{"id":"alb1","name":"Album X","artists":[{"name":"Header Artist"}],
			"tracks":{"href":"","limit":2,"offset":0,"total":3,"next":"%s/albums/alb1/tracks?offset=2&limit=2",
			"items":[{"id":"t1","name":"One","artists":[{"name":"Guest"}]},{"id":"t2","name":"Two","artists":[{"name":"Guest"}]}]}}`, base), http.StatusOK
	case "/v1/albums/alb1/tracks":
		f.pageFetches.Add(1)
		return `{"href":"","limit":2,"offset":2,"total":3,"next":null,"items":[{"id":"t3","name":"Three","artists":[]}]}`, http.StatusOK
	case "/v1/albums/empty":
		return `{"id":"empty","name":"Silence","artists":[{"name":"Nobody"}],"tracks":{"href":"","limit":50,"offset":0,"total":0,"next":null,"items":[]}}`, http.StatusOK
	case "/v1/playlists/pl1":
		return `{"id":"pl1","name":"Road Trip","tracks":{"href":"","limit":100,"offset":0,"total":2,"next":null,"items":[
			{"track":{"id":"p1","name":"First","artists":[{"name":"Band One"}],"album":{"name":"LP One"}}},
			{"track":{"id":"p2","name":"Second","artists":[{"name":"Band Two"}],"album":{"name":"LP Two"}}}]}}`, http.StatusOK
	case "/v1/playlists/nulltrack":
		return `{"id":"nulltrack","name":"Broken","tracks":{"href":"","limit":100,"offset":0,"total":2,"next":null,"items":[
			{"track":{"id":"p1","name":"First","artists":[{"name":"Band One"}],"album":{"name":"LP One"}}},
			{"track":null}]}}`, http.StatusOK
	default:
		return `{"error":{"status":404,"message":"Not found."}}`, http.StatusNotFound
	}
}

func (f *fakeSpotify) resolver(t *testing.T, secret string) *catalog.Resolver {
	t.Helper()
	creds, err := catalog.NewCredentials("id", secret, f.server.URL+"/token", catalog.WithBaseHTTPClient(f.server.Client()))
	if err != nil {
		t.Fatalf("NewCredentials returned error: %v", err)
	}
	resolver, err := catalog.NewResolver(creds, catalog.WithBaseURL(f.server.URL+"/v1"))
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return resolver
}

func TestResolveTrack(t *testing.T) {
	fake := newFakeSpotify(t)
	got, err := fake.resolver(t, "secret").Resolve(context.Background(), "https://open.spotify.com/track/ok1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Kind != track.KindTrack || got.Len() != 1 {
		t.Fatalf("unexpected catalog: %+v", got)
	}
	want := track.Record{Title: "Song One", Artist: "Artist A", Album: "Album X"}
	if got.Records[0] != want {
		t.Fatalf("unexpected record %+v", got.Records[0])
	}
	if got.CollectionName != "Song One" {
		t.Fatalf("expected collection named after the track, got %q", got.CollectionName)
	}
	if got.SourceURL != "https://open.spotify.com/track/ok1" {
		t.Fatalf("unexpected source url %q", got.SourceURL)
	}
}

func TestResolveAlbumFollowsPagesAndUsesHeaderArtist(t *testing.T) {
	fake := newFakeSpotify(t)
	got, err := fake.resolver(t, "secret").Resolve(context.Background(), "https://open.spotify.com/intl-fr/album/alb1?si=x")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected all 3 tracks across pages, got %d", got.Len())
	}
	if fake.pageFetches.Load() != 1 {
		t.Fatalf("expected one follow-up page request, got %d", fake.pageFetches.Load())
	}
	titles := []string{"One", "Two", "Three"}
	for i, rec := range got.Records {
		if rec.Title != titles[i] {
			t.Fatalf("record %d out of order: %+v", i, rec)
		}
		if rec.Artist != "Header Artist" || rec.Album != "Album X" {
			t.Fatalf("record %d should carry album header fields: %+v", i, rec)
		}
	}
	if got.CollectionName != "Album X" {
		t.Fatalf("unexpected collection %q", got.CollectionName)
	}
}

func TestResolveEmptyAlbum(t *testing.T) {
	fake := newFakeSpotify(t)
	got, err := fake.resolver(t, "secret").Resolve(context.Background(), "https://open.spotify.com/album/empty")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Len() != 0 || got.CollectionName != "Silence" {
		t.Fatalf("unexpected catalog %+v", got)
	}
}

func TestResolvePlaylistUsesPerTrackFields(t *testing.T) {
	fake := newFakeSpotify(t)
	got, err := fake.resolver(t, "secret").Resolve(context.Background(), "https://open.spotify.com/playlist/pl1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []track.Record{
		{Title: "First", Artist: "Band One", Album: "LP One"},
		{Title: "Second", Artist: "Band Two", Album: "LP Two"},
	}
	if got.Len() != len(want) {
		t.Fatalf("unexpected record count %d", got.Len())
	}
	for i := range want {
		if got.Records[i] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got.Records[i], want[i])
		}
	}
	if got.CollectionName != "Road Trip" {
		t.Fatalf("unexpected collection %q", got.CollectionName)
	}
}

func TestResolveErrors(t *testing.T) {
	fake := newFakeSpotify(t)
	resolver := fake.resolver(t, "secret")
	cases := []struct {
		url      string
		marker   error
		fragment string
	}{
		{"https://open.spotify.com/track/noartist", services.ErrMalformedResponse, "track.artists"},
		{"https://open.spotify.com/track/noalbum", services.ErrMalformedResponse, "track.album.name"},
		{"https://open.spotify.com/playlist/nulltrack", services.ErrMalformedResponse, "playlist.tracks.items[1].track"},
		{"https://open.spotify.com/track/gone", services.ErrNotFound, ""},
		{"https://open.spotify.com/track/denied", services.ErrAuth, ""},
		{"https://open.spotify.com/track/busy", services.ErrNetwork, ""},
		{"https://open.spotify.com/show/abc", services.ErrInvalidURL, ""},
	}
	for _, tc := range cases {
		_, err := resolver.Resolve(context.Background(), tc.url)
		if !errors.Is(err, tc.marker) {
			t.Fatalf("%s: expected %v, got %v", tc.url, tc.marker, err)
		}
		if tc.fragment != "" && !strings.Contains(err.Error(), tc.fragment) {
			t.Fatalf("%s: expected field path %q in %q", tc.url, tc.fragment, err.Error())
		}
	}
}

func TestResolveRejectedCredentials(t *testing.T) {
	fake := newFakeSpotify(t)
	_, err := fake.resolver(t, "wrong").Resolve(context.Background(), "https://open.spotify.com/track/ok1")
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestCredentialsReuseToken(t *testing.T) {
	fake := newFakeSpotify(t)
	resolver := fake.resolver(t, "secret")
	for range 3 {
		if _, err := resolver.Resolve(context.Background(), "https://open.spotify.com/track/ok1"); err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
	}
	if calls := fake.tokenCalls.Load(); calls != 1 {
		t.Fatalf("expected a single token exchange, got %d", calls)
	}
}

func TestCredentialsCheck(t *testing.T) {
	fake := newFakeSpotify(t)
	good, err := catalog.NewCredentials("id", "secret", fake.server.URL+"/token", catalog.WithBaseHTTPClient(fake.server.Client()))
	if err != nil {
		t.Fatalf("NewCredentials returned error: %v", err)
	}
	if err := good.Check(context.Background()); err != nil {
		t.Fatalf("expected credentials to be accepted: %v", err)
	}
	bad, err := catalog.NewCredentials("id", "nope", fake.server.URL+"/token", catalog.WithBaseHTTPClient(fake.server.Client()))
	if err != nil {
		t.Fatalf("NewCredentials returned error: %v", err)
	}
	if err := bad.Check(context.Background()); !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestNewCredentialsRequiresSecrets(t *testing.T) {
	if _, err := catalog.NewCredentials("", "secret", "https://example.com/token"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
