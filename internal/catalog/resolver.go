package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"tunepull/internal/logging"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

// Resolver turns catalog URLs into normalized record lists.
type Resolver struct {
	client *spotify.Client
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*resolverSettings)

type resolverSettings struct {
	baseURL string
	logger  *slog.Logger
}

// WithBaseURL points the resolver at an alternate Web API root.
func WithBaseURL(baseURL string) Option {
	return func(s *resolverSettings) {
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *resolverSettings) {
		s.logger = logger
	}
}

// NewResolver builds a resolver over the shared credentials. Requests are not
// retried.
func NewResolver(creds *Credentials, opts ...Option) (*Resolver, error) {
	if creds == nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "init", "credentials are required", nil)
	}
	var settings resolverSettings
	for _, opt := range opts {
		opt(&settings)
	}
	var clientOpts []spotify.ClientOption
	if settings.baseURL != "" {
		if !strings.HasSuffix(settings.baseURL, "/") {
			settings.baseURL += "/"
		}
		clientOpts = append(clientOpts, spotify.WithBaseURL(settings.baseURL))
	}
	return &Resolver{
		client: spotify.New(creds.HTTPClient(), clientOpts...),
		logger: logging.NewComponentLogger(settings.logger, "catalog"),
	}, nil
}

// Resolve fetches the item behind rawURL and returns its records in provider
// order. Any failure aborts the whole call.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (track.Catalog, error) {
	ref, err := ParseURL(rawURL)
	if err != nil {
		return track.Catalog{}, err
	}
	return r.ResolveReference(ctx, ref)
}

// ResolveReference resolves an already parsed reference.
func (r *Resolver) ResolveReference(ctx context.Context, ref Reference) (track.Catalog, error) {
	var (
		result track.Catalog
		err    error
	)
	switch ref.Kind {
	case track.KindTrack:
		result, err = r.resolveTrack(ctx, ref)
	case track.KindAlbum:
		result, err = r.resolveAlbum(ctx, ref)
	case track.KindPlaylist:
		result, err = r.resolvePlaylist(ctx, ref)
	default:
		return track.Catalog{}, invalidURL(ref.String(), "unsupported kind")
	}
	if err != nil {
		logging.WarnWithContext(ctx, r.logger, "catalog resolution failed", "catalog_resolve_failed",
			logging.String("reference", ref.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return track.Catalog{}, err
	}
	result.Kind = ref.Kind
	result.ID = ref.ID
	result.SourceURL = ref.URL()
	r.logger.InfoContext(ctx, "catalog resolved",
		logging.String("kind", string(ref.Kind)),
		logging.String(logging.FieldCollection, result.CollectionName),
		logging.Int("records", result.Len()),
	)
	return result, nil
}

func (r *Resolver) resolveTrack(ctx context.Context, ref Reference) (track.Catalog, error) {
	full, err := r.client.GetTrack(ctx, spotify.ID(ref.ID))
	if err != nil {
		return track.Catalog{}, classify("get track", err)
	}
	rec, err := recordFromTrack("track", full.Name, full.Artists, full.Album.Name)
	if err != nil {
		return track.Catalog{}, err
	}
	return track.Catalog{CollectionName: rec.Title, Records: []track.Record{rec}}, nil
}

func (r *Resolver) resolveAlbum(ctx context.Context, ref Reference) (track.Catalog, error) {
	album, err := r.client.GetAlbum(ctx, spotify.ID(ref.ID))
	if err != nil {
		return track.Catalog{}, classify("get album", err)
	}
	if strings.TrimSpace(album.Name) == "" {
		return track.Catalog{}, malformed("album.name")
	}
	artist, err := firstArtist("album.artists", album.Artists)
	if err != nil {
		return track.Catalog{}, err
	}

	records := make([]track.Record, 0, album.Tracks.Total)
	page := &album.Tracks
	for {
		for _, item := range page.Tracks {
			path := fmt.Sprintf("album.tracks.items[%d].name", len(records))
			rec, err := track.NewRecord(item.Name, artist, album.Name)
			if err != nil {
				return track.Catalog{}, malformed(path)
			}
			records = append(records, rec)
		}
		done, err := pageDone("album tracks page", r.client.NextPage(ctx, page))
		if err != nil {
			return track.Catalog{}, err
		}
		if done {
			break
		}
		r.logger.DebugContext(ctx, "album page fetched", logging.Int("offset", int(page.Offset)))
	}
	return track.Catalog{CollectionName: album.Name, Records: records}, nil
}

func (r *Resolver) resolvePlaylist(ctx context.Context, ref Reference) (track.Catalog, error) {
	playlist, err := r.client.GetPlaylist(ctx, spotify.ID(ref.ID))
	if err != nil {
		return track.Catalog{}, classify("get playlist", err)
	}
	if strings.TrimSpace(playlist.Name) == "" {
		return track.Catalog{}, malformed("playlist.name")
	}

	records := make([]track.Record, 0, playlist.Tracks.Total)
	page := &playlist.Tracks
	for {
		for _, item := range page.Tracks {
			prefix := fmt.Sprintf("playlist.tracks.items[%d].track", len(records))
			if item.Track.ID == "" && item.Track.Name == "" {
				return track.Catalog{}, malformed(prefix)
			}
			rec, err := recordFromTrack(prefix, item.Track.Name, item.Track.Artists, item.Track.Album.Name)
			if err != nil {
				return track.Catalog{}, err
			}
			records = append(records, rec)
		}
		done, err := pageDone("playlist tracks page", r.client.NextPage(ctx, page))
		if err != nil {
			return track.Catalog{}, err
		}
		if done {
			break
		}
		r.logger.DebugContext(ctx, "playlist page fetched", logging.Int("offset", int(page.Offset)))
	}
	return track.Catalog{CollectionName: playlist.Name, Records: records}, nil
}

// pageDone interprets a NextPage error. done is true once the provider
// reports no further pages.
func pageDone(operation string, err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, spotify.ErrNoMorePages):
		return true, nil
	default:
		return true, classify(operation, err)
	}
}

func recordFromTrack(prefix, title string, artists []spotify.SimpleArtist, album string) (track.Record, error) {
	if strings.TrimSpace(title) == "" {
		return track.Record{}, malformed(prefix + ".name")
	}
	artist, err := firstArtist(prefix+".artists", artists)
	if err != nil {
		return track.Record{}, err
	}
	if strings.TrimSpace(album) == "" {
		return track.Record{}, malformed(prefix + ".album.name")
	}
	rec, err := track.NewRecord(title, artist, album)
	if err != nil {
		return track.Record{}, malformed(prefix)
	}
	return rec, nil
}

func firstArtist(path string, artists []spotify.SimpleArtist) (string, error) {
	if len(artists) == 0 {
		return "", malformed(path)
	}
	name := strings.TrimSpace(artists[0].Name)
	if name == "" {
		return "", malformed(path + "[0].name")
	}
	return name, nil
}

func malformed(path string) error {
	return services.Wrap(services.ErrMalformedResponse, "catalog", "decode", "missing or empty field "+path, nil)
}

// classify maps provider, token, and transport failures onto the resolution
// error markers.
func classify(operation string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return services.Wrap(services.ErrNetwork, "catalog", operation, "token endpoint unavailable", err)
		}
		return services.Wrap(services.ErrAuth, "catalog", operation, "credentials rejected", err)
	}

	if status, ok := apiStatus(err); ok {
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return services.Wrap(services.ErrAuth, "catalog", operation, fmt.Sprintf("http %d", status), err)
		case status == http.StatusNotFound || status == http.StatusBadRequest:
			return services.Wrap(services.ErrNotFound, "catalog", operation, fmt.Sprintf("http %d", status), err)
		default:
			return services.Wrap(services.ErrNetwork, "catalog", operation, fmt.Sprintf("http %d", status), err)
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return services.Wrap(services.ErrMalformedResponse, "catalog", operation, "undecodable response", err)
	}
	return services.Wrap(services.ErrNetwork, "catalog", operation, "request failed", err)
}

func apiStatus(err error) (int, bool) {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status, true
	}
	return 0, false
}
