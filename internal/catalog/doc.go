// Package catalog resolves Spotify share links into ordered track records.
//
// ParseURL validates the link shape and yields a Reference (kind + id) that
// also renders the canonical and embeddable player URLs. Credentials wraps the
// OAuth2 client-credentials flow and is built once per process; Resolver uses
// it with the zmb3/spotify client to fetch tracks, albums (artist and album
// taken from the album header), and playlists, following pagination until the
// provider reports no further pages.
//
// Failures are tagged with the services resolution markers: ErrInvalidURL,
// ErrAuth, ErrNotFound, ErrMalformedResponse (naming the missing field path),
// and ErrNetwork.
package catalog
