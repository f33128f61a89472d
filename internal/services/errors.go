package services

import (
	"errors"
	"fmt"
	"strings"

	"tunepull/internal/track"
)

// Resolution-stage markers. Any of these aborts the whole resolve call.
var (
	ErrInvalidURL        = errors.New("invalid catalog url")
	ErrAuth              = errors.New("catalog authentication failed")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Fetch-stage markers. These are isolated to the failing record.
var (
	ErrNoCandidate        = errors.New("no candidate found")
	ErrLocatorUnavailable = errors.New("locator unavailable")
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrNetwork            = errors.New("network error")
	ErrTranscodeFailed    = errors.New("transcode failed")
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// OutcomeFor maps a fetch-stage error to the outcome recorded for the record.
// A nil error is a success.
func OutcomeFor(err error) track.Outcome {
	switch {
	case err == nil:
		return track.OutcomeSuccess
	case errors.Is(err, ErrNoCandidate), errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrNotFound):
		return track.OutcomeNotFound
	case errors.Is(err, ErrLocatorUnavailable), errors.Is(err, ErrNetwork):
		return track.OutcomeNetworkError
	default:
		return track.OutcomeTranscodeFailed
	}
}

// IsResolutionError reports whether err carries one of the resolution markers.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMalformedResponse)
}

// Hint returns a short next step for an error, suitable for CLI output.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "paste an open.spotify.com track, album, or playlist link"
	case errors.Is(err, ErrAuth):
		return "check spotify.client_id / spotify.client_secret (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)"
	case errors.Is(err, ErrConfiguration):
		return "run 'tunepull config validate'"
	case errors.Is(err, ErrLocatorUnavailable):
		return "verify yt-dlp is installed ('tunepull status')"
	case errors.Is(err, ErrTranscodeFailed):
		return "verify ffmpeg is installed ('tunepull status')"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
