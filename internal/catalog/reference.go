package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"tunepull/internal/services"
	"tunepull/internal/track"
)

const (
	openBaseURL  = "https://open.spotify.com"
	embedBaseURL = openBaseURL + "/embed"
)

// Reference identifies one catalog item by kind and provider id.
type Reference struct {
	Kind track.Kind
	ID   string
}

// ParseURL accepts share links shaped like .../<kind>/<id>, including locale
// prefixes (open.spotify.com/intl-de/album/<id>) and query strings, as well as
// spotify:<kind>:<id> URIs.
func ParseURL(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, invalidURL(raw, "empty url")
	}

	if rest, ok := strings.CutPrefix(raw, "spotify:"); ok {
		parts := strings.Split(rest, ":")
		if len(parts) != 2 {
			return Reference{}, invalidURL(raw, "expected spotify:<kind>:<id>")
		}
		return newReference(raw, parts[0], parts[1])
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Reference{}, invalidURL(raw, err.Error())
	}

	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) < 2 {
		return Reference{}, invalidURL(raw, "expected .../<kind>/<id>")
	}
	return newReference(raw, segments[len(segments)-2], segments[len(segments)-1])
}

func newReference(raw, kindValue, id string) (Reference, error) {
	kind, ok := track.ParseKind(kindValue)
	if !ok {
		return Reference{}, invalidURL(raw, fmt.Sprintf("unsupported kind %q", kindValue))
	}
	if !validID(id) {
		return Reference{}, invalidURL(raw, fmt.Sprintf("malformed id %q", id))
	}
	return Reference{Kind: kind, ID: id}, nil
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

func invalidURL(raw, reason string) error {
	return services.Wrap(services.ErrInvalidURL, "catalog", "parse url", fmt.Sprintf("%q: %s", raw, reason), nil)
}

// URL returns the canonical share link.
func (r Reference) URL() string {
	return fmt.Sprintf("%s/%s/%s", openBaseURL, r.Kind, r.ID)
}

// EmbedURL returns the embeddable player link for the item.
func (r Reference) EmbedURL() string {
	return fmt.Sprintf("%s/%s/%s", embedBaseURL, r.Kind, r.ID)
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
