package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"tunepull/internal/services"
)

// Credentials holds the client-credentials token source shared by every
// catalog request in the process. Build it once and inject it.
type Credentials struct {
	source  oauth2.TokenSource
	base    http.RoundTripper
	timeout time.Duration
}

// CredentialOption configures Credentials.
type CredentialOption func(*credentialSettings)

type credentialSettings struct {
	base    *http.Client
	timeout time.Duration
}

// WithBaseHTTPClient sets the HTTP client used for token and API requests.
func WithBaseHTTPClient(client *http.Client) CredentialOption {
	return func(s *credentialSettings) {
		if client != nil {
			s.base = client
		}
	}
}

// WithRequestTimeout bounds every catalog request.
func WithRequestTimeout(timeout time.Duration) CredentialOption {
	return func(s *credentialSettings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewCredentials builds the token source for the given application
// credentials. Tokens are fetched lazily and reused until expiry.
func NewCredentials(clientID, clientSecret, tokenURL string, opts ...CredentialOption) (*Credentials, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "credentials", "spotify client id and secret are required", nil)
	}
	tokenURL = strings.TrimSpace(tokenURL)
	if tokenURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "credentials", "token url is required", nil)
	}

	settings := credentialSettings{base: http.DefaultClient, timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, settings.base)

	base := settings.base.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Credentials{
		source:  oauth2.ReuseTokenSource(nil, cfg.TokenSource(tokenCtx)),
		base:    base,
		timeout: settings.timeout,
	}, nil
}

// HTTPClient returns a client that attaches a bearer token to each request.
func (c *Credentials) HTTPClient() *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{Source: c.source, Base: c.base},
		Timeout:   c.timeout,
	}
}

// Check performs the token exchange, reporting ErrAuth when the provider
// rejects the credentials.
func (c *Credentials) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrNetwork, "catalog", "token", "token exchange interrupted", err)
	}
	if _, err := c.source.Token(); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return classify("token", err)
		}
		return services.Wrap(services.ErrNetwork, "catalog", "token", "token endpoint unreachable", err)
	}
	return nil
}
