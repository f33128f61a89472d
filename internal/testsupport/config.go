package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tunepull/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Credentials
// are left empty unless WithSpotifyCredentials is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "music")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.EnvFile = filepath.Join(base, "missing.env")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSpotifyCredentials sets client credentials and, when baseURL is not
// empty, points the token and API endpoints at a local fake.
func WithSpotifyCredentials(id, secret, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.ClientID = id
		b.cfg.Spotify.ClientSecret = secret
		if baseURL != "" {
			b.cfg.Spotify.TokenURL = baseURL + "/token"
			b.cfg.Spotify.APIBaseURL = baseURL + "/v1/"
		}
	}
}

// WithOutputContainer selects the tagger's output container.
func WithOutputContainer(container string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tagging.OutputContainer = container
	}
}

// WithStubbedBinaries writes stub executables for the given names and
// prepends them to PATH. With no names, ffmpeg and yt-dlp are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Tagging.FFmpegBinary, b.cfg.Search.YtdlpBinary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
