package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sys/unix"

	"tunepull/internal/catalog"
	"tunepull/internal/config"
	"tunepull/internal/deps"
	"tunepull/internal/services"
)

// CheckSpotify exchanges the configured client credentials for a token.
// Only the token endpoint is contacted.
func CheckSpotify(ctx context.Context, cfg *config.Config) Result {
	const name = "Spotify"

	if !cfg.HasSpotifyCredentials() {
		return Result{Name: name, Detail: "credentials missing"}
	}
	client := &http.Client{Timeout: cfg.SpotifyTimeout()}
	creds, err := catalog.NewCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.TokenURL,
		catalog.WithBaseHTTPClient(client), catalog.WithRequestTimeout(cfg.SpotifyTimeout()))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.SpotifyTimeout())
	defer cancel()
	if err := creds.Check(checkCtx); err != nil {
		if errors.Is(err, services.ErrAuth) {
			return Result{Name: name, Detail: "credentials rejected"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("token check failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "token issued"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps reports the external binaries configured in cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Tools(cfg.Tagging.FFmpegBinary, cfg.Search.YtdlpBinary))
}
