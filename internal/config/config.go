package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	EnvFile   string `toml:"env_file"`
}

// Spotify contains catalog API credentials and endpoints.
type Spotify struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TokenURL       string `toml:"token_url"`
	APIBaseURL     string `toml:"api_base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Search contains configuration for the yt-dlp backed media locator.
type Search struct {
	YtdlpBinary string `toml:"ytdlp_binary"`
	Timeout     int    `toml:"timeout"`
}

// Fetch contains configuration for audio stream selection and download.
type Fetch struct {
	Container      string `toml:"container"`
	BitrateKbps    int    `toml:"bitrate_kbps"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Tagging contains configuration for the ffmpeg tag/transcode step.
type Tagging struct {
	FFmpegBinary      string `toml:"ffmpeg_binary"`
	OutputContainer   string `toml:"output_container"`
	AudioBitrate      string `toml:"audio_bitrate"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
	Timeout           int    `toml:"timeout"`
}

// Library contains configuration for the on-disk track layout.
type Library struct {
	Naming      string `toml:"naming"`
	ArchiveName string `toml:"archive_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tunepull.
//
// Configuration sections by subsystem:
//   - Paths: output root, state directory, dotenv credentials file
//   - Spotify: catalog credentials and endpoints
//   - Search: yt-dlp locator
//   - Fetch: audio stream selection
//   - Tagging: ffmpeg tag/transcode step
//   - Library: file naming and archive name
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Spotify Spotify `toml:"spotify"`
	Search  Search  `toml:"search"`
	Fetch   Fetch   `toml:"fetch"`
	Tagging Tagging `toml:"tagging"`
	Library Library `toml:"library"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tunepull.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output root and state directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasSpotifyCredentials reports whether both client credentials are present.
func (c *Config) HasSpotifyCredentials() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// HistoryPath returns the sqlite run history location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the library write lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "library.lock")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "tunepull.log")
}

// SpotifyTimeout returns the catalog request timeout.
func (c *Config) SpotifyTimeout() time.Duration {
	return time.Duration(c.Spotify.RequestTimeout) * time.Second
}

// SearchTimeout returns the per-record locator timeout.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.Timeout) * time.Second
}

// FetchTimeout returns the per-record download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.RequestTimeout) * time.Second
}

// TaggingTimeout returns the per-record ffmpeg timeout.
func (c *Config) TaggingTimeout() time.Duration {
	return time.Duration(c.Tagging.Timeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
