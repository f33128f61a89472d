package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSpotify(); err != nil {
		return err
	}
	c.normalizeSearch()
	c.normalizeFetch()
	c.normalizeTagging()
	c.normalizeLibrary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	return nil
}

// normalizeSpotify resolves credentials with precedence config file, then
// process environment, then the dotenv file.
func (c *Config) normalizeSpotify() error {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)

	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv(EnvSpotifyClientID); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv(EnvSpotifyClientSecret); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}

	if (c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "") && c.Paths.EnvFile != "" {
		values, err := readEnvFile(c.Paths.EnvFile)
		if err != nil {
			return fmt.Errorf("paths.env_file: %w", err)
		}
		if c.Spotify.ClientID == "" {
			c.Spotify.ClientID = strings.TrimSpace(values[EnvSpotifyClientID])
		}
		if c.Spotify.ClientSecret == "" {
			c.Spotify.ClientSecret = strings.TrimSpace(values[EnvSpotifyClientSecret])
		}
	}

	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	c.Spotify.APIBaseURL = strings.TrimSpace(c.Spotify.APIBaseURL)
	if c.Spotify.APIBaseURL == "" {
		c.Spotify.APIBaseURL = defaultSpotifyAPIBaseURL
	}
	if !strings.HasSuffix(c.Spotify.APIBaseURL, "/") {
		c.Spotify.APIBaseURL += "/"
	}
	if c.Spotify.RequestTimeout <= 0 {
		c.Spotify.RequestTimeout = defaultSpotifyTimeout
	}
	return nil
}

// readEnvFile parses a dotenv file without touching the process environment.
// A missing file yields no values.
func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return values, nil
}

func (c *Config) normalizeSearch() {
	c.Search.YtdlpBinary = strings.TrimSpace(c.Search.YtdlpBinary)
	if c.Search.YtdlpBinary == "" {
		c.Search.YtdlpBinary = defaultYtdlpBinary
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = defaultSearchTimeout
	}
}

func (c *Config) normalizeFetch() {
	c.Fetch.Container = strings.ToLower(strings.TrimSpace(c.Fetch.Container))
	if c.Fetch.Container == "" {
		c.Fetch.Container = defaultFetchContainer
	}
	if c.Fetch.BitrateKbps <= 0 {
		c.Fetch.BitrateKbps = defaultFetchBitrateKbps
	}
	if c.Fetch.RequestTimeout <= 0 {
		c.Fetch.RequestTimeout = defaultFetchTimeout
	}
}

func (c *Config) normalizeTagging() {
	c.Tagging.FFmpegBinary = strings.TrimSpace(c.Tagging.FFmpegBinary)
	if c.Tagging.FFmpegBinary == "" {
		c.Tagging.FFmpegBinary = defaultFFmpegBinary
	}
	c.Tagging.OutputContainer = strings.ToLower(strings.TrimSpace(c.Tagging.OutputContainer))
	c.Tagging.OutputContainer = strings.TrimPrefix(c.Tagging.OutputContainer, ".")
	if c.Tagging.OutputContainer == "" {
		c.Tagging.OutputContainer = defaultOutputContainer
	}
	c.Tagging.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Tagging.AudioBitrate))
	if c.Tagging.AudioBitrate == "" {
		c.Tagging.AudioBitrate = defaultAudioBitrate
	}
	if c.Tagging.Timeout <= 0 {
		c.Tagging.Timeout = defaultTaggingTimeout
	}
}

func (c *Config) normalizeLibrary() {
	c.Library.Naming = strings.ToLower(strings.TrimSpace(c.Library.Naming))
	if c.Library.Naming == "" {
		c.Library.Naming = defaultNaming
	}
	c.Library.ArchiveName = strings.TrimSpace(c.Library.ArchiveName)
	if c.Library.ArchiveName == "" {
		c.Library.ArchiveName = defaultArchiveName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
