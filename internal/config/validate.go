package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable. Spotify credentials are not
// required here so library and history commands work without them; see
// ValidateSpotify.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateTagging(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateSpotify reports missing catalog credentials with a next step.
func (c *Config) ValidateSpotify() error {
	if c.HasSpotifyCredentials() {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("spotify.client_id and spotify.client_secret are required. Set %s / %s, add them to %s, or edit %s (create with 'tunepull config init')",
		EnvSpotifyClientID, EnvSpotifyClientSecret, c.Paths.EnvFile, defaultPath)
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if filepath.Clean(c.Paths.OutputDir) == filepath.Dir(c.Paths.OutputDir) {
		return fmt.Errorf("paths.output_dir %q must not be a filesystem root", c.Paths.OutputDir)
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	for key, value := range map[string]string{
		"spotify.token_url":    c.Spotify.TokenURL,
		"spotify.api_base_url": c.Spotify.APIBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	return ensurePositiveMap(map[string]int{
		"spotify.request_timeout": c.Spotify.RequestTimeout,
		"search.timeout":          c.Search.Timeout,
	})
}

func (c *Config) validateFetch() error {
	switch c.Fetch.Container {
	case "mp4", "webm":
	default:
		return fmt.Errorf("fetch.container must be mp4 or webm, got %q", c.Fetch.Container)
	}
	return ensurePositiveMap(map[string]int{
		"fetch.bitrate_kbps":    c.Fetch.BitrateKbps,
		"fetch.request_timeout": c.Fetch.RequestTimeout,
	})
}

func (c *Config) validateTagging() error {
	switch c.Tagging.OutputContainer {
	case ContainerM4A, ContainerMP3:
	default:
		return fmt.Errorf("tagging.output_container must be %s or %s, got %q", ContainerM4A, ContainerMP3, c.Tagging.OutputContainer)
	}
	if !strings.HasSuffix(c.Tagging.AudioBitrate, "k") {
		return fmt.Errorf("tagging.audio_bitrate must look like 192k, got %q", c.Tagging.AudioBitrate)
	}
	if c.Tagging.Timeout <= 0 {
		return errors.New("tagging.timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	switch c.Library.Naming {
	case NamingReadable, NamingSlug:
	default:
		return fmt.Errorf("library.naming must be %s or %s, got %q", NamingReadable, NamingSlug, c.Library.Naming)
	}
	if strings.ContainsAny(c.Library.ArchiveName, `/\`) {
		return fmt.Errorf("library.archive_name must be a file name, got %q", c.Library.ArchiveName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
