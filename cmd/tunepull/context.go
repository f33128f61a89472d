package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tunepull/internal/catalog"
	"tunepull/internal/config"
	"tunepull/internal/library"
	"tunepull/internal/logging"
	"tunepull/internal/pipeline"
	"tunepull/internal/services"
	"tunepull/internal/services/ffmpeg"
	"tunepull/internal/services/youtube"
	"tunepull/internal/services/ytdlp"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		echo := c.verboseFlag != nil && *c.verboseFlag
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, echo)
	})
	return c.logger, c.loggerErr
}

// newResolver builds the catalog resolver. Credentials are required here
// and nowhere else.
func (c *commandContext) newResolver() (*catalog.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateSpotify(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "credentials", "", err)
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	creds, err := catalog.NewCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.TokenURL,
		catalog.WithBaseHTTPClient(&http.Client{Timeout: cfg.SpotifyTimeout()}),
		catalog.WithRequestTimeout(cfg.SpotifyTimeout()),
	)
	if err != nil {
		return nil, err
	}
	return catalog.NewResolver(creds,
		catalog.WithBaseURL(cfg.Spotify.APIBaseURL),
		catalog.WithLogger(logger),
	)
}

// newPipeline wires the locator, fetcher, and tagger from config.
func (c *commandContext) newPipeline(overwrite bool, hook pipeline.ResultFunc) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	locator, err := ytdlp.New(cfg.Search.YtdlpBinary, cfg.SearchTimeout(), ytdlp.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build locator: %w", err)
	}
	fetcher := youtube.New(youtube.Profile{
		Container:   cfg.Fetch.Container,
		BitrateKbps: cfg.Fetch.BitrateKbps,
	}, cfg.FetchTimeout(), youtube.WithLogger(logger))
	tagger := ffmpeg.NewTagger(ffmpeg.Settings{
		Binary:          cfg.Tagging.FFmpegBinary,
		OutputContainer: cfg.Tagging.OutputContainer,
		AudioBitrate:    cfg.Tagging.AudioBitrate,
		Overwrite:       overwrite,
		Timeout:         cfg.TaggingTimeout(),
	}, logger)
	layout := library.NewLayout(cfg.Paths.OutputDir, cfg.Library.Naming, tagger.Extension())

	return pipeline.New(locator, fetcher, tagger, layout,
		pipeline.WithResultHook(hook),
		pipeline.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
