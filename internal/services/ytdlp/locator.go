package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tunepull/internal/logging"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) (stdout []byte, stderr []byte, err error)
}

// Option configures the locator.
type Option func(*Locator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(l *Locator) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// WithLogger sets the locator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		l.logger = logging.NewComponentLogger(logger, "ytdlp")
	}
}

// Locator finds a playable video for a record by asking yt-dlp for the top
// search hit. The hit is not verified against the record.
type Locator struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a locator around the yt-dlp binary.
func New(binary string, timeout time.Duration, opts ...Option) (*Locator, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	l := &Locator{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewComponentLogger(nil, "ytdlp"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// SearchArgs returns the yt-dlp arguments used to search for query.
func SearchArgs(query string) []string {
	return []string{
		"--ignore-config",
		"--no-warnings",
		"--flat-playlist",
		"--dump-single-json",
		"ytsearch1:" + query,
	}
}

// Locate searches for "<artist> <title>" and returns the first ranked hit.
func (l *Locator) Locate(ctx context.Context, rec track.Record) (track.Candidate, error) {
	query := rec.SearchQuery()
	if query == "" {
		return track.Candidate{}, services.Wrap(services.ErrValidation, "ytdlp", "locate", "empty search query", nil)
	}

	searchCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	stdout, stderr, err := l.exec.Output(searchCtx, l.binary, SearchArgs(query))
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		switch {
		case errors.Is(err, exec.ErrNotFound):
			detail = fmt.Sprintf("%s not found on PATH", l.binary)
		case errors.Is(searchCtx.Err(), context.DeadlineExceeded):
			detail = fmt.Sprintf("search timed out after %s", l.timeout)
		case detail == "":
			detail = "search failed"
		}
		return track.Candidate{}, services.Wrap(services.ErrLocatorUnavailable, "ytdlp", "locate", detail, err)
	}

	candidate, err := parseSearch(stdout)
	if err != nil {
		return track.Candidate{}, err
	}
	l.logger.DebugContext(ctx, "search hit",
		logging.String("query", query),
		logging.String("video_id", candidate.ID),
		logging.String("video_title", candidate.Title),
	)
	return candidate, nil
}

func parseSearch(payload []byte) (track.Candidate, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || !gjson.ValidBytes(payload) {
		return track.Candidate{}, services.Wrap(services.ErrLocatorUnavailable, "ytdlp", "parse", "unparsable search output", nil)
	}
	doc := gjson.ParseBytes(payload)
	entries := doc.Get("entries")
	if !entries.IsArray() || len(entries.Array()) == 0 {
		return track.Candidate{}, services.Wrap(services.ErrNoCandidate, "ytdlp", "parse", "search returned no results", nil)
	}

	first := entries.Array()[0]
	id := strings.TrimSpace(first.Get("id").String())
	if id == "" {
		return track.Candidate{}, services.Wrap(services.ErrNoCandidate, "ytdlp", "parse", "top result has no video id", nil)
	}
	url := strings.TrimSpace(first.Get("url").String())
	if !strings.HasPrefix(url, "http") {
		url = watchURLPrefix + id
	}
	channel := first.Get("channel").String()
	if channel == "" {
		channel = first.Get("uploader").String()
	}
	return track.Candidate{
		ID:       id,
		Title:    first.Get("title").String(),
		URL:      url,
		Channel:  channel,
		Duration: time.Duration(first.Get("duration").Float() * float64(time.Second)),
	}, nil
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
