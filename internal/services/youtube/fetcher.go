package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"tunepull/internal/logging"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

// VideoClient is the subset of the YouTube client the fetcher needs.
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

// Profile is the target audio stream profile.
type Profile struct {
	// Container is the preferred source container (mp4 or webm).
	Container string
	// BitrateKbps is the preferred upper bound for the stream bitrate.
	BitrateKbps int
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithClient injects a custom video client (primarily for tests).
func WithClient(client VideoClient) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logging.NewComponentLogger(logger, "youtube")
	}
}

// Fetcher downloads one audio-only stream per candidate into memory.
type Fetcher struct {
	client  VideoClient
	profile Profile
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a fetcher. timeout bounds metadata lookup plus download.
func New(profile Profile, timeout time.Duration, opts ...Option) *Fetcher {
	profile.Container = strings.ToLower(strings.TrimSpace(profile.Container))
	if profile.Container == "" {
		profile.Container = "mp4"
	}
	if profile.BitrateKbps <= 0 {
		profile.BitrateKbps = 128
	}
	f := &Fetcher{
		client:  &yt.Client{HTTPClient: &http.Client{}},
		profile: profile,
		timeout: timeout,
		logger:  logging.NewComponentLogger(nil, "youtube"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves the candidate's formats, picks an audio-only stream, and
// copies it fully into memory. No partial or resumable download is attempted.
func (f *Fetcher) Fetch(ctx context.Context, candidate track.Candidate) (*track.AudioBuffer, error) {
	ref := strings.TrimSpace(candidate.ID)
	if ref == "" {
		ref = strings.TrimSpace(candidate.URL)
	}
	if ref == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "fetch", "candidate has no id", nil)
	}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	video, err := f.client.GetVideoContext(fetchCtx, ref)
	if err != nil {
		return nil, classify("video metadata", err)
	}

	format, err := SelectFormat(video.Formats, f.profile)
	if err != nil {
		return nil, err
	}
	container := containerOf(format.MimeType)

	stream, size, err := f.client.GetStreamContext(fetchCtx, video, format)
	if err != nil {
		return nil, classify("open stream", err)
	}
	defer stream.Close()

	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, classify("download stream", err)
	}
	if buf.Len() == 0 {
		return nil, services.Wrap(services.ErrSourceUnavailable, "youtube", "download stream", "empty audio stream", nil)
	}

	f.logger.DebugContext(ctx, "audio stream downloaded",
		logging.String("video_id", video.ID),
		logging.Int("itag", format.ItagNo),
		logging.String("mime_type", format.MimeType),
		logging.Int("bitrate", formatBitrate(format)),
		logging.Int("bytes", buf.Len()),
	)
	return &track.AudioBuffer{
		Data:      buf.Bytes(),
		Container: container,
		MimeType:  format.MimeType,
		Bitrate:   formatBitrate(format),
	}, nil
}

// SelectFormat applies the stream selection policy: audio-only formats only;
// in the preferred container the highest bitrate at or below the target wins,
// else the lowest above it; without the preferred container, the highest
// bitrate audio-only stream in any supported container.
func SelectFormat(formats yt.FormatList, profile Profile) (*yt.Format, error) {
	limit := profile.BitrateKbps * 1000
	var (
		under, over, fallback *yt.Format
	)
	for i := range formats {
		format := &formats[i]
		container := containerOf(format.MimeType)
		if container == "" {
			continue
		}
		rate := formatBitrate(format)
		if fallback == nil || rate > formatBitrate(fallback) {
			fallback = format
		}
		if container != profile.Container {
			continue
		}
		if rate <= limit {
			if under == nil || rate > formatBitrate(under) {
				under = format
			}
			continue
		}
		if over == nil || rate < formatBitrate(over) {
			over = format
		}
	}
	switch {
	case under != nil:
		return under, nil
	case over != nil:
		return over, nil
	case fallback != nil:
		return fallback, nil
	default:
		return nil, services.Wrap(services.ErrSourceUnavailable, "youtube", "select format", "no audio-only stream", nil)
	}
}

// containerOf returns mp4 or webm for audio-only mime types, "" otherwise.
func containerOf(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(base) {
	case "audio/mp4":
		return "mp4"
	case "audio/webm":
		return "webm"
	default:
		return ""
	}
}

func formatBitrate(format *yt.Format) int {
	if format.AverageBitrate > 0 {
		return format.AverageBitrate
	}
	return format.Bitrate
}

func classify(operation string, err error) error {
	if unavailable(err) {
		return services.Wrap(services.ErrSourceUnavailable, "youtube", operation, "video not playable", err)
	}
	var status yt.ErrUnexpectedStatusCode
	if errors.As(err, &status) {
		switch int(status) {
		case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
			return services.Wrap(services.ErrSourceUnavailable, "youtube", operation, fmt.Sprintf("http %d", int(status)), err)
		}
	}
	return services.Wrap(services.ErrNetwork, "youtube", operation, "request failed", err)
}

func unavailable(err error) bool {
	if errors.Is(err, yt.ErrLoginRequired) ||
		errors.Is(err, yt.ErrVideoPrivate) ||
		errors.Is(err, yt.ErrNotPlayableInEmbed) ||
		errors.Is(err, yt.ErrInvalidCharactersInVideoID) ||
		errors.Is(err, yt.ErrVideoIDMinLength) {
		return true
	}
	var playability yt.ErrPlayabiltyStatus
	if errors.As(err, &playability) {
		return true
	}
	var playabilityPtr *yt.ErrPlayabiltyStatus
	return errors.As(err, &playabilityPtr)
}
