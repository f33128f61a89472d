package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"tunepull/internal/logging"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

// Output containers.
const (
	ContainerM4A = "m4a"
	ContainerMP3 = "mp3"
)

// commandRunner runs name with stdin piped in and returns captured stderr.
type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Settings configures the tagger.
type Settings struct {
	Binary          string
	OutputContainer string
	AudioBitrate    string
	// Overwrite replaces existing outputs; when false an existing destination
	// is returned untouched.
	Overwrite bool
	Timeout   time.Duration
}

// TranscodeError carries ffmpeg's diagnostic output for a failed run.
type TranscodeError struct {
	Path       string
	ExitCode   int
	Diagnostic string
	Err        error
}

func (e *TranscodeError) Error() string {
	var b strings.Builder
	b.WriteString("ffmpeg failed")
	if e.Path != "" {
		fmt.Fprintf(&b, " for %s", e.Path)
	}
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Diagnostic != "" {
		b.WriteString(": ")
		b.WriteString(e.Diagnostic)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TranscodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrTranscodeFailed}
	}
	return []error{services.ErrTranscodeFailed, e.Err}
}

// Tagger writes audio buffers to disk with title/artist/album metadata.
type Tagger struct {
	settings Settings
	logger   *slog.Logger
	run      commandRunner
}

// NewTagger constructs a tagger.
func NewTagger(settings Settings, logger *slog.Logger) *Tagger {
	settings.Binary = strings.TrimSpace(settings.Binary)
	if settings.Binary == "" {
		settings.Binary = "ffmpeg"
	}
	settings.OutputContainer = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(settings.OutputContainer)), ".")
	if settings.OutputContainer != ContainerMP3 {
		settings.OutputContainer = ContainerM4A
	}
	if strings.TrimSpace(settings.AudioBitrate) == "" {
		settings.AudioBitrate = "192k"
	}
	return &Tagger{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "ffmpeg"),
		run:      defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Tagger) WithCommandRunner(r commandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Extension returns the file extension (without dot) of produced files.
func (t *Tagger) Extension() string {
	return t.settings.OutputContainer
}

// Overwrite reports whether existing outputs are replaced.
func (t *Tagger) Overwrite() bool {
	return t.settings.Overwrite
}

// Tag runs ffmpeg once, feeding buf on stdin, and writes dest. The output is
// produced in a temporary sibling and renamed into place on success.
func (t *Tagger) Tag(ctx context.Context, buf *track.AudioBuffer, rec track.Record, dest string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", services.Wrap(services.ErrTranscodeFailed, "ffmpeg", "tag", "destination path required", nil)
	}
	if !t.settings.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			t.logger.DebugContext(ctx, "output exists, skipping", logging.String("path", dest))
			return dest, nil
		}
	}
	if buf.Size() == 0 {
		return "", services.Wrap(services.ErrTranscodeFailed, "ffmpeg", "tag", "empty audio buffer", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, "ffmpeg", "tag", "create output directory", err)
	}

	tagCtx := ctx
	if t.settings.Timeout > 0 {
		var cancel context.CancelFunc
		tagCtx, cancel = context.WithTimeout(ctx, t.settings.Timeout)
		defer cancel()
	}

	tmpPath := filepath.Join(filepath.Dir(dest), ".tunepull-"+filepath.Base(dest)+".tmp")
	args := t.BuildArgs(buf, rec, tmpPath)
	t.logger.DebugContext(ctx, "executing ffmpeg",
		logging.String("path", dest),
		logging.String("source_container", buf.Container),
		logging.Int("bytes", buf.Size()),
	)

	stderr, err := t.run(tagCtx, buf.Data, t.settings.Binary, args...)
	diagnostic := strings.TrimSpace(string(stderr))
	if err != nil || diagnostic != "" {
		_ = os.Remove(tmpPath)
		tErr := &TranscodeError{Path: dest, Diagnostic: diagnostic, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			tErr.ExitCode = exitErr.ExitCode()
		}
		return "", tErr
	}

	if _, err := os.Stat(tmpPath); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, "ffmpeg", "tag", "ffmpeg did not produce output", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", services.Wrap(services.ErrTranscodeFailed, "ffmpeg", "tag", "move output into place", err)
	}
	return dest, nil
}

// BuildArgs constructs the ffmpeg arguments. Metadata values are passed as
// discrete argv entries; ffmpeg splits each pair at the first '='.
func (t *Tagger) BuildArgs(buf *track.AudioBuffer, rec track.Record, output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if in := inputFormat(buf.Container); in != "" {
		args = append(args, "-f", in)
	}
	args = append(args,
		"-i", "pipe:0",
		"-vn",
		"-map_metadata", "-1",
		"-metadata", "title="+rec.Title,
		"-metadata", "artist="+rec.Artist,
		"-metadata", "album="+rec.Album,
	)
	switch t.settings.OutputContainer {
	case ContainerMP3:
		args = append(args, "-c:a", "libmp3lame", "-b:a", t.settings.AudioBitrate, "-id3v2_version", "3", "-f", "mp3")
	default:
		if buf.Container == "mp4" {
			args = append(args, "-c:a", "copy")
		} else {
			args = append(args, "-c:a", "aac", "-b:a", t.settings.AudioBitrate)
		}
		args = append(args, "-f", "mp4")
	}
	return append(args, "-y", output)
}

func inputFormat(container string) string {
	switch strings.ToLower(container) {
	case "mp4", "m4a":
		return "mp4"
	case "webm", "matroska":
		return "matroska"
	default:
		return ""
	}
}

func defaultCommandRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
