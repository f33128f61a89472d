package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"tunepull/internal/services"
	"tunepull/internal/track"
)

type fakeRunner struct {
	calls  int
	stdin  []byte
	args   []string
	stderr string
	err    error
	write  bool
}

func (f *fakeRunner) run(_ context.Context, stdin []byte, _ string, args ...string) ([]byte, error) {
	f.calls++
	f.stdin = append([]byte(nil), stdin...)
	f.args = append([]string(nil), args...)
	if f.write {
		if err := os.WriteFile(args[len(args)-1], []byte("tagged:"+string(stdin)), 0o644); err != nil {
			return nil, err
		}
	}
	return []byte(f.stderr), f.err
}

var rec = track.Record{Title: `Song "A" = B`, Artist: "Artist; Name", Album: "Album"}

func newTestTagger(settings Settings, runner *fakeRunner) *Tagger {
	tagger := NewTagger(settings, nil)
	tagger.WithCommandRunner(runner.run)
	return tagger
}

func TestTagWritesOutputAndPassesMetadataAsArgv(t *testing.T) {
	runner := &fakeRunner{write: true}
	tagger := newTestTagger(Settings{OutputContainer: "m4a"}, runner)
	dest := filepath.Join(t.TempDir(), "Album", "Artist; Name - Song.m4a")

	got, err := tagger.Tag(context.Background(), &track.AudioBuffer{Data: []byte("pcm"), Container: "mp4"}, rec, dest)
	if err != nil {
		t.Fatalf("Tag returned error: %v", err)
	}
	if got != dest {
		t.Fatalf("unexpected path %q", got)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "tagged:pcm" {
		t.Fatalf("unexpected output %q", data)
	}
	for _, want := range []string{`title=Song "A" = B`, "artist=Artist; Name", "album=Album"} {
		if !slices.Contains(runner.args, want) {
			t.Fatalf("expected argv entry %q in %v", want, runner.args)
		}
	}
	if !slices.Contains(runner.args, "copy") {
		t.Fatalf("expected stream copy for mp4 source, got %v", runner.args)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(dest), ".tunepull-*"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestBuildArgsTranscodes(t *testing.T) {
	m4a := NewTagger(Settings{OutputContainer: "m4a", AudioBitrate: "160k"}, nil)
	args := m4a.BuildArgs(&track.AudioBuffer{Container: "webm"}, rec, "out")
	if !slices.Contains(args, "aac") || !slices.Contains(args, "160k") || !slices.Contains(args, "matroska") {
		t.Fatalf("expected aac transcode from matroska input, got %v", args)
	}

	mp3 := NewTagger(Settings{OutputContainer: ".MP3"}, nil)
	if mp3.Extension() != ContainerMP3 {
		t.Fatalf("unexpected extension %q", mp3.Extension())
	}
	args = mp3.BuildArgs(&track.AudioBuffer{Container: "mp4"}, rec, "out")
	if !slices.Contains(args, "libmp3lame") || slices.Contains(args, "copy") {
		t.Fatalf("expected mp3 encode, got %v", args)
	}
}

func TestTagFailsOnStderrOutput(t *testing.T) {
	runner := &fakeRunner{stderr: "pipe:0: Invalid data found when processing input\n"}
	tagger := newTestTagger(Settings{}, runner)
	dest := filepath.Join(t.TempDir(), "x.m4a")

	_, err := tagger.Tag(context.Background(), &track.AudioBuffer{Data: []byte("junk"), Container: "mp4"}, rec, dest)
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
	var tErr *TranscodeError
	if !errors.As(err, &tErr) || tErr.Diagnostic != "pipe:0: Invalid data found when processing input" {
		t.Fatalf("expected diagnostic to be carried, got %#v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output on failure, stat err %v", statErr)
	}
}

func TestTagFailsOnNonzeroExit(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	tagger := newTestTagger(Settings{}, runner)
	_, err := tagger.Tag(context.Background(), &track.AudioBuffer{Data: []byte("x"), Container: "mp4"}, rec, filepath.Join(t.TempDir(), "x.m4a"))
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
}

func TestTagSkipsExistingUnlessOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "x.m4a")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	buf := &track.AudioBuffer{Data: []byte("new"), Container: "mp4"}

	skip := &fakeRunner{write: true}
	if _, err := newTestTagger(Settings{}, skip).Tag(context.Background(), buf, rec, dest); err != nil {
		t.Fatalf("Tag returned error: %v", err)
	}
	if skip.calls != 0 {
		t.Fatalf("expected ffmpeg not to run for existing output, got %d calls", skip.calls)
	}

	overwrite := &fakeRunner{write: true}
	if _, err := newTestTagger(Settings{Overwrite: true}, overwrite).Tag(context.Background(), buf, rec, dest); err != nil {
		t.Fatalf("Tag returned error: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if overwrite.calls != 1 || string(data) != "tagged:new" {
		t.Fatalf("expected output to be replaced, calls=%d data=%q", overwrite.calls, data)
	}
}

func TestTagRejectsEmptyBuffer(t *testing.T) {
	runner := &fakeRunner{}
	_, err := newTestTagger(Settings{}, runner).Tag(context.Background(), &track.AudioBuffer{}, rec, filepath.Join(t.TempDir(), "x.m4a"))
	if !errors.Is(err, services.ErrTranscodeFailed) || runner.calls != 0 {
		t.Fatalf("expected early failure, got %v (calls %d)", err, runner.calls)
	}
}
