package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PheelaV/kr-notebook/internal/audio"
	"github.com/PheelaV/kr-notebook/internal/fileutil"
)

type fakeExecutor struct {
	calls   [][]string
	handler func(binary string, args []string) error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string, _ func(string)) error {
	f.calls = append(f.calls, append([]string{binary}, args...))
	if f.handler != nil {
		return f.handler(binary, args)
	}
	return nil
}

func testClip() *audio.Clip {
	data := make([]int, 1600)
	for i := range data {
		if i%2 == 0 {
			data[i] = 12000
		} else {
			data[i] = -12000
		}
	}
	return &audio.Clip{Data: data, SampleRate: 8000, Channels: 1, BitDepth: 16}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := audio.New("   "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	codec, err := audio.New("ffmpeg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	want := testClip()

	if err := codec.Encode(context.Background(), want, path); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := codec.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SampleRate != want.SampleRate || got.Channels != want.Channels {
		t.Fatalf("format mismatch: got %d/%d, want %d/%d",
			got.SampleRate, got.Channels, want.SampleRate, want.Channels)
	}
	if len(got.Data) != len(want.Data) {
		t.Fatalf("sample count: got %d, want %d", len(got.Data), len(want.Data))
	}
	for i := range got.Data {
		if got.Data[i] != want.Data[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got.Data[i], want.Data[i])
		}
	}
}

func TestWAVPathsNeverInvokeExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	codec, err := audio.New("ffmpeg", audio.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := codec.Encode(context.Background(), testClip(), path); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := codec.Decode(context.Background(), path); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("executor invoked %d times for WAV files", len(exec.calls))
	}
}

func TestDecodeMP3ViaFFmpeg(t *testing.T) {
	dir := t.TempDir()

	// Stage a real WAV fixture the fake ffmpeg will "produce".
	fixture := filepath.Join(dir, "fixture.wav")
	native, err := audio.New("ffmpeg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := native.Encode(context.Background(), testClip(), fixture); err != nil {
		t.Fatalf("stage fixture: %v", err)
	}

	mp3 := filepath.Join(dir, "row_b.mp3")
	if err := os.WriteFile(mp3, []byte("not really mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{handler: func(_ string, args []string) error {
		out := args[len(args)-1]
		return fileutil.CopyFile(fixture, out)
	}}
	codec, err := audio.New("ffmpeg", audio.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clip, err := codec.Decode(context.Background(), mp3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.SampleRate != 8000 || clip.FrameCount() != 1600 {
		t.Fatalf("decoded clip %d Hz / %d frames, want 8000/1600", clip.SampleRate, clip.FrameCount())
	}

	if len(exec.calls) != 1 {
		t.Fatalf("executor invoked %d times, want 1", len(exec.calls))
	}
	call := strings.Join(exec.calls[0], " ")
	if !strings.Contains(call, "-i "+mp3) {
		t.Fatalf("ffmpeg args missing input: %s", call)
	}
	if !strings.Contains(call, "-f wav") {
		t.Fatalf("ffmpeg args missing wav output format: %s", call)
	}
}

func TestDecodeMissingFileSkipsFFmpeg(t *testing.T) {
	exec := &fakeExecutor{}
	codec, err := audio.New("ffmpeg", audio.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := codec.Decode(context.Background(), filepath.Join(t.TempDir(), "absent.mp3")); err == nil {
		t.Fatal("expected error for missing input")
	}
	if len(exec.calls) != 0 {
		t.Fatal("executor should not run for a missing input file")
	}
}

func TestEncodeMP3ViaFFmpeg(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ga.mp3")

	exec := &fakeExecutor{handler: func(_ string, args []string) error {
		// The staged WAV intermediate must exist when ffmpeg runs.
		var input string
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) {
				input = args[i+1]
			}
		}
		if input == "" {
			return errors.New("no -i argument")
		}
		if _, err := os.Stat(input); err != nil {
			return err
		}
		return os.WriteFile(args[len(args)-1], []byte("mp3 bytes"), 0o644)
	}}
	codec, err := audio.New("ffmpeg", audio.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := codec.Encode(context.Background(), testClip(), out); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output clip: %v", err)
	}
	call := strings.Join(exec.calls[0], " ")
	if !strings.Contains(call, "libmp3lame") {
		t.Fatalf("expected mp3 encoder args, got %s", call)
	}
}

func TestEncodeFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ga.mp3")

	exec := &fakeExecutor{handler: func(_ string, args []string) error {
		if err := os.WriteFile(args[len(args)-1], []byte("partial"), 0o644); err != nil {
			return err
		}
		return errors.New("encoder exploded")
	}}
	codec, err := audio.New("ffmpeg", audio.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := codec.Encode(context.Background(), testClip(), out); err == nil {
		t.Fatal("expected encode error")
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial output should be removed, stat err = %v", err)
	}
}

func TestEncodeRejectsEmptyClip(t *testing.T) {
	codec, err := audio.New("ffmpeg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	empty := &audio.Clip{SampleRate: 8000, Channels: 1, BitDepth: 16}
	if err := codec.Encode(context.Background(), empty, filepath.Join(t.TempDir(), "x.wav")); err == nil {
		t.Fatal("expected error for empty clip")
	}
}
