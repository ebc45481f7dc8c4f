package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PheelaV/kr-notebook/internal/audio"
)

// Span describes one stretch of synthetic audio.
type Span struct {
	DurationMS int
	Loud       bool
}

// Speech returns a loud span of the given length.
func Speech(durationMS int) Span {
	return Span{DurationMS: durationMS, Loud: true}
}

// Silence returns a quiet span of the given length.
func Silence(durationMS int) Span {
	return Span{DurationMS: durationMS, Loud: false}
}

// ToneClip builds a mono 16-bit clip at sampleRate from the given spans.
// Loud spans carry a constant-amplitude tone far above any realistic
// silence threshold; quiet spans are digital silence.
func ToneClip(sampleRate int, spans ...Span) *audio.Clip {
	clip := &audio.Clip{SampleRate: sampleRate, Channels: 1, BitDepth: 16}
	for _, span := range spans {
		frames := sampleRate * span.DurationMS / 1000
		for i := 0; i < frames; i++ {
			value := 0
			if span.Loud {
				value = 16000
				if i%2 == 1 {
					value = -16000
				}
			}
			clip.Data = append(clip.Data, value)
		}
	}
	return clip
}

// WriteWAV encodes clip to path, creating parent directories first.
func WriteWAV(t testing.TB, path string, clip *audio.Clip) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	codec, err := audio.New("ffmpeg")
	if err != nil {
		t.Fatalf("audio.New: %v", err)
	}
	if err := codec.Encode(context.Background(), clip, path); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
