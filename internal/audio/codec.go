package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PheelaV/kr-notebook/internal/logging"
)

// Option configures the codec.
type Option func(*Codec)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Codec) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for ffmpeg diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "audio")
		}
	}
}

// Codec reads recordings into PCM clips and writes clips out, choosing
// between the native WAV path and ffmpeg by file extension.
type Codec struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// New constructs a codec around the given ffmpeg binary. The binary is
// only invoked for non-WAV files.
func New(binary string, opts ...Option) (*Codec, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	codec := &Codec{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

// Decode reads path into a PCM clip.
func (c *Codec) Decode(ctx context.Context, path string) (*Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAVFile(path)
	default:
		return c.decodeViaFFmpeg(ctx, path)
	}
}

// Encode writes clip to path. MP3 output goes through ffmpeg; WAV is
// written natively. A failed write never leaves a partial file behind.
func (c *Codec) Encode(ctx context.Context, clip *Clip, path string) error {
	if clip == nil || len(clip.Data) == 0 {
		return fmt.Errorf("encode %s: empty clip", filepath.Base(path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return encodeWAVFile(clip, path)
	default:
		return c.encodeViaFFmpeg(ctx, clip, path)
	}
}

func (c *Codec) decodeViaFFmpeg(ctx context.Context, path string) (*Clip, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "kr-notebook-audio-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpWAV := filepath.Join(tmpDir, "decoded.wav")
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", path, "-f", "wav", tmpWAV}
	if err := c.run(ctx, args); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", filepath.Base(path), err)
	}

	return decodeWAVFile(tmpWAV)
}

func (c *Codec) encodeViaFFmpeg(ctx context.Context, clip *Clip, path string) error {
	tmpDir, err := os.MkdirTemp("", "kr-notebook-audio-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpWAV := filepath.Join(tmpDir, "clip.wav")
	if err := encodeWAVFile(clip, tmpWAV); err != nil {
		return err
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", tmpWAV}
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		args = append(args, "-codec:a", "libmp3lame", "-q:a", "2")
	}
	args = append(args, path)
	if err := c.run(ctx, args); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("ffmpeg encode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Codec) run(ctx context.Context, args []string) error {
	var diagnostics []string
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		diagnostics = append(diagnostics, line)
		c.logger.Debug("ffmpeg output", logging.String("line", line))
	})
	if err != nil && len(diagnostics) > 0 {
		return fmt.Errorf("%w: %s", err, strings.Join(diagnostics, "; "))
	}
	return err
}
