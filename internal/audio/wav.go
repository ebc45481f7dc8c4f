package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func decodeWAVFile(path string) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("decode wav %s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("decode wav %s: empty PCM buffer", path)
	}

	return &Clip{
		Data:       buf.Data,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(decoder.BitDepth),
	}, nil
}

func encodeWAVFile(clip *Clip, path string) error {
	depth := clip.BitDepth
	if depth <= 0 {
		depth = 16
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(file, clip.SampleRate, depth, clip.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:           clip.Data,
		SourceBitDepth: depth,
	}
	if err := encoder.Write(buf); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return file.Close()
}
