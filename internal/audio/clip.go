package audio

import "math"

// Clip is a decoded PCM buffer. Data holds interleaved samples, one int
// per channel per frame, scaled to the source bit depth.
type Clip struct {
	Data       []int
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameCount returns the number of sample frames in the clip.
func (c *Clip) FrameCount() int {
	if c == nil || c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// DurationMS returns the clip length in whole milliseconds.
func (c *Clip) DurationMS() int64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return int64(c.FrameCount()) * 1000 / int64(c.SampleRate)
}

// FrameAt converts a millisecond offset to a frame index clamped to the
// clip bounds.
func (c *Clip) FrameAt(ms int64) int {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	frame := int(ms * int64(c.SampleRate) / 1000)
	if frame < 0 {
		return 0
	}
	if frames := c.FrameCount(); frame > frames {
		return frames
	}
	return frame
}

// SliceMS returns the window [startMS, endMS) as a clip sharing the
// underlying sample data. Out-of-range bounds are clamped; an inverted
// window yields an empty clip with the same format.
func (c *Clip) SliceMS(startMS, endMS int64) *Clip {
	out := &Clip{SampleRate: c.SampleRate, Channels: c.Channels, BitDepth: c.BitDepth}
	start := c.FrameAt(startMS)
	end := c.FrameAt(endMS)
	if end <= start {
		return out
	}
	out.Data = c.Data[start*c.Channels : end*c.Channels]
	return out
}

// RMSdBFS computes the RMS loudness of the frame range [startFrame,
// endFrame) relative to digital full scale. Pure silence returns -Inf.
func (c *Clip) RMSdBFS(startFrame, endFrame int) float64 {
	if c == nil || c.Channels <= 0 {
		return math.Inf(-1)
	}
	frames := c.FrameCount()
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > frames {
		endFrame = frames
	}
	if endFrame <= startFrame {
		return math.Inf(-1)
	}

	var sum float64
	lo := startFrame * c.Channels
	hi := endFrame * c.Channels
	for _, sample := range c.Data[lo:hi] {
		v := float64(sample)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(hi-lo))
	if rms == 0 {
		return math.Inf(-1)
	}

	depth := c.BitDepth
	if depth <= 0 {
		depth = 16
	}
	fullScale := float64(int64(1) << (depth - 1))
	return 20 * math.Log10(rms/fullScale)
}
