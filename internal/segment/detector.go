package segment

import (
	"github.com/PheelaV/kr-notebook/internal/audio"
)

// Interval is a non-silent region of a recording in milliseconds from its
// start.
type Interval struct {
	StartMS int64
	EndMS   int64
}

// DurationMS returns the interval length.
func (iv Interval) DurationMS() int64 {
	return iv.EndMS - iv.StartMS
}

// DetectIntervals scans clip in fixed windows of resolutionMS and returns
// the loud regions, in chronological order. A window is loud when its RMS
// level exceeds thresholdDBFS. Consecutive loud windows form one interval;
// a quiet stretch of at least minSilenceMS closes the current interval,
// while shorter dips are absorbed into it. Identical input always yields
// identical intervals.
func DetectIntervals(clip *audio.Clip, minSilenceMS int, thresholdDBFS float64, resolutionMS int) []Interval {
	if clip == nil || clip.FrameCount() == 0 || resolutionMS <= 0 || clip.SampleRate <= 0 {
		return nil
	}
	framesPerWindow := clip.SampleRate * resolutionMS / 1000
	if framesPerWindow <= 0 {
		return nil
	}

	frames := clip.FrameCount()
	durationMS := clip.DurationMS()
	minSilence := int64(minSilenceMS)

	var intervals []Interval
	openStart := int64(-1)
	lastLoudEnd := int64(-1)
	for offset := 0; offset < frames; offset += framesPerWindow {
		end := offset + framesPerWindow
		if end > frames {
			end = frames
		}
		if clip.RMSdBFS(offset, end) <= thresholdDBFS {
			continue
		}

		windowStart := int64(offset) * 1000 / int64(clip.SampleRate)
		windowEnd := int64(end) * 1000 / int64(clip.SampleRate)
		if windowEnd > durationMS {
			windowEnd = durationMS
		}
		switch {
		case openStart < 0:
			openStart = windowStart
		case windowStart-lastLoudEnd >= minSilence:
			intervals = append(intervals, Interval{StartMS: openStart, EndMS: lastLoudEnd})
			openStart = windowStart
		}
		lastLoudEnd = windowEnd
	}
	if openStart >= 0 {
		intervals = append(intervals, Interval{StartMS: openStart, EndMS: lastLoudEnd})
	}
	return intervals
}
