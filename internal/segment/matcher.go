package segment

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/PheelaV/kr-notebook/internal/audio"
	"github.com/PheelaV/kr-notebook/internal/hangul"
	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// clipDirName is the lesson subdirectory that holds extracted syllable
// clips.
const clipDirName = "syllables"

// Result captures the segmentation outcome for one recording.
type Result struct {
	Label     string
	Kind      manifest.Kind
	SourceKey string
	// Expected is the number of syllables the recording should contain.
	Expected int
	// Found counts detected candidate segments before skips discarded
	// any, so mismatch reports show what the detector actually saw.
	Found    int
	Mismatch bool
	// Overrides describes the non-default parameters applied, if any.
	Overrides string
	Params    Params
	// Clips lists the extracted syllable clips in recording order.
	Clips []SavedClip
	// Err records a per-recording failure during a batch run.
	Err error
}

// Saved returns the number of clips written for this recording.
func (r Result) Saved() int {
	return len(r.Clips)
}

// SavedClip records one extracted syllable clip and its timing.
type SavedClip struct {
	Syllable string
	File     string
	Window   manifest.TimeRange
}

// Matcher extracts syllable clips from lesson recordings.
type Matcher struct {
	codec  *audio.Codec
	logger *slog.Logger
}

// NewMatcher returns a matcher that decodes and encodes audio through
// codec.
func NewMatcher(codec *audio.Codec, logger *slog.Logger) *Matcher {
	return &Matcher{
		codec:  codec,
		logger: logging.NewComponentLogger(logger, "segment"),
	}
}

// Segment decodes the recording behind ref, detects syllable boundaries
// with params, and writes one padded clip per aligned syllable into the
// lesson's clip directory. Surplus boundaries beyond the syllable list are
// discarded but still counted, and a count mismatch is reported on the
// result rather than treated as a failure.
func (m *Matcher) Segment(ctx context.Context, lessonDir string, ref manifest.SourceRef, table map[string]*manifest.Entry, params Params) (Result, error) {
	res := Result{
		Label:     ref.Label,
		Kind:      ref.Kind,
		SourceKey: ref.Source.Romanization,
		Expected:  len(ref.Source.Syllables),
		Params:    params,
	}
	lesson := filepath.Base(lessonDir)

	sourcePath := filepath.Join(lessonDir, ref.Source.File)
	clip, err := m.codec.Decode(ctx, sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, Wrap(ErrAudioSourceMissing, lesson, "segment", ref.Source.File, err)
		}
		return res, Wrap(ErrAudioSourceMissing, lesson, "segment", "decode "+ref.Source.File, err)
	}

	intervals := DetectIntervals(clip, params.MinSilenceMS, params.ThresholdDBFS, params.ResolutionMS)
	selected, skipped := selectIntervals(intervals, params)
	res.Found = len(selected) + skipped
	res.Mismatch = len(selected) != res.Expected
	m.logger.Debug("detected segments",
		logging.String(logging.FieldLesson, lesson),
		logging.String(logging.FieldSource, ref.Label),
		logging.Int("detected", len(intervals)),
		logging.Int("selected", len(selected)),
		logging.Int("expected", res.Expected))

	clipDir := filepath.Join(lessonDir, clipDirName)
	if err := os.MkdirAll(clipDir, 0o755); err != nil {
		return res, Wrap(ErrWriteFailure, lesson, "segment", clipDirName, err)
	}

	count := len(selected)
	if len(ref.Source.Syllables) < count {
		count = len(ref.Source.Syllables)
	}
	ext := filepath.Ext(ref.Source.File)
	duration := clip.DurationMS()
	padding := int64(params.PaddingMS)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		syllable := ref.Source.Syllables[i]
		name, err := clipName(syllable, table, ext)
		if err != nil {
			return res, Wrap(ErrUnknownSyllable, lesson, "segment", syllable, err)
		}

		window := manifest.TimeRange{
			StartMS:       selected[i].StartMS,
			EndMS:         selected[i].EndMS,
			PaddedStartMS: selected[i].StartMS - padding,
			PaddedEndMS:   selected[i].EndMS + padding,
		}
		if window.PaddedStartMS < 0 {
			window.PaddedStartMS = 0
		}
		if window.PaddedEndMS > duration {
			window.PaddedEndMS = duration
		}

		relPath := filepath.Join(clipDirName, name)
		piece := clip.SliceMS(window.PaddedStartMS, window.PaddedEndMS)
		if err := m.codec.Encode(ctx, piece, filepath.Join(lessonDir, relPath)); err != nil {
			return res, Wrap(ErrWriteFailure, lesson, "segment", syllable, err)
		}
		res.Clips = append(res.Clips, SavedClip{Syllable: syllable, File: relPath, Window: window})
	}
	return res, nil
}

// selectIntervals applies the structural overrides in order: skip_first
// drops leading intervals, skip_last drops trailing ones, and use_indices
// then picks an explicit ordered subset of what remains. Skips are counted
// as requested even when fewer intervals were available.
func selectIntervals(intervals []Interval, params Params) ([]Interval, int) {
	selected := intervals
	skipped := 0
	if params.SkipFirst > 0 {
		skipped += params.SkipFirst
		if params.SkipFirst < len(selected) {
			selected = selected[params.SkipFirst:]
		} else {
			selected = nil
		}
	}
	if params.SkipLast > 0 {
		skipped += params.SkipLast
		if params.SkipLast < len(selected) {
			selected = selected[:len(selected)-params.SkipLast]
		} else {
			selected = nil
		}
	}
	if len(params.UseIndices) > 0 {
		picked := make([]Interval, 0, len(params.UseIndices))
		for _, idx := range params.UseIndices {
			if idx >= 0 && idx < len(selected) {
				picked = append(picked, selected[idx])
			}
		}
		selected = picked
	}
	return selected, skipped
}

// clipName derives the output filename for a syllable, preferring the
// manifest's romanization and falling back to deriving one from the
// syllable itself. The clip keeps the source recording's extension.
func clipName(syllable string, table map[string]*manifest.Entry, ext string) (string, error) {
	if entry, ok := table[syllable]; ok && entry != nil && entry.Romanization != "" {
		return entry.Romanization + ext, nil
	}
	r, _ := utf8.DecodeRuneInString(syllable)
	romanized, err := hangul.RomanizeSyllable(r)
	if err != nil {
		return "", err
	}
	return romanized + ext, nil
}
