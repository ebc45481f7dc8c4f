package segment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/PheelaV/kr-notebook/internal/audio"
	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/hangul"
	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// Engine segments lesson recordings and reconciles the outcome into the
// lesson manifest. Recordings are processed concurrently, but manifest
// updates happen in a single serialized pass once extraction is done.
type Engine struct {
	cfg     *config.Config
	codec   *audio.Codec
	matcher *Matcher
	table   map[string]manifest.OverrideSpec
	workers int
	logger  *slog.Logger
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithCodec substitutes the audio codec, primarily for tests.
func WithCodec(codec *audio.Codec) Option {
	return func(e *Engine) {
		e.codec = codec
	}
}

// WithOverrides replaces the built-in per-recording override table.
func WithOverrides(table map[string]manifest.OverrideSpec) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithWorkers caps how many recordings are segmented concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// NewEngine builds an engine from the loaded configuration.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("segment: configuration is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		cfg:     cfg,
		table:   DefaultSourceOverrides(),
		workers: cfg.Segmentation.Workers,
		logger:  logging.NewComponentLogger(logger, "segment"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.codec == nil {
		codec, err := audio.New(cfg.FFmpegBinary(), audio.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		engine.codec = codec
	}
	if engine.workers <= 0 {
		engine.workers = 1
	}
	engine.matcher = NewMatcher(engine.codec, logger)
	return engine, nil
}

// BaseParams returns the run parameters derived from configuration alone.
func (e *Engine) BaseParams() Params {
	return ParamsFromConfig(e.cfg)
}

// SegmentBatch segments every recording in the lesson manifest, columns
// before rows, and folds successful results back into the manifest. A
// failing recording is reported on its result and does not stop the
// others. When reset is set, stored per-recording overrides are ignored
// and replaced with what this run resolves.
func (e *Engine) SegmentBatch(ctx context.Context, lessonDir string, base Params, reset bool) ([]Result, error) {
	lesson := filepath.Base(lessonDir)
	store := manifest.NewStore(lessonDir, e.logger)
	if !store.Exists() {
		return nil, Wrap(ErrManifestNotFound, lesson, "segment", store.Path(), nil)
	}
	m, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrManifestNotFound, lesson, "segment", store.Path(), err)
		}
		return nil, err
	}

	refs := m.SourcesInOrder()
	log := e.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()),
		logging.String(logging.FieldLesson, lesson))
	log.Info("segmentation run started",
		logging.Int("sources", len(refs)),
		logging.Bool("reset", reset))

	// Columns run to completion before rows start. A syllable present in
	// both kinds shares one clip path, so phase order keeps concurrent
	// writers off the same file and leaves the row's clip on disk.
	results := make([]Result, len(refs))
	for _, kind := range []manifest.Kind{manifest.KindColumn, manifest.KindRow} {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.workers)
		for i, ref := range refs {
			if ref.Kind != kind {
				continue
			}
			i, ref := i, ref
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					results[i] = Result{
						Label:     ref.Label,
						Kind:      ref.Kind,
						SourceKey: ref.Source.Romanization,
						Expected:  len(ref.Source.Syllables),
						Err:       err,
					}
					return err
				}
				params := Resolve(ref.Source, base, e.table, reset)
				res, err := e.matcher.Segment(groupCtx, lessonDir, ref, m.SyllableTable, params)
				res.Overrides = params.Describe(base)
				res.Err = err
				results[i] = res
				if err != nil {
					log.Warn("recording failed",
						logging.String(logging.FieldSource, ref.Label),
						logging.Error(err))
				}
				return nil
			})
		}
		_ = group.Wait()
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}

	var updated int
	err = store.Update(ctx, func(m *manifest.Manifest) error {
		updated = reconcile(m, lessonDir, results)
		return nil
	})
	if err != nil {
		return results, Wrap(ErrWriteFailure, lesson, "segment", "update manifest", err)
	}
	log.Info("segmentation run finished",
		logging.Int("sources", len(refs)),
		logging.Int("updated", updated))
	return results, nil
}

// SegmentSource re-segments a single recording identified by its romanized
// key. Stored overrides still apply; extra, when non-nil, wins over them so
// explicit flags can steer one run. The effective parameters are persisted
// for subsequent runs.
func (e *Engine) SegmentSource(ctx context.Context, lessonDir, key string, base Params, extra *manifest.OverrideSpec) (Result, error) {
	lesson := filepath.Base(lessonDir)
	store := manifest.NewStore(lessonDir, e.logger)
	if !store.Exists() {
		return Result{}, Wrap(ErrManifestNotFound, lesson, "segment-source", store.Path(), nil)
	}
	m, err := store.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	ref, ok := m.FindSource(key)
	if !ok {
		return Result{}, Wrap(ErrAudioSourceMissing, lesson, "segment-source", "no recording with key "+key, nil)
	}

	params := Resolve(ref.Source, base, e.table, false)
	applySpec(&params, extra)
	res, err := e.matcher.Segment(ctx, lessonDir, ref, m.SyllableTable, params)
	res.Overrides = params.Describe(base)
	if err != nil {
		res.Err = err
		return res, err
	}
	err = store.Update(ctx, func(m *manifest.Manifest) error {
		reconcile(m, lessonDir, []Result{res})
		return nil
	})
	if err != nil {
		return res, Wrap(ErrWriteFailure, lesson, "segment-source", "update manifest", err)
	}
	e.logger.Info("recording segmented",
		logging.String(logging.FieldLesson, lesson),
		logging.String(logging.FieldSource, res.Label),
		logging.Int("saved", res.Saved()),
		logging.Bool("mismatch", res.Mismatch))
	return res, nil
}

// ApplyManual overwrites a syllable's clip with a hand-tuned window and
// records the manual timing alongside the untouched baseline. It reports
// whether the correction was applied.
func (e *Engine) ApplyManual(ctx context.Context, lessonDir, syllable string, startMS, endMS int64, paddingMS int) (bool, error) {
	lesson := filepath.Base(lessonDir)
	syllable = hangul.Normalize(syllable)
	if endMS <= startMS {
		return false, Wrap(nil, lesson, "apply-manual", fmt.Sprintf("end %dms must be after start %dms", endMS, startMS), nil)
	}
	store := manifest.NewStore(lessonDir, e.logger)
	if !store.Exists() {
		return false, Wrap(ErrManifestNotFound, lesson, "apply-manual", store.Path(), nil)
	}

	err := store.Update(ctx, func(m *manifest.Manifest) error {
		entry := m.SyllableTable[syllable]
		if entry == nil {
			return Wrap(ErrUnknownSyllable, lesson, "apply-manual", syllable, nil)
		}
		ref, ok := m.OwnerOf(syllable)
		if !ok {
			return Wrap(ErrUnknownSyllable, lesson, "apply-manual", syllable+" has no source recording", nil)
		}
		clip, err := e.codec.Decode(ctx, filepath.Join(lessonDir, ref.Source.File))
		if err != nil {
			return Wrap(ErrAudioSourceMissing, lesson, "apply-manual", ref.Source.File, err)
		}

		window := manifest.TimeRange{
			StartMS:       startMS,
			EndMS:         endMS,
			PaddedStartMS: startMS - int64(paddingMS),
			PaddedEndMS:   endMS + int64(paddingMS),
		}
		if window.PaddedStartMS < 0 {
			window.PaddedStartMS = 0
		}
		if duration := clip.DurationMS(); window.PaddedEndMS > duration {
			window.PaddedEndMS = duration
		}

		if entry.Segment == nil {
			entry.Segment = &manifest.SegmentInfo{}
		}
		if entry.Segment.File == "" {
			name, err := clipName(syllable, m.SyllableTable, filepath.Ext(ref.Source.File))
			if err != nil {
				return Wrap(ErrUnknownSyllable, lesson, "apply-manual", syllable, err)
			}
			entry.Segment.File = filepath.Join(clipDirName, name)
		}
		piece := clip.SliceMS(window.PaddedStartMS, window.PaddedEndMS)
		if err := e.codec.Encode(ctx, piece, filepath.Join(lessonDir, entry.Segment.File)); err != nil {
			return Wrap(ErrWriteFailure, lesson, "apply-manual", syllable, err)
		}
		entry.Segment.Manual = &window
		return nil
	})
	if err != nil {
		return false, err
	}
	e.logger.Info("manual timing applied",
		logging.String(logging.FieldLesson, lesson),
		logging.String(logging.FieldSyllable, syllable),
		logging.Int64("start_ms", startMS),
		logging.Int64("end_ms", endMS))
	return true, nil
}

// ResetManual discards a syllable's manual timing and restores its clip
// from the stored baseline window. It reports whether anything changed;
// a syllable without manual timing is left alone.
func (e *Engine) ResetManual(ctx context.Context, lessonDir, syllable string) (bool, error) {
	lesson := filepath.Base(lessonDir)
	syllable = hangul.Normalize(syllable)
	store := manifest.NewStore(lessonDir, e.logger)
	if !store.Exists() {
		return false, Wrap(ErrManifestNotFound, lesson, "reset-manual", store.Path(), nil)
	}

	changed := false
	err := store.Update(ctx, func(m *manifest.Manifest) error {
		entry := m.SyllableTable[syllable]
		if entry == nil {
			return Wrap(ErrUnknownSyllable, lesson, "reset-manual", syllable, nil)
		}
		if entry.Segment == nil || entry.Segment.Baseline == nil {
			return Wrap(ErrNoBaseline, lesson, "reset-manual", syllable, nil)
		}
		if entry.Segment.Manual == nil {
			return nil
		}
		ref, ok := m.OwnerOf(syllable)
		if !ok {
			return Wrap(ErrUnknownSyllable, lesson, "reset-manual", syllable+" has no source recording", nil)
		}
		clip, err := e.codec.Decode(ctx, filepath.Join(lessonDir, ref.Source.File))
		if err != nil {
			return Wrap(ErrAudioSourceMissing, lesson, "reset-manual", ref.Source.File, err)
		}

		baseline := *entry.Segment.Baseline
		if entry.Segment.File == "" {
			name, err := clipName(syllable, m.SyllableTable, filepath.Ext(ref.Source.File))
			if err != nil {
				return Wrap(ErrUnknownSyllable, lesson, "reset-manual", syllable, err)
			}
			entry.Segment.File = filepath.Join(clipDirName, name)
		}
		piece := clip.SliceMS(baseline.PaddedStartMS, baseline.PaddedEndMS)
		if err := e.codec.Encode(ctx, piece, filepath.Join(lessonDir, entry.Segment.File)); err != nil {
			return Wrap(ErrWriteFailure, lesson, "reset-manual", syllable, err)
		}
		entry.Segment.Manual = nil
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		e.logger.Info("manual timing reset",
			logging.String(logging.FieldLesson, lesson),
			logging.String(logging.FieldSyllable, syllable))
	}
	return changed, nil
}

// reconcile folds successful results into the manifest. Results are walked
// in run order, so when a syllable appears in both a column and a row the
// row result wins. Only syllables whose clip actually exists on disk are
// updated, and manual timings are never touched.
func reconcile(m *manifest.Manifest, lessonDir string, results []Result) int {
	merged := make(map[string]SavedClip)
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			continue
		}
		if src := findSource(m, res.Kind, res.Label); src != nil {
			src.SegmentParams = res.Params.Spec()
		}
		for _, clip := range res.Clips {
			merged[clip.Syllable] = clip
		}
	}

	updated := 0
	for syllable, clip := range merged {
		if _, err := os.Stat(filepath.Join(lessonDir, clip.File)); err != nil {
			continue
		}
		entry := m.SyllableTable[syllable]
		if entry == nil {
			continue
		}
		if entry.Segment == nil {
			entry.Segment = &manifest.SegmentInfo{}
		}
		window := clip.Window
		entry.Segment.File = clip.File
		entry.Segment.Baseline = &window
		updated++
	}
	return updated
}

func findSource(m *manifest.Manifest, kind manifest.Kind, label string) *manifest.Source {
	switch kind {
	case manifest.KindColumn:
		return m.Columns[label]
	case manifest.KindRow:
		return m.Rows[label]
	}
	return nil
}
