package segment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/PheelaV/kr-notebook/internal/audio"
	"github.com/PheelaV/kr-notebook/internal/hangul"
	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/segment"
	"github.com/PheelaV/kr-notebook/internal/testsupport"
)

func newTestEngine(t *testing.T) *segment.Engine {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(2))
	engine, err := segment.NewEngine(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func testBase() segment.Params {
	return segment.Params{
		MinSilenceMS:  200,
		ThresholdDBFS: testThreshold,
		PaddingMS:     75,
		ResolutionMS:  testResolution,
	}
}

// addSource registers a recording and table entries for its syllables,
// deriving romanization the same way a scrape would.
func addSource(t *testing.T, m *manifest.Manifest, kind manifest.Kind, label, rom, file string, syllables ...string) {
	t.Helper()

	src := &manifest.Source{File: file, Romanization: rom, Syllables: syllables}
	switch kind {
	case manifest.KindColumn:
		m.Columns[label] = src
		m.VowelsOrder = append(m.VowelsOrder, label)
	case manifest.KindRow:
		m.Rows[label] = src
		m.ConsonantsOrder = append(m.ConsonantsOrder, label)
	}
	for _, syllable := range syllables {
		if _, ok := m.SyllableTable[syllable]; ok {
			continue
		}
		r, _ := utf8.DecodeRuneInString(syllable)
		romanized, err := hangul.RomanizeSyllable(r)
		if err != nil {
			t.Fatalf("romanize %s: %v", syllable, err)
		}
		initial, vowel, _, err := hangul.Decompose(r)
		if err != nil {
			t.Fatalf("decompose %s: %v", syllable, err)
		}
		m.SyllableTable[syllable] = &manifest.Entry{
			Consonant:    string(initial),
			Vowel:        string(vowel),
			Romanization: romanized,
		}
	}
}

func clipDuration(t *testing.T, path string) int64 {
	t.Helper()

	codec, err := audio.New("ffmpeg")
	if err != nil {
		t.Fatalf("audio.New: %v", err)
	}
	clip, err := codec.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return clip.DurationMS()
}

func wantRange(t *testing.T, got *manifest.TimeRange, start, end, padStart, padEnd int64) {
	t.Helper()

	if got == nil {
		t.Fatalf("range missing, want {%d %d %d %d}", start, end, padStart, padEnd)
	}
	if got.StartMS != start || got.EndMS != end || got.PaddedStartMS != padStart || got.PaddedEndMS != padEnd {
		t.Fatalf("range = %+v, want {%d %d %d %d}", *got, start, end, padStart, padEnd)
	}
}

// gRowClip lays out three spoken syllables with the first one starting
// leadMS into the recording.
func gRowClip(lead int) *audio.Clip {
	spans := make([]testsupport.Span, 0, 6)
	if lead > 0 {
		spans = append(spans, testsupport.Silence(lead))
	}
	spans = append(spans,
		testsupport.Speech(400-lead),
		testsupport.Silence(500),
		testsupport.Speech(400),
		testsupport.Silence(500),
		testsupport.Speech(400),
	)
	return testsupport.ToneClip(testRate, spans...)
}

func TestSegmentBatchWritesClipsAndManifest(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄱ", "g", "rows/row_g.wav", "가", "거", "고")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_g.wav"), gRowClip(0))

	results, err := engine.SegmentBatch(ctx, dir, testBase(), false)
	if err != nil {
		t.Fatalf("SegmentBatch: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("result error: %v", res.Err)
	}
	if res.Label != "ㄱ" || res.Kind != manifest.KindRow {
		t.Fatalf("result identity = %s/%s", res.Label, res.Kind)
	}
	if res.Found != 3 || res.Expected != 3 || res.Mismatch {
		t.Fatalf("counts = found %d expected %d mismatch %v", res.Found, res.Expected, res.Mismatch)
	}
	if res.Saved() != 3 {
		t.Fatalf("saved = %d, want 3", res.Saved())
	}
	for _, name := range []string{"ga.wav", "geo.wav", "go.wav"} {
		if _, err := os.Stat(filepath.Join(dir, "syllables", name)); err != nil {
			t.Fatalf("clip %s: %v", name, err)
		}
	}

	stored := testsupport.LoadManifest(t, dir)
	ga := stored.SyllableTable["가"].Segment
	if ga == nil || ga.File != filepath.Join("syllables", "ga.wav") {
		t.Fatalf("가 segment = %+v", ga)
	}
	wantRange(t, ga.Baseline, 0, 400, 0, 475)
	wantRange(t, stored.SyllableTable["거"].Segment.Baseline, 900, 1300, 825, 1375)
	// Trailing padding clamps to the recording length.
	wantRange(t, stored.SyllableTable["고"].Segment.Baseline, 1800, 2200, 1725, 2200)

	params := stored.Rows["ㄱ"].SegmentParams
	if params == nil || params.MinSilenceMS == nil || *params.MinSilenceMS != 200 {
		t.Fatalf("stored params = %+v", params)
	}
	if params.SkipFirst != nil || params.SkipLast != nil || len(params.UseIndices) != 0 {
		t.Fatalf("structural overrides persisted unexpectedly: %+v", params)
	}
}

func TestSegmentBatchRowClipWinsOverColumn(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindColumn, "ㅏ", "a", "columns/col_a.wav", "가")
	addSource(t, m, manifest.KindRow, "ㄱ", "g", "rows/row_g.wav", "가")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "columns", "col_a.wav"),
		testsupport.ToneClip(testRate, testsupport.Speech(300), testsupport.Silence(300)))
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_g.wav"),
		testsupport.ToneClip(testRate, testsupport.Speech(400), testsupport.Silence(300)))

	results, err := engine.SegmentBatch(ctx, dir, testBase(), false)
	if err != nil {
		t.Fatalf("SegmentBatch: %v", err)
	}
	if len(results) != 2 || results[0].Kind != manifest.KindColumn || results[1].Kind != manifest.KindRow {
		t.Fatalf("expected column then row, got %+v", results)
	}

	stored := testsupport.LoadManifest(t, dir)
	wantRange(t, stored.SyllableTable["가"].Segment.Baseline, 0, 400, 0, 475)
	if got := clipDuration(t, filepath.Join(dir, "syllables", "ga.wav")); got != 475 {
		t.Fatalf("clip duration = %dms, want row cut 475ms", got)
	}
}

func TestSegmentBatchReportsMismatchAndKeepsCounts(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나", "너", "노")
	testsupport.SaveManifest(t, dir, m)
	// Four spoken bursts against three expected syllables.
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate,
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300)))

	results, err := engine.SegmentBatch(ctx, dir, testBase(), false)
	if err != nil {
		t.Fatalf("SegmentBatch: %v", err)
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("result error: %v", res.Err)
	}
	if !res.Mismatch {
		t.Fatal("expected mismatch to be reported")
	}
	if res.Found != 4 || res.Expected != 3 || res.Saved() != 3 {
		t.Fatalf("counts = found %d expected %d saved %d", res.Found, res.Expected, res.Saved())
	}

	stored := testsupport.LoadManifest(t, dir)
	for _, syllable := range []string{"나", "너", "노"} {
		if stored.SyllableTable[syllable].Segment == nil {
			t.Fatalf("%s missing segment despite mismatch", syllable)
		}
	}
}

func TestManualLifecycleSurvivesResegmentation(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()
	rowPath := filepath.Join(dir, "rows", "row_g.wav")
	clipPath := filepath.Join(dir, "syllables", "ga.wav")

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄱ", "g", "rows/row_g.wav", "가", "거", "고")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, rowPath, gRowClip(0))

	if _, err := engine.SegmentBatch(ctx, dir, testBase(), false); err != nil {
		t.Fatalf("initial batch: %v", err)
	}
	stored := testsupport.LoadManifest(t, dir)
	wantRange(t, stored.SyllableTable["가"].Segment.Baseline, 0, 400, 0, 475)

	applied, err := engine.ApplyManual(ctx, dir, "가", 50, 350, 75)
	if err != nil || !applied {
		t.Fatalf("ApplyManual = %v, %v", applied, err)
	}
	stored = testsupport.LoadManifest(t, dir)
	seg := stored.SyllableTable["가"].Segment
	wantRange(t, seg.Manual, 50, 350, 0, 425)
	wantRange(t, seg.Baseline, 0, 400, 0, 475)
	if seg.Active() != seg.Manual {
		t.Fatal("active range should be the manual one")
	}
	if got := clipDuration(t, clipPath); got != 425 {
		t.Fatalf("clip duration after manual cut = %dms, want 425ms", got)
	}

	// Shift the recording and re-run. The baseline refreshes, the manual
	// correction must not move.
	testsupport.WriteWAV(t, rowPath, gRowClip(10))
	if _, err := engine.SegmentBatch(ctx, dir, testBase(), false); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	stored = testsupport.LoadManifest(t, dir)
	seg = stored.SyllableTable["가"].Segment
	wantRange(t, seg.Baseline, 10, 400, 0, 475)
	wantRange(t, seg.Manual, 50, 350, 0, 425)

	changed, err := engine.ResetManual(ctx, dir, "가")
	if err != nil || !changed {
		t.Fatalf("ResetManual = %v, %v", changed, err)
	}
	stored = testsupport.LoadManifest(t, dir)
	seg = stored.SyllableTable["가"].Segment
	if seg.Manual != nil {
		t.Fatalf("manual survived reset: %+v", seg.Manual)
	}
	wantRange(t, seg.Baseline, 10, 400, 0, 475)
	if got := clipDuration(t, clipPath); got != 475 {
		t.Fatalf("clip duration after reset = %dms, want baseline 475ms", got)
	}

	changed, err = engine.ResetManual(ctx, dir, "가")
	if err != nil || changed {
		t.Fatalf("second reset = %v, %v, want benign no-op", changed, err)
	}
}

func TestSegmentBatchIsolatesMissingRecording(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나", "너")
	addSource(t, m, manifest.KindRow, "ㅁ", "m", "rows/row_m.wav", "마", "머")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate,
			testsupport.Speech(300), testsupport.Silence(300), testsupport.Speech(300)))

	results, err := engine.SegmentBatch(ctx, dir, testBase(), false)
	if err != nil {
		t.Fatalf("SegmentBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err != nil || results[0].Saved() != 2 {
		t.Fatalf("healthy row = saved %d err %v", results[0].Saved(), results[0].Err)
	}
	if !errors.Is(results[1].Err, segment.ErrAudioSourceMissing) {
		t.Fatalf("missing row err = %v, want ErrAudioSourceMissing", results[1].Err)
	}

	stored := testsupport.LoadManifest(t, dir)
	if stored.SyllableTable["나"].Segment == nil {
		t.Fatal("healthy row missed its manifest update")
	}
	if stored.SyllableTable["마"].Segment != nil {
		t.Fatal("failed row must not touch the manifest")
	}
	if stored.Rows["ㅁ"].SegmentParams != nil {
		t.Fatal("failed row must not persist parameters")
	}
}

func TestSegmentBatchRequiresManifest(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.SegmentBatch(context.Background(), t.TempDir(), testBase(), false)
	if !errors.Is(err, segment.ErrManifestNotFound) {
		t.Fatalf("err = %v, want ErrManifestNotFound", err)
	}
}

func TestSegmentSourcePersistsExplicitSkips(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나", "너")
	testsupport.SaveManifest(t, dir, m)
	// A stray noise precedes the two real syllables.
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate,
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300)))

	res, err := engine.SegmentSource(ctx, dir, "n", testBase(), &manifest.OverrideSpec{SkipFirst: intPtr(1)})
	if err != nil {
		t.Fatalf("SegmentSource: %v", err)
	}
	if res.Found != 3 || res.Saved() != 2 || res.Mismatch {
		t.Fatalf("counts = found %d saved %d mismatch %v", res.Found, res.Saved(), res.Mismatch)
	}

	stored := testsupport.LoadManifest(t, dir)
	wantRange(t, stored.SyllableTable["나"].Segment.Baseline, 600, 900, 525, 975)
	params := stored.Rows["ㄴ"].SegmentParams
	if params == nil || params.SkipFirst == nil || *params.SkipFirst != 1 {
		t.Fatalf("stored params = %+v, want skip_first=1", params)
	}

	// The stored override now steers runs that pass no explicit flags.
	res, err = engine.SegmentSource(ctx, dir, "n", testBase(), nil)
	if err != nil {
		t.Fatalf("SegmentSource without flags: %v", err)
	}
	if res.Found != 3 || res.Saved() != 2 || res.Mismatch {
		t.Fatalf("stored skip not applied: found %d saved %d", res.Found, res.Saved())
	}
}

func TestSegmentSourceUnknownKey(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나")
	testsupport.SaveManifest(t, dir, m)

	_, err := engine.SegmentSource(context.Background(), dir, "zz", testBase(), nil)
	if !errors.Is(err, segment.ErrAudioSourceMissing) {
		t.Fatalf("err = %v, want ErrAudioSourceMissing", err)
	}
}

func TestSegmentBatchResetDropsStoredOverrides(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나", "너")
	m.Rows["ㄴ"].SegmentParams = &manifest.OverrideSpec{UseIndices: []int{1}}
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate,
			testsupport.Speech(300), testsupport.Silence(300),
			testsupport.Speech(300), testsupport.Silence(300)))

	results, err := engine.SegmentBatch(ctx, dir, testBase(), false)
	if err != nil {
		t.Fatalf("SegmentBatch: %v", err)
	}
	if results[0].Found != 1 || !results[0].Mismatch {
		t.Fatalf("stored override ignored: %+v", results[0])
	}
	stored := testsupport.LoadManifest(t, dir)
	wantRange(t, stored.SyllableTable["나"].Segment.Baseline, 600, 900, 525, 975)

	results, err = engine.SegmentBatch(ctx, dir, testBase(), true)
	if err != nil {
		t.Fatalf("SegmentBatch reset: %v", err)
	}
	if results[0].Found != 2 || results[0].Mismatch || results[0].Saved() != 2 {
		t.Fatalf("reset run = %+v", results[0])
	}
	stored = testsupport.LoadManifest(t, dir)
	wantRange(t, stored.SyllableTable["나"].Segment.Baseline, 0, 300, 0, 375)
	if params := stored.Rows["ㄴ"].SegmentParams; len(params.UseIndices) != 0 {
		t.Fatalf("use_indices survived reset: %+v", params)
	}
}

func TestApplyManualWithoutBaselineCutsFromSource(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate, testsupport.Speech(600)))

	applied, err := engine.ApplyManual(ctx, dir, "나", 100, 300, 75)
	if err != nil || !applied {
		t.Fatalf("ApplyManual = %v, %v", applied, err)
	}
	stored := testsupport.LoadManifest(t, dir)
	seg := stored.SyllableTable["나"].Segment
	if seg == nil || seg.File != filepath.Join("syllables", "na.wav") {
		t.Fatalf("segment = %+v, want synthesized clip path", seg)
	}
	if seg.Baseline != nil {
		t.Fatalf("baseline appeared from nowhere: %+v", seg.Baseline)
	}
	wantRange(t, seg.Manual, 100, 300, 25, 375)

	// Without a baseline there is nothing to restore.
	if _, err := engine.ResetManual(ctx, dir, "나"); !errors.Is(err, segment.ErrNoBaseline) {
		t.Fatalf("reset err = %v, want ErrNoBaseline", err)
	}
}

func TestManualOperationsValidateInput(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)
	ctx := context.Background()

	m := manifest.New("https://www.howtostudykorean.com", "lesson1")
	addSource(t, m, manifest.KindRow, "ㄴ", "n", "rows/row_n.wav", "나")
	testsupport.SaveManifest(t, dir, m)
	testsupport.WriteWAV(t, filepath.Join(dir, "rows", "row_n.wav"),
		testsupport.ToneClip(testRate, testsupport.Speech(600)))

	if _, err := engine.ApplyManual(ctx, dir, "꽝", 0, 100, 75); !errors.Is(err, segment.ErrUnknownSyllable) {
		t.Fatalf("unknown syllable err = %v", err)
	}
	if _, err := engine.ResetManual(ctx, dir, "꽝"); !errors.Is(err, segment.ErrUnknownSyllable) {
		t.Fatalf("unknown syllable reset err = %v", err)
	}
	if _, err := engine.ApplyManual(ctx, dir, "나", 300, 300, 75); err == nil {
		t.Fatal("empty window must be rejected")
	}
	if _, err := engine.ApplyManual(ctx, t.TempDir(), "나", 0, 100, 75); !errors.Is(err, segment.ErrManifestNotFound) {
		t.Fatalf("missing manifest err = %v", err)
	}

	// Decomposed jamo input must match the composed table key.
	applied, err := engine.ApplyManual(ctx, dir, "나", 100, 300, 75)
	if err != nil || !applied {
		t.Fatalf("ApplyManual with NFD input = %v, %v", applied, err)
	}
}
