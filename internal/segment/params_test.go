package segment_test

import (
	"reflect"
	"testing"

	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/segment"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func baseParams() segment.Params {
	return segment.Params{
		MinSilenceMS:  200,
		ThresholdDBFS: -40,
		PaddingMS:     50,
		ResolutionMS:  10,
	}
}

func TestResolveLayersTableAndStoredOverrides(t *testing.T) {
	table := map[string]manifest.OverrideSpec{
		"row_k.mp3": {MinSilenceMS: intPtr(150)},
	}
	src := &manifest.Source{
		File:          "rows/row_k.mp3",
		SegmentParams: &manifest.OverrideSpec{ThresholdDBFS: floatPtr(-45), SkipLast: intPtr(1)},
	}

	got := segment.Resolve(src, baseParams(), table, false)
	want := baseParams()
	want.MinSilenceMS = 150
	want.ThresholdDBFS = -45
	want.SkipLast = 1
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveStoredOverrideWinsOverTable(t *testing.T) {
	table := map[string]manifest.OverrideSpec{
		"row_k.mp3": {MinSilenceMS: intPtr(150)},
	}
	src := &manifest.Source{
		File:          "rows/row_k.mp3",
		SegmentParams: &manifest.OverrideSpec{MinSilenceMS: intPtr(120)},
	}

	got := segment.Resolve(src, baseParams(), table, false)
	if got.MinSilenceMS != 120 {
		t.Fatalf("MinSilenceMS = %d, want stored override 120", got.MinSilenceMS)
	}
}

func TestResolveResetIgnoresStoredOverrides(t *testing.T) {
	table := map[string]manifest.OverrideSpec{
		"row_d.mp3": {SkipFirst: intPtr(1)},
	}
	src := &manifest.Source{
		File:          "rows/row_d.mp3",
		SegmentParams: &manifest.OverrideSpec{MinSilenceMS: intPtr(120), UseIndices: []int{0, 2}},
	}

	got := segment.Resolve(src, baseParams(), table, true)
	want := baseParams()
	want.SkipFirst = 1
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve with reset = %+v, want table defaults %+v", got, want)
	}
}

func TestResolveWithoutSourceReturnsBase(t *testing.T) {
	got := segment.Resolve(nil, baseParams(), segment.DefaultSourceOverrides(), false)
	if !reflect.DeepEqual(got, baseParams()) {
		t.Fatalf("Resolve = %+v, want base %+v", got, baseParams())
	}
}

func TestDefaultSourceOverrides(t *testing.T) {
	table := segment.DefaultSourceOverrides()
	d, ok := table["row_d.mp3"]
	if !ok || d.SkipFirst == nil || *d.SkipFirst != 1 {
		t.Fatalf("row_d.mp3 override = %+v, want skip_first=1", d)
	}
	k, ok := table["row_k.mp3"]
	if !ok || k.MinSilenceMS == nil || *k.MinSilenceMS != 150 {
		t.Fatalf("row_k.mp3 override = %+v, want min_silence=150", k)
	}
}

func TestSpecPersistsEffectiveValues(t *testing.T) {
	params := baseParams()
	params.MinSilenceMS = 150
	params.SkipFirst = 1
	params.UseIndices = []int{0, 2}

	spec := params.Spec()
	if spec.MinSilenceMS == nil || *spec.MinSilenceMS != 150 {
		t.Fatalf("MinSilenceMS = %v, want 150", spec.MinSilenceMS)
	}
	if spec.ThresholdDBFS == nil || *spec.ThresholdDBFS != -40 {
		t.Fatalf("ThresholdDBFS = %v, want -40", spec.ThresholdDBFS)
	}
	if spec.PaddingMS == nil || *spec.PaddingMS != 50 {
		t.Fatalf("PaddingMS = %v, want 50", spec.PaddingMS)
	}
	if spec.SkipFirst == nil || *spec.SkipFirst != 1 {
		t.Fatalf("SkipFirst = %v, want 1", spec.SkipFirst)
	}
	if spec.SkipLast != nil {
		t.Fatalf("SkipLast = %v, want nil when unused", spec.SkipLast)
	}
	if !reflect.DeepEqual(spec.UseIndices, []int{0, 2}) {
		t.Fatalf("UseIndices = %v, want [0 2]", spec.UseIndices)
	}
}

func TestDescribeListsOnlyDeviations(t *testing.T) {
	base := baseParams()

	if got := base.Describe(base); got != "" {
		t.Fatalf("Describe with no deviations = %q, want empty", got)
	}

	params := base
	params.MinSilenceMS = 150
	params.ThresholdDBFS = -45
	params.PaddingMS = 60
	params.SkipFirst = 1
	params.UseIndices = []int{0, 2}
	got := params.Describe(base)
	want := "s=150ms, t=-45dBFS, P=60ms, skip_first=1, use_indices=[0 2]"
	if got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}
}
