package segment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// Params are the fully resolved tuning values applied to one recording.
type Params struct {
	MinSilenceMS  int
	ThresholdDBFS float64
	PaddingMS     int
	ResolutionMS  int
	SkipFirst     int
	SkipLast      int
	UseIndices    []int
}

// ParamsFromConfig builds the base parameters for a run from the
// segmentation section of the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		MinSilenceMS:  cfg.Segmentation.MinSilenceMS,
		ThresholdDBFS: cfg.Segmentation.SilenceThresholdDBFS,
		PaddingMS:     cfg.Segmentation.PaddingMS,
		ResolutionMS:  cfg.Segmentation.ResolutionMS,
	}
}

// DefaultSourceOverrides returns the built-in per-recording override table,
// keyed by audio file basename. The ㄷ row recording opens with a spoken
// letter name that must be skipped, and the ㅋ row's aspirated bursts need
// a shorter silence floor to separate.
func DefaultSourceOverrides() map[string]manifest.OverrideSpec {
	return map[string]manifest.OverrideSpec{
		"row_d.mp3": {SkipFirst: intPtr(1)},
		"row_k.mp3": {MinSilenceMS: intPtr(150)},
	}
}

// Resolve layers the built-in override table and the recording's stored
// manifest override on top of base. Stored overrides are ignored when
// reset is set, which returns the recording to table defaults.
func Resolve(src *manifest.Source, base Params, table map[string]manifest.OverrideSpec, reset bool) Params {
	resolved := base
	if src == nil {
		return resolved
	}
	if spec, ok := table[filepath.Base(src.File)]; ok {
		applySpec(&resolved, &spec)
	}
	if !reset && src.SegmentParams != nil {
		applySpec(&resolved, src.SegmentParams)
	}
	return resolved
}

func applySpec(p *Params, spec *manifest.OverrideSpec) {
	if spec == nil {
		return
	}
	if spec.MinSilenceMS != nil {
		p.MinSilenceMS = *spec.MinSilenceMS
	}
	if spec.ThresholdDBFS != nil {
		p.ThresholdDBFS = *spec.ThresholdDBFS
	}
	if spec.PaddingMS != nil {
		p.PaddingMS = *spec.PaddingMS
	}
	if spec.SkipFirst != nil {
		p.SkipFirst = *spec.SkipFirst
	}
	if spec.SkipLast != nil {
		p.SkipLast = *spec.SkipLast
	}
	if len(spec.UseIndices) > 0 {
		p.UseIndices = append([]int(nil), spec.UseIndices...)
	}
}

// Spec renders the effective values as the override persisted back into the
// manifest, so the next run reproduces this one without re-resolving flags.
// Structural fields are recorded only when they were actually applied.
func (p Params) Spec() *manifest.OverrideSpec {
	spec := &manifest.OverrideSpec{
		MinSilenceMS:  intPtr(p.MinSilenceMS),
		ThresholdDBFS: floatPtr(p.ThresholdDBFS),
		PaddingMS:     intPtr(p.PaddingMS),
	}
	if p.SkipFirst > 0 {
		spec.SkipFirst = intPtr(p.SkipFirst)
	}
	if p.SkipLast > 0 {
		spec.SkipLast = intPtr(p.SkipLast)
	}
	if len(p.UseIndices) > 0 {
		spec.UseIndices = append([]int(nil), p.UseIndices...)
	}
	return spec
}

// Describe summarizes the fields of p that differ from base in a compact
// form suitable for run reports, for example "s=150ms, skip_first=1".
func (p Params) Describe(base Params) string {
	parts := make([]string, 0, 6)
	if p.MinSilenceMS != base.MinSilenceMS {
		parts = append(parts, fmt.Sprintf("s=%dms", p.MinSilenceMS))
	}
	if p.ThresholdDBFS != base.ThresholdDBFS {
		parts = append(parts, fmt.Sprintf("t=%gdBFS", p.ThresholdDBFS))
	}
	if p.PaddingMS != base.PaddingMS {
		parts = append(parts, fmt.Sprintf("P=%dms", p.PaddingMS))
	}
	if p.SkipFirst > 0 {
		parts = append(parts, fmt.Sprintf("skip_first=%d", p.SkipFirst))
	}
	if p.SkipLast > 0 {
		parts = append(parts, fmt.Sprintf("skip_last=%d", p.SkipLast))
	}
	if len(p.UseIndices) > 0 {
		parts = append(parts, fmt.Sprintf("use_indices=%v", p.UseIndices))
	}
	return strings.Join(parts, ", ")
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
