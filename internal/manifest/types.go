package manifest

import (
	"sort"
	"time"
)

// Kind distinguishes the two recording families a lesson may carry.
type Kind string

const (
	// KindColumn is a recording covering every syllable built on one vowel.
	KindColumn Kind = "column"
	// KindRow is a recording covering every syllable built on one consonant.
	KindRow Kind = "row"
)

// TimeRange records a detected syllable boundary and the padded window
// that was actually cut from the recording.
type TimeRange struct {
	StartMS       int64 `json:"start_ms"`
	EndMS         int64 `json:"end_ms"`
	PaddedStartMS int64 `json:"padded_start_ms"`
	PaddedEndMS   int64 `json:"padded_end_ms"`
}

// SegmentInfo holds the extraction state of one syllable. Baseline is
// the most recent automatic detection; Manual is an operator correction
// that always wins for playback. Absent pointers mean the state was
// never produced, which is distinct from a zeroed range.
type SegmentInfo struct {
	File     string     `json:"file,omitempty"`
	Baseline *TimeRange `json:"baseline,omitempty"`
	Manual   *TimeRange `json:"manual,omitempty"`
}

// Active returns the range playback should use: manual when present,
// baseline otherwise.
func (s *SegmentInfo) Active() *TimeRange {
	if s == nil {
		return nil
	}
	if s.Manual != nil {
		return s.Manual
	}
	return s.Baseline
}

// OverrideSpec is the per-recording tuning persisted in the manifest.
// Any subset of fields may be set; nil means "no opinion" and defers to
// the layer below.
type OverrideSpec struct {
	MinSilenceMS  *int     `json:"min_silence,omitempty"`
	ThresholdDBFS *float64 `json:"threshold,omitempty"`
	PaddingMS     *int     `json:"padding,omitempty"`
	SkipFirst     *int     `json:"skip_first,omitempty"`
	SkipLast      *int     `json:"skip_last,omitempty"`
	UseIndices    []int    `json:"use_indices,omitempty"`
}

// IsZero reports whether no field carries a value.
func (o *OverrideSpec) IsZero() bool {
	if o == nil {
		return true
	}
	return o.MinSilenceMS == nil && o.ThresholdDBFS == nil && o.PaddingMS == nil &&
		o.SkipFirst == nil && o.SkipLast == nil && len(o.UseIndices) == 0
}

// Source describes one long recording. The grapheme label is the key of
// the Columns/Rows map that owns it.
type Source struct {
	File            string        `json:"file"`
	Romanization    string        `json:"romanization"`
	SourceURL       string        `json:"source_url,omitempty"`
	Syllables       []string      `json:"syllables"`
	SharesAudioWith string        `json:"shares_audio_with,omitempty"`
	SegmentParams   *OverrideSpec `json:"segment_params,omitempty"`
}

// SourceRef pairs a Source with the label and kind implied by its
// position in the manifest.
type SourceRef struct {
	Label  string
	Kind   Kind
	Source *Source
}

// Entry is one syllable-table record.
type Entry struct {
	Consonant    string       `json:"consonant,omitempty"`
	Vowel        string       `json:"vowel,omitempty"`
	Romanization string       `json:"romanization"`
	Segment      *SegmentInfo `json:"segment,omitempty"`
}

// Manifest is the aggregate persisted per lesson.
type Manifest struct {
	Source          string             `json:"source"`
	Lesson          string             `json:"lesson"`
	ScrapedAt       time.Time          `json:"scraped_at"`
	Columns         map[string]*Source `json:"columns,omitempty"`
	Rows            map[string]*Source `json:"rows,omitempty"`
	SyllableTable   map[string]*Entry  `json:"syllable_table"`
	VowelsOrder     []string           `json:"vowels_order,omitempty"`
	ConsonantsOrder []string           `json:"consonants_order,omitempty"`
	// VowelsNoAudio lists vowels the lesson teaches without a dedicated
	// recording.
	VowelsNoAudio []string `json:"vowels_no_audio,omitempty"`
}

// New returns an empty manifest for the given site and lesson path.
func New(site, lesson string) *Manifest {
	return &Manifest{
		Source:        site,
		Lesson:        lesson,
		ScrapedAt:     time.Now().UTC(),
		Columns:       map[string]*Source{},
		Rows:          map[string]*Source{},
		SyllableTable: map[string]*Entry{},
	}
}

func (m *Manifest) ensureMaps() {
	if m.Columns == nil {
		m.Columns = map[string]*Source{}
	}
	if m.Rows == nil {
		m.Rows = map[string]*Source{}
	}
	if m.SyllableTable == nil {
		m.SyllableTable = map[string]*Entry{}
	}
}

// SourcesInOrder returns columns first, then rows, each following the
// lesson's recorded teaching order. Vowel-keyed row lessons carry no
// consonant order, so rows fall back to the vowel order there. Labels
// missing from the order arrays are appended sorted so nothing is
// silently dropped.
func (m *Manifest) SourcesInOrder() []SourceRef {
	rowOrder := m.ConsonantsOrder
	if len(rowOrder) == 0 {
		rowOrder = m.VowelsOrder
	}
	refs := make([]SourceRef, 0, len(m.Columns)+len(m.Rows))
	refs = append(refs, orderedRefs(m.Columns, m.VowelsOrder, KindColumn)...)
	refs = append(refs, orderedRefs(m.Rows, rowOrder, KindRow)...)
	return refs
}

func orderedRefs(sources map[string]*Source, order []string, kind Kind) []SourceRef {
	refs := make([]SourceRef, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))
	for _, label := range order {
		if src, ok := sources[label]; ok {
			refs = append(refs, SourceRef{Label: label, Kind: kind, Source: src})
			seen[label] = struct{}{}
		}
	}
	rest := make([]string, 0, len(sources))
	for label := range sources {
		if _, ok := seen[label]; !ok {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		refs = append(refs, SourceRef{Label: label, Kind: kind, Source: sources[label]})
	}
	return refs
}

// FindSource resolves a recording by its romanized key, e.g. "b" for
// the ㅂ row.
func (m *Manifest) FindSource(romanizedKey string) (SourceRef, bool) {
	for _, ref := range m.SourcesInOrder() {
		if ref.Source.Romanization == romanizedKey {
			return ref, true
		}
	}
	return SourceRef{}, false
}

// OwnerOf finds the recording containing the given syllable. Rows are
// preferred over columns when a syllable appears in both, matching how
// manual corrections are re-cut.
func (m *Manifest) OwnerOf(syllable string) (SourceRef, bool) {
	for _, refs := range [][]SourceRef{
		orderedRefs(m.Rows, m.ConsonantsOrder, KindRow),
		orderedRefs(m.Columns, m.VowelsOrder, KindColumn),
	} {
		for _, ref := range refs {
			for _, s := range ref.Source.Syllables {
				if s == syllable {
					return ref, true
				}
			}
		}
	}
	return SourceRef{}, false
}

// AdoptState carries forward segment state from a previous manifest:
// per-source tuning overrides and per-syllable segment info survive a
// re-scrape so downloaded content can be rebuilt without losing work.
func (m *Manifest) AdoptState(prev *Manifest) {
	if prev == nil {
		return
	}
	adoptSources(m.Columns, prev.Columns)
	adoptSources(m.Rows, prev.Rows)
	for syllable, entry := range m.SyllableTable {
		if old, ok := prev.SyllableTable[syllable]; ok && old.Segment != nil {
			entry.Segment = old.Segment
		}
	}
}

func adoptSources(next, prev map[string]*Source) {
	for label, src := range next {
		if old, ok := prev[label]; ok && !old.SegmentParams.IsZero() {
			src.SegmentParams = old.SegmentParams
		}
	}
}
