package lesson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/PheelaV/kr-notebook/internal/fileutil"
	"github.com/PheelaV/kr-notebook/internal/hangul"
	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/manifest"
)

const siteName = "howtostudykorean.com"

// Progress reports one completed download attempt.
type Progress func(current, total int, label string, ok bool)

// sourceDef describes one recording a lesson wants on disk.
type sourceDef struct {
	label        string
	kind         manifest.Kind
	romanization string
	filename     string
	url          string
	syllables    []string
	sharesWith   string
}

func (d sourceDef) dir() string {
	if d.kind == manifest.KindColumn {
		return "columns"
	}
	return "rows"
}

// plan is the full definition of one scrapeable lesson.
type plan struct {
	name            string
	lessonPath      string
	vowelsOrder     []string
	consonantsOrder []string
	vowelsNoAudio   []string
	// fetch returns the recordings to download, scraping the lesson
	// page when the lesson has usable markup.
	fetch func(ctx context.Context, s *Scraper) ([]sourceDef, error)
	// syllables lists every syllable the lesson teaches, recorded or not.
	syllables func() ([]string, error)
}

// Names lists the scrapeable lessons in teaching order.
func Names() []string {
	return []string{"lesson1", "lesson2", "lesson3"}
}

func planFor(name string) (plan, error) {
	switch name {
	case "lesson1":
		return lesson1Plan(), nil
	case "lesson2":
		return lesson2Plan(), nil
	case "lesson3":
		return lesson3Plan(), nil
	}
	return plan{}, fmt.Errorf("unknown lesson %q", name)
}

// Scrape downloads one lesson's recordings into the configured data
// directory and writes its manifest. Existing files are kept unless
// force is set; a failed download excludes that recording from the
// manifest but does not abort the rest. Segmentation state from a
// previous manifest is preserved.
func (s *Scraper) Scrape(ctx context.Context, name string, force bool, progress Progress) (*manifest.Manifest, error) {
	p, err := planFor(name)
	if err != nil {
		return nil, err
	}
	defs, err := p.fetch(ctx, s)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%s: no recordings found, page structure may have changed", name)
	}

	lessonDir := s.cfg.LessonDir(name)
	dirs := map[string]bool{"syllables": true}
	for _, def := range defs {
		dirs[def.dir()] = true
	}
	for dir := range dirs {
		if err := os.MkdirAll(filepath.Join(lessonDir, dir), 0o755); err != nil {
			return nil, err
		}
	}

	store := manifest.NewStore(lessonDir, s.logger)
	var previous *manifest.Manifest
	if store.Exists() {
		previous, err = store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: previous manifest unreadable: %w", name, err)
		}
	}

	m := manifest.New(siteName, p.lessonPath)
	m.VowelsOrder = append([]string(nil), p.vowelsOrder...)
	m.ConsonantsOrder = append([]string(nil), p.consonantsOrder...)
	m.VowelsNoAudio = append([]string(nil), p.vowelsNoAudio...)

	// URL of every recording fetched so far, so rows that share audio
	// can be copied locally instead of re-downloaded.
	fetched := make(map[string]string, len(defs))
	for i, def := range defs {
		target := filepath.Join(lessonDir, def.dir(), def.filename)
		ok := false
		switch {
		case !force && fileExists(target):
			ok = true
		case def.sharesWith != "" && fetched[def.url] != "":
			if err := fileutil.CopyFileVerified(fetched[def.url], target); err != nil {
				s.logger.Warn("shared audio copy failed",
					logging.String("label", def.label), logging.Error(err))
			} else {
				ok = true
			}
		default:
			if err := s.download(ctx, def.url, target); err != nil {
				s.logger.Warn("download failed",
					logging.String("label", def.label), logging.Error(err))
			} else {
				ok = true
			}
		}
		if ok && fetched[def.url] == "" {
			fetched[def.url] = target
		}
		if progress != nil {
			progress(i+1, len(defs), def.label, ok)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		src := &manifest.Source{
			File:            filepath.Join(def.dir(), def.filename),
			Romanization:    def.romanization,
			SourceURL:       def.url,
			Syllables:       append([]string(nil), def.syllables...),
			SharesAudioWith: def.sharesWith,
		}
		if def.kind == manifest.KindColumn {
			m.Columns[def.label] = src
		} else {
			m.Rows[def.label] = src
		}
	}

	syllables, err := p.syllables()
	if err != nil {
		return nil, err
	}
	for _, syllable := range syllables {
		entry, err := tableEntry(syllable)
		if err != nil {
			return nil, err
		}
		m.SyllableTable[syllable] = entry
	}

	if previous != nil {
		m.AdoptState(previous)
	}
	if err := store.Save(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("lesson scraped",
		logging.String(logging.FieldLesson, name),
		logging.Int("columns", len(m.Columns)),
		logging.Int("rows", len(m.Rows)),
		logging.Int("syllables", len(m.SyllableTable)))
	return m, nil
}

// tableEntry derives the syllable-table record for one syllable.
func tableEntry(syllable string) (*manifest.Entry, error) {
	r, _ := utf8.DecodeRuneInString(syllable)
	initial, vowel, _, err := hangul.Decompose(r)
	if err != nil {
		return nil, fmt.Errorf("syllable %q: %w", syllable, err)
	}
	romanized, err := hangul.RomanizeSyllable(r)
	if err != nil {
		return nil, fmt.Errorf("syllable %q: %w", syllable, err)
	}
	return &manifest.Entry{
		Consonant:    string(initial),
		Vowel:        string(vowel),
		Romanization: romanized,
	}, nil
}

// composeRow builds the syllables a consonant row plays, one per vowel.
func composeRow(consonant rune, vowels []string) ([]string, error) {
	out := make([]string, 0, len(vowels))
	for _, v := range vowels {
		vr, _ := utf8.DecodeRuneInString(v)
		syllable, err := hangul.Compose(consonant, vr)
		if err != nil {
			return nil, err
		}
		out = append(out, string(syllable))
	}
	return out, nil
}

// composeColumn builds the syllables a vowel column plays, one per
// consonant.
func composeColumn(vowel rune, consonants []string) ([]string, error) {
	out := make([]string, 0, len(consonants))
	for _, c := range consonants {
		cr, _ := utf8.DecodeRuneInString(c)
		syllable, err := hangul.Compose(cr, vowel)
		if err != nil {
			return nil, err
		}
		out = append(out, string(syllable))
	}
	return out, nil
}

// composeGrid builds the full consonant-by-vowel syllable grid.
func composeGrid(consonants, vowels []string) ([]string, error) {
	out := make([]string, 0, len(consonants)*len(vowels))
	for _, c := range consonants {
		cr, _ := utf8.DecodeRuneInString(c)
		row, err := composeRow(cr, vowels)
		if err != nil {
			return nil, err
		}
		out = append(out, row...)
	}
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
