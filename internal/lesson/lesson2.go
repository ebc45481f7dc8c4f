package lesson

import (
	"context"
	"unicode/utf8"

	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// Lesson 2 adds the silent/ng consonant, the tense doubles, and the
// aspirated consonants. The page carries no parseable table, but the
// recordings sit at stable upload paths, one row per consonant covering
// the six lesson 1 vowels.

const lesson2AudioPath = "/wp-content/uploads/2014/01/"

var (
	lesson2ConsonantsOrder = []string{"ㅇ", "ㄲ", "ㅋ", "ㅃ", "ㅍ", "ㅉ", "ㅊ", "ㄸ", "ㅌ", "ㅆ"}

	lesson2Consonants = map[string]struct {
		romanization string
		file         string
	}{
		"ㅇ": {"ng", "O.mp3"},
		"ㄲ": {"kk", "Kk.mp3"},
		"ㅃ": {"pp", "Pp.mp3"},
		"ㅉ": {"jj", "Jj.mp3"},
		"ㄸ": {"tt", "Dd.mp3"},
		"ㅆ": {"ss", "Ss.mp3"},
		"ㅋ": {"k", "K1.mp3"},
		"ㅍ": {"p", "P.mp3"},
		"ㅊ": {"ch", "Ch.mp3"},
		"ㅌ": {"t", "T.mp3"},
	}
)

func lesson2Plan() plan {
	return plan{
		name:            "lesson2",
		lessonPath:      "unit0/lesson2",
		vowelsOrder:     lesson1VowelsOrder,
		consonantsOrder: lesson2ConsonantsOrder,
		fetch:           fetchLesson2,
		syllables: func() ([]string, error) {
			return composeGrid(lesson2ConsonantsOrder, lesson1VowelsOrder)
		},
	}
}

func fetchLesson2(ctx context.Context, s *Scraper) ([]sourceDef, error) {
	defs := make([]sourceDef, 0, len(lesson2ConsonantsOrder))
	for _, label := range lesson2ConsonantsOrder {
		info := lesson2Consonants[label]
		jamo, _ := utf8.DecodeRuneInString(label)
		syllables, err := composeRow(jamo, lesson1VowelsOrder)
		if err != nil {
			return nil, err
		}
		defs = append(defs, sourceDef{
			label:        label,
			kind:         manifest.KindRow,
			romanization: info.romanization,
			filename:     "row_" + info.romanization + ".mp3",
			url:          s.base + lesson2AudioPath + info.file,
			syllables:    syllables,
		})
	}
	return defs, nil
}
