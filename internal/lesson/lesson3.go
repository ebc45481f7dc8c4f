package lesson

import (
	"context"

	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// Lesson 3 covers combined vowels and diphthongs. Rows are keyed by
// vowel, each demonstrating the vowel with a varying set of consonants.
// ㅔ is pronounced the same as ㅐ and the site publishes one recording
// for both; ㅢ sits under a later upload path than the rest. The four
// y-vowels are taught without dedicated audio.

const (
	lesson3AudioPath    = "/wp-content/uploads/2014/08/"
	lesson3AudioPathAlt = "/wp-content/uploads/2016/01/"
)

var (
	lesson3VowelsOrder = []string{"ㅐ", "ㅔ", "ㅒ", "ㅖ", "ㅘ", "ㅙ", "ㅚ", "ㅝ", "ㅞ", "ㅟ", "ㅢ"}

	lesson3VowelsNoAudio = []string{"ㅑ", "ㅕ", "ㅠ", "ㅛ"}

	lesson3Vowels = map[string]struct {
		romanization string
		file         string
		path         string
		syllables    []string
		sharesWith   string
	}{
		"ㅐ": {"ae", "Unit0Lesson31.mp3", lesson3AudioPath,
			[]string{"애", "배", "재", "대", "개", "새", "매", "내", "해", "래"}, ""},
		"ㅔ": {"e", "Unit0Lesson31.mp3", lesson3AudioPath,
			[]string{"에", "베", "제", "데", "게", "세", "메", "네", "헤", "레"}, "ㅐ"},
		"ㅒ": {"yae", "Unit0Lesson39.mp3", lesson3AudioPath,
			[]string{"얘"}, ""},
		"ㅖ": {"ye", "Unit0Lesson37.mp3", lesson3AudioPath,
			[]string{"예", "계", "혜"}, ""},
		"ㅘ": {"wa", "Unit0Lesson35.mp3", lesson3AudioPath,
			[]string{"와", "봐", "좌", "돠", "과", "솨", "놔"}, ""},
		"ㅙ": {"wae", "Unit0Lesson38.mp3", lesson3AudioPath,
			[]string{"왜"}, ""},
		"ㅚ": {"oe", "Unit0Lesson34.mp3", lesson3AudioPath,
			[]string{"외", "뵈", "죄", "되", "괴", "쇠", "뇌"}, ""},
		"ㅝ": {"wo", "Unit0Lesson33.mp3", lesson3AudioPath,
			[]string{"워", "붜", "줘", "둬", "궈", "숴", "눠"}, ""},
		"ㅞ": {"we", "Unit0Lesson310.mp3", lesson3AudioPath,
			[]string{"웨"}, ""},
		"ㅟ": {"wi", "Unit0Lesson32.mp3", lesson3AudioPath,
			[]string{"위", "뷔", "쥐", "뒤", "귀", "쉬", "뉘"}, ""},
		"ㅢ": {"ui", "Unit0Pron1.mp3", lesson3AudioPathAlt,
			[]string{"의", "븨", "즤", "듸", "긔", "싀", "늬"}, ""},
	}
)

func lesson3Plan() plan {
	return plan{
		name:          "lesson3",
		lessonPath:    "unit0/lesson3",
		vowelsOrder:   lesson3VowelsOrder,
		vowelsNoAudio: lesson3VowelsNoAudio,
		fetch:         fetchLesson3,
		syllables: func() ([]string, error) {
			var out []string
			for _, vowel := range lesson3VowelsOrder {
				out = append(out, lesson3Vowels[vowel].syllables...)
			}
			return out, nil
		},
	}
}

func fetchLesson3(ctx context.Context, s *Scraper) ([]sourceDef, error) {
	defs := make([]sourceDef, 0, len(lesson3VowelsOrder))
	for _, label := range lesson3VowelsOrder {
		info := lesson3Vowels[label]
		defs = append(defs, sourceDef{
			label:        label,
			kind:         manifest.KindRow,
			romanization: info.romanization,
			filename:     "row_" + info.romanization + ".mp3",
			url:          s.base + info.path + info.file,
			syllables:    append([]string(nil), info.syllables...),
			sharesWith:   info.sharesWith,
		})
	}
	return defs, nil
}
