// Package hangul provides composition, decomposition, and romanization
// helpers for precomposed Korean syllable blocks. Only the modern jamo
// inventory is covered, which is all the lesson material uses.
package hangul

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

const (
	syllableBase = 0xAC00
	syllableLast = 0xD7A3

	jungseongCount = 21
	jongseongCount = 28
)

// Initial consonants and medial vowels in Unicode dictionary order. The
// index of a jamo in these tables is the value used by the syllable
// block arithmetic.
var (
	choseong = []rune("ㄱㄲㄴㄷㄸㄹㅁㅂㅃㅅㅆㅇㅈㅉㅊㅋㅌㅍㅎ")
	jungseong = []rune("ㅏㅐㅑㅒㅓㅔㅕㅖㅗㅘㅙㅚㅛㅜㅝㅞㅟㅠㅡㅢㅣ")
)

var (
	choseongIndex  = indexRunes(choseong)
	jungseongIndex = indexRunes(jungseong)
)

// Revised Romanization for consonants in initial position. The null
// consonant ㅇ is silent before a vowel.
var initialRoman = map[rune]string{
	'ㄱ': "g",
	'ㄲ': "kk",
	'ㄴ': "n",
	'ㄷ': "d",
	'ㄸ': "tt",
	'ㄹ': "r",
	'ㅁ': "m",
	'ㅂ': "b",
	'ㅃ': "pp",
	'ㅅ': "s",
	'ㅆ': "ss",
	'ㅇ': "",
	'ㅈ': "j",
	'ㅉ': "jj",
	'ㅊ': "ch",
	'ㅋ': "k",
	'ㅌ': "t",
	'ㅍ': "p",
	'ㅎ': "h",
}

var vowelRoman = map[rune]string{
	'ㅏ': "a",
	'ㅐ': "ae",
	'ㅑ': "ya",
	'ㅒ': "yae",
	'ㅓ': "eo",
	'ㅔ': "e",
	'ㅕ': "yeo",
	'ㅖ': "ye",
	'ㅗ': "o",
	'ㅘ': "wa",
	'ㅙ': "wae",
	'ㅚ': "oe",
	'ㅛ': "yo",
	'ㅜ': "u",
	'ㅝ': "wo",
	'ㅞ': "we",
	'ㅟ': "wi",
	'ㅠ': "yu",
	'ㅡ': "eu",
	'ㅢ': "ui",
	'ㅣ': "i",
}

func indexRunes(rs []rune) map[rune]int {
	m := make(map[rune]int, len(rs))
	for i, r := range rs {
		m[r] = i
	}
	return m
}

// IsSyllable reports whether r falls inside the precomposed Hangul
// syllable block.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableLast
}

// IsConsonant reports whether r is a modern initial consonant jamo.
func IsConsonant(r rune) bool {
	_, ok := choseongIndex[r]
	return ok
}

// IsVowel reports whether r is a modern medial vowel jamo.
func IsVowel(r rune) bool {
	_, ok := jungseongIndex[r]
	return ok
}

// Compose builds the open syllable formed by an initial consonant and a
// medial vowel, with no final consonant.
func Compose(initial, vowel rune) (rune, error) {
	ci, ok := choseongIndex[initial]
	if !ok {
		return 0, fmt.Errorf("hangul: %q is not an initial consonant", initial)
	}
	vi, ok := jungseongIndex[vowel]
	if !ok {
		return 0, fmt.Errorf("hangul: %q is not a vowel", vowel)
	}
	return rune(syllableBase + ci*jungseongCount*jongseongCount + vi*jongseongCount), nil
}

// Decompose splits a precomposed syllable into its initial consonant,
// medial vowel, and final consonant index. A final index of zero means
// the syllable is open.
func Decompose(r rune) (initial, vowel rune, final int, err error) {
	if !IsSyllable(r) {
		return 0, 0, 0, fmt.Errorf("hangul: %q is not a Hangul syllable", r)
	}
	offset := int(r - syllableBase)
	initial = choseong[offset/(jungseongCount*jongseongCount)]
	vowel = jungseong[(offset%(jungseongCount*jongseongCount))/jongseongCount]
	final = offset % jongseongCount
	return initial, vowel, final, nil
}

// RomanizeSyllable renders an open syllable in Revised Romanization.
// Syllables carrying a final consonant are rejected because the lesson
// recordings only cover consonant-vowel pairs.
func RomanizeSyllable(r rune) (string, error) {
	initial, vowel, final, err := Decompose(r)
	if err != nil {
		return "", err
	}
	if final != 0 {
		return "", fmt.Errorf("hangul: syllable %q has a final consonant", r)
	}
	return initialRoman[initial] + vowelRoman[vowel], nil
}

// JamoLabel renders a standalone jamo as a filename-safe ASCII label.
// Unlike initial position, a standalone ㅇ is labelled by its final
// sound "ng" so that it never produces an empty label.
func JamoLabel(j rune) (string, error) {
	if j == 'ㅇ' {
		return "ng", nil
	}
	if s, ok := initialRoman[j]; ok {
		return s, nil
	}
	if s, ok := vowelRoman[j]; ok {
		return s, nil
	}
	return "", fmt.Errorf("hangul: %q is not a modern jamo", j)
}

// Normalize recomposes a string to NFC so that keyboard input arriving
// as decomposed jamo sequences matches the precomposed syllables used
// throughout the manifest.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
