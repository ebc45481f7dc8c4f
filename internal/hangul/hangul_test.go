package hangul_test

import (
	"testing"

	"github.com/PheelaV/kr-notebook/internal/hangul"
)

func TestComposeOpenSyllables(t *testing.T) {
	cases := []struct {
		initial rune
		vowel   rune
		want    rune
	}{
		{'ㄱ', 'ㅏ', '가'},
		{'ㄴ', 'ㅓ', '너'},
		{'ㅇ', 'ㅢ', '의'},
		{'ㄲ', 'ㅗ', '꼬'},
		{'ㅎ', 'ㅣ', '히'},
	}
	for _, tc := range cases {
		got, err := hangul.Compose(tc.initial, tc.vowel)
		if err != nil {
			t.Fatalf("Compose(%q, %q): %v", tc.initial, tc.vowel, err)
		}
		if got != tc.want {
			t.Errorf("Compose(%q, %q) = %q, want %q", tc.initial, tc.vowel, got, tc.want)
		}
	}
}

func TestComposeRejectsNonJamo(t *testing.T) {
	if _, err := hangul.Compose('a', 'ㅏ'); err == nil {
		t.Error("expected error for non-jamo initial")
	}
	if _, err := hangul.Compose('ㄱ', 'ㄴ'); err == nil {
		t.Error("expected error for consonant in vowel position")
	}
}

func TestDecompose(t *testing.T) {
	initial, vowel, final, err := hangul.Decompose('너')
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if initial != 'ㄴ' || vowel != 'ㅓ' || final != 0 {
		t.Errorf("Decompose(너) = %q %q %d, want ㄴ ㅓ 0", initial, vowel, final)
	}

	_, _, final, err = hangul.Decompose('한')
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if final == 0 {
		t.Error("Decompose(한) reported no final consonant")
	}

	if _, _, _, err := hangul.Decompose('x'); err == nil {
		t.Error("expected error for non-syllable rune")
	}
}

func TestRomanizeSyllable(t *testing.T) {
	cases := []struct {
		syllable rune
		want     string
	}{
		{'가', "ga"},
		{'이', "i"},
		{'꼬', "kko"},
		{'의', "ui"},
		{'줘', "jwo"},
		{'해', "hae"},
	}
	for _, tc := range cases {
		got, err := hangul.RomanizeSyllable(tc.syllable)
		if err != nil {
			t.Fatalf("RomanizeSyllable(%q): %v", tc.syllable, err)
		}
		if got != tc.want {
			t.Errorf("RomanizeSyllable(%q) = %q, want %q", tc.syllable, got, tc.want)
		}
	}

	if _, err := hangul.RomanizeSyllable('한'); err == nil {
		t.Error("expected error for syllable with final consonant")
	}
}

func TestJamoLabel(t *testing.T) {
	cases := []struct {
		jamo rune
		want string
	}{
		{'ㅇ', "ng"},
		{'ㅂ', "b"},
		{'ㅐ', "ae"},
		{'ㄸ', "tt"},
		{'ㅣ', "i"},
	}
	for _, tc := range cases {
		got, err := hangul.JamoLabel(tc.jamo)
		if err != nil {
			t.Fatalf("JamoLabel(%q): %v", tc.jamo, err)
		}
		if got != tc.want {
			t.Errorf("JamoLabel(%q) = %q, want %q", tc.jamo, got, tc.want)
		}
	}

	if _, err := hangul.JamoLabel('q'); err == nil {
		t.Error("expected error for non-jamo rune")
	}
}

func TestNormalizeRecomposesJamo(t *testing.T) {
	decomposed := "가"
	if got := hangul.Normalize(decomposed); got != "가" {
		t.Errorf("Normalize(%q) = %q, want 가", decomposed, got)
	}
	if got := hangul.Normalize("가"); got != "가" {
		t.Errorf("Normalize left precomposed input as %q", got)
	}
}
