package lesson

import (
	"slices"
	"testing"

	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// A trimmed lesson 1 page: one vowel anchor with a site-relative href,
// one consonant anchor with an absolute href and nested markup, plus the
// kinds of anchors the parser must ignore.
const lesson1SampleHTML = `<html><body>
<p><a href="/wp-content/uploads/2013/12/intro.mp3">Click here to hear the introduction</a></p>
<table><tbody><tr>
<td><a href="/wp-content/uploads/2014/01/i.mp3">ㅣ</a></td>
<td><a href="https://cdn.example.com/audio/b.mp3"><strong>ㅂ</strong></a></td>
<td><a href="/unit0/unit0lesson2/">ㅈ</a></td>
<td><a href="/wp-content/uploads/2014/01/i.mp3">ㅣ</a></td>
</tr></tbody></table>
</body></html>`

func TestParseLesson1PageClassifiesAnchors(t *testing.T) {
	defs, err := parseLesson1Page([]byte(lesson1SampleHTML), "https://site.test/unit0/unit0lesson1/")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("parsed %d recordings, want 2", len(defs))
	}

	col := defs[0]
	if col.label != "ㅣ" || col.kind != manifest.KindColumn {
		t.Fatalf("first anchor parsed as %q %v, want vowel column ㅣ", col.label, col.kind)
	}
	if col.romanization != "i" || col.filename != "col_i.mp3" {
		t.Fatalf("column def = %q %q", col.romanization, col.filename)
	}
	if want := "https://site.test/wp-content/uploads/2014/01/i.mp3"; col.url != want {
		t.Fatalf("relative href resolved to %q, want %q", col.url, want)
	}
	wantColumn := []string{"비", "지", "디", "기", "시", "미", "니", "히", "리"}
	if !slices.Equal(col.syllables, wantColumn) {
		t.Fatalf("column syllables = %v, want %v", col.syllables, wantColumn)
	}

	row := defs[1]
	if row.label != "ㅂ" || row.kind != manifest.KindRow {
		t.Fatalf("second anchor parsed as %q %v, want consonant row ㅂ", row.label, row.kind)
	}
	if row.romanization != "b" || row.filename != "row_b.mp3" {
		t.Fatalf("row def = %q %q", row.romanization, row.filename)
	}
	if want := "https://cdn.example.com/audio/b.mp3"; row.url != want {
		t.Fatalf("absolute href rewritten to %q", row.url)
	}
	wantRow := []string{"비", "바", "버", "브", "부", "보"}
	if !slices.Equal(row.syllables, wantRow) {
		t.Fatalf("row syllables = %v, want %v", row.syllables, wantRow)
	}
}

func TestParseLesson1PageFullTable(t *testing.T) {
	defs, err := parseLesson1Page([]byte(lesson1TestPage()), "https://site.test/unit0/unit0lesson1/")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if len(defs) != 15 {
		t.Fatalf("parsed %d recordings, want 15", len(defs))
	}

	var labels []string
	for _, def := range defs {
		labels = append(labels, def.label)
	}
	want := append(slices.Clone(lesson1VowelsOrder), lesson1ConsonantsOrder...)
	if !slices.Equal(labels, want) {
		t.Fatalf("labels = %v, want table order %v", labels, want)
	}
	for _, def := range defs[:6] {
		if def.kind != manifest.KindColumn {
			t.Fatalf("vowel %s parsed as %v", def.label, def.kind)
		}
		if len(def.syllables) != 9 {
			t.Fatalf("column %s lists %d syllables, want 9", def.label, len(def.syllables))
		}
	}
	for _, def := range defs[6:] {
		if def.kind != manifest.KindRow {
			t.Fatalf("consonant %s parsed as %v", def.label, def.kind)
		}
		if len(def.syllables) != 6 {
			t.Fatalf("row %s lists %d syllables, want 6", def.label, len(def.syllables))
		}
	}
}

func TestParseLesson1PageWithoutAnchorsIsEmpty(t *testing.T) {
	defs, err := parseLesson1Page([]byte("<html><body><p>down for maintenance</p></body></html>"), "https://site.test/unit0/unit0lesson1/")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("parsed %d recordings from an empty page", len(defs))
	}
}
