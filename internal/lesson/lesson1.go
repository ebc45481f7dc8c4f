package lesson

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// Lesson 1 teaches the basic consonants and vowels through a
// pronunciation table. Every jamo in the table is an anchor whose href
// is the recording: vowel headers play their whole column, consonant
// headers play their whole row.

const lesson1PagePath = "/unit0/unit0lesson1/"

var (
	lesson1VowelsOrder     = []string{"ㅣ", "ㅏ", "ㅓ", "ㅡ", "ㅜ", "ㅗ"}
	lesson1ConsonantsOrder = []string{"ㅂ", "ㅈ", "ㄷ", "ㄱ", "ㅅ", "ㅁ", "ㄴ", "ㅎ", "ㄹ"}

	lesson1Romanization = map[string]string{
		"ㅣ": "i",
		"ㅏ": "a",
		"ㅓ": "eo",
		"ㅡ": "eu",
		"ㅜ": "u",
		"ㅗ": "o",
		"ㅂ": "b",
		"ㅈ": "j",
		"ㄷ": "d",
		"ㄱ": "g",
		"ㅅ": "s",
		"ㅁ": "m",
		"ㄴ": "n",
		"ㅎ": "h",
		"ㄹ": "r",
	}
)

func lesson1Plan() plan {
	return plan{
		name:            "lesson1",
		lessonPath:      "unit0/lesson1",
		vowelsOrder:     lesson1VowelsOrder,
		consonantsOrder: lesson1ConsonantsOrder,
		fetch:           fetchLesson1,
		syllables: func() ([]string, error) {
			return composeGrid(lesson1ConsonantsOrder, lesson1VowelsOrder)
		},
	}
}

func fetchLesson1(ctx context.Context, s *Scraper) ([]sourceDef, error) {
	pageURL := s.base + lesson1PagePath
	body, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseLesson1Page(body, pageURL)
}

// parseLesson1Page extracts the recordings from the pronunciation table.
// Anchors that do not wrap a known jamo are other media on the page and
// are skipped.
func parseLesson1Page(body []byte, pageURL string) ([]sourceDef, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse lesson1 page: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	defs := make([]sourceDef, 0, len(lesson1VowelsOrder)+len(lesson1ConsonantsOrder))
	seen := make(map[string]bool)
	for _, a := range audioAnchors(doc) {
		rom, ok := lesson1Romanization[a.label]
		if !ok || seen[a.label] {
			continue
		}
		seen[a.label] = true

		ref, err := base.Parse(a.href)
		if err != nil {
			return nil, fmt.Errorf("lesson1 anchor %s: %w", a.label, err)
		}
		jamo, _ := utf8.DecodeRuneInString(a.label)

		var def sourceDef
		if slices.Contains(lesson1VowelsOrder, a.label) {
			syllables, err := composeColumn(jamo, lesson1ConsonantsOrder)
			if err != nil {
				return nil, err
			}
			def = sourceDef{
				label:        a.label,
				kind:         manifest.KindColumn,
				romanization: rom,
				filename:     "col_" + rom + ".mp3",
				url:          ref.String(),
				syllables:    syllables,
			}
		} else {
			syllables, err := composeRow(jamo, lesson1VowelsOrder)
			if err != nil {
				return nil, err
			}
			def = sourceDef{
				label:        a.label,
				kind:         manifest.KindRow,
				romanization: rom,
				filename:     "row_" + rom + ".mp3",
				url:          ref.String(),
				syllables:    syllables,
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

type pageAnchor struct {
	label string
	href  string
}

// audioAnchors walks the document and returns every anchor linking to an
// MP3, labeled with its trimmed text content.
func audioAnchors(doc *html.Node) []pageAnchor {
	var anchors []pageAnchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrValue(n, "href")
			if strings.HasSuffix(strings.ToLower(href), ".mp3") {
				anchors = append(anchors, pageAnchor{label: nodeText(n), href: href})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
