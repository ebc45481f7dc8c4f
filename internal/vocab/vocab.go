// Package vocab converts vocabulary listings into the flashcard deck
// format the learning app imports. Each entry yields a Korean to
// English card and, optionally, the reverse direction.
package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PheelaV/kr-notebook/internal/fileutil"
)

// DefaultTier is the tier vocabulary cards land in unless overridden.
// Tiers 1 through 4 hold the Hangul recognition cards.
const DefaultTier = 5

// Entry is one vocabulary item as extracted from the lesson PDFs.
type Entry struct {
	Term         string `json:"term"`
	Romanization string `json:"romanization"`
	Translation  string `json:"translation"`
	WordType     string `json:"word_type"`
}

// Card is one flashcard in the deck format the learning app imports.
// AudioHint stays null until a syllable clip is matched to the term.
type Card struct {
	Front       string  `json:"front"`
	MainAnswer  string  `json:"main_answer"`
	Description string  `json:"description"`
	CardType    string  `json:"card_type"`
	Tier        int     `json:"tier"`
	IsReverse   bool    `json:"is_reverse"`
	AudioHint   *string `json:"audio_hint"`
}

// Deck is the top-level cards.json document.
type Deck struct {
	Cards []Card `json:"cards"`
}

// Stats summarizes one conversion run.
type Stats struct {
	Entries int
	Cards   int
	Output  string
}

func describe(e Entry) string {
	return fmt.Sprintf("(%s) - %s", e.Romanization, e.WordType)
}

// CardsFor builds the cards one entry produces: the Korean to English
// card first, then English to Korean when reverse is set.
func CardsFor(e Entry, tier int, reverse bool) []Card {
	cards := []Card{{
		Front:       e.Term,
		MainAnswer:  e.Translation,
		Description: describe(e),
		CardType:    "Vocabulary",
		Tier:        tier,
	}}
	if reverse {
		cards = append(cards, Card{
			Front:       e.Translation,
			MainAnswer:  e.Term,
			Description: describe(e),
			CardType:    "Vocabulary",
			Tier:        tier,
			IsReverse:   true,
		})
	}
	return cards
}

// Convert turns vocabulary entries into a deck, preserving entry order.
func Convert(entries []Entry, tier int, reverse bool) Deck {
	deck := Deck{Cards: make([]Card, 0, len(entries)*2)}
	for _, e := range entries {
		deck.Cards = append(deck.Cards, CardsFor(e, tier, reverse)...)
	}
	return deck
}

// ConvertFile reads a vocabulary.json file, converts it, and writes the
// deck to outputPath.
func ConvertFile(inputPath, outputPath string, tier int, reverse bool) (Stats, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("read vocabulary: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return Stats{}, fmt.Errorf("parse vocabulary %s: %w", inputPath, err)
	}

	deck := Convert(entries, tier, reverse)
	encoded, err := encodeDeck(deck)
	if err != nil {
		return Stats{}, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Stats{}, err
	}
	if err := fileutil.WriteFileAtomic(outputPath, encoded, 0o644); err != nil {
		return Stats{}, fmt.Errorf("write deck: %w", err)
	}

	return Stats{Entries: len(entries), Cards: len(deck.Cards), Output: outputPath}, nil
}

// encodeDeck renders the deck with readable indentation and Korean text
// left unescaped.
func encodeDeck(deck Deck) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(deck); err != nil {
		return nil, fmt.Errorf("encode deck: %w", err)
	}
	return buf.Bytes(), nil
}
