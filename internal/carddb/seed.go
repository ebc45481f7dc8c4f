package carddb

import (
	"context"
	"fmt"

	"github.com/PheelaV/kr-notebook/internal/vocab"
)

// Card types used by the baseline deck. The study app keys its practice
// modes off these.
const (
	typeConsonant          = "Consonant"
	typeVowel              = "Vowel"
	typeAspiratedConsonant = "AspiratedConsonant"
	typeTenseConsonant     = "TenseConsonant"
	typeCompoundVowel      = "CompoundVowel"
)

type seedLetter struct {
	front       string
	sound       string
	description string
}

// Tier 1: the basic consonants and vowels from lesson 1.
var tier1Consonants = []seedLetter{
	{"ㄱ", "g / k", "Like 'g' in 'go' at the start, 'k' in 'kite' at the end"},
	{"ㄴ", "n", "Like 'n' in 'no'"},
	{"ㄷ", "d / t", "Like 'd' in 'do' at the start, 't' in 'top' at the end"},
	{"ㄹ", "r / l", "Like 'r' in 'run' at the start, 'l' in 'ball' at the end"},
	{"ㅁ", "m", "Like 'm' in 'mom'"},
	{"ㅂ", "b / p", "Like 'b' in 'boy' at the start, 'p' in 'put' at the end"},
	{"ㅅ", "s", "Like 's' in 'sun'"},
	{"ㅈ", "j", "Like 'j' in 'just'"},
	{"ㅎ", "h", "Like 'h' in 'hi'"},
}

var tier1Vowels = []seedLetter{
	{"ㅏ", "a", "Like 'a' in 'father'"},
	{"ㅓ", "eo", "Like 'u' in 'fun' or 'uh'"},
	{"ㅗ", "o", "Like 'o' in 'go'"},
	{"ㅜ", "u", "Like 'oo' in 'moon'"},
	{"ㅡ", "eu", "Like 'u' in 'put', with unrounded lips"},
	{"ㅣ", "i", "Like 'ee' in 'see'"},
}

// Tier 2: ㅇ in both positions plus the y-vowels and ㅐ/ㅔ.
var tier2Vowels = []seedLetter{
	{"ㅑ", "ya", "Like 'ya' in 'yacht'"},
	{"ㅕ", "yeo", "Like 'yu' in 'yuck'"},
	{"ㅛ", "yo", "Like 'yo' in 'yoga'"},
	{"ㅠ", "yu", "Like 'you'"},
	{"ㅐ", "ae", "Like 'a' in 'can' or 'e' in 'bed'"},
	{"ㅔ", "e", "Like 'e' in 'bed' (sounds same as ㅐ in modern Korean)"},
}

// Tier 3: aspirated and tense consonants from lesson 2.
var tier3Aspirated = []seedLetter{
	{"ㅋ", "k (aspirated)", "Stronger 'k' with a puff of breath, like 'k' in 'kick'"},
	{"ㅍ", "p (aspirated)", "Stronger 'p' with a puff of breath, like 'p' in 'pop'"},
	{"ㅌ", "t (aspirated)", "Stronger 't' with a puff of breath, like 't' in 'top'"},
	{"ㅊ", "ch (aspirated)", "Stronger 'ch' with a puff of breath, like 'ch' in 'church'"},
}

var tier3Tense = []seedLetter{
	{"ㄲ", "kk (tense)", "Tense 'k' with no breath, like 'ck' in 'sticky'"},
	{"ㅃ", "pp (tense)", "Tense 'p' with no breath, like 'pp' in 'happy'"},
	{"ㄸ", "tt (tense)", "Tense 't' with no breath, like 'tt' in 'butter'"},
	{"ㅆ", "ss (tense)", "Tense 's', like 'ss' in 'hiss'"},
	{"ㅉ", "jj (tense)", "Tense 'j', like 'dg' in 'edge'"},
}

// Tier 4: compound vowels from lesson 3.
var tier4Compound = []seedLetter{
	{"ㅘ", "wa", "Like 'wa' in 'want'"},
	{"ㅝ", "wo", "Like 'wo' in 'won'"},
	{"ㅟ", "wi", "Like 'wee'"},
	{"ㅚ", "oe", "Like 'we' in 'wet'"},
	{"ㅢ", "ui", "Like 'oo-ee' said quickly"},
	{"ㅙ", "wae", "Like 'wa' in 'wax'"},
	{"ㅞ", "we", "Like 'we' in 'wet'"},
	{"ㅒ", "yae", "Like 'ya' in 'yam'"},
	{"ㅖ", "ye", "Like 'ye' in 'yes'"},
}

func letterPair(l seedLetter, cardType string, tier int) []vocab.Card {
	return []vocab.Card{
		{Front: l.front, MainAnswer: l.sound, Description: l.description, CardType: cardType, Tier: tier},
		{Front: l.sound, MainAnswer: l.front, CardType: cardType, Tier: tier, IsReverse: true},
	}
}

// BaselineCards returns the Hangul recognition deck the study app
// starts from: 80 cards across four tiers. Every letter gets a
// recognition card and a recall card, except the positional ㅇ cards
// which only make sense in one direction.
func BaselineCards() []vocab.Card {
	cards := make([]vocab.Card, 0, 80)
	for _, l := range tier1Consonants {
		cards = append(cards, letterPair(l, typeConsonant, 1)...)
	}
	for _, l := range tier1Vowels {
		cards = append(cards, letterPair(l, typeVowel, 1)...)
	}

	cards = append(cards, vocab.Card{
		Front:       "ㅇ (initial)",
		MainAnswer:  "Silent",
		Description: "No sound when at the start of a syllable",
		CardType:    typeConsonant,
		Tier:        2,
	})
	cards = append(cards, vocab.Card{
		Front:       "ㅇ (final)",
		MainAnswer:  "ng",
		Description: "Like 'ng' in 'sing' when at the end",
		CardType:    typeConsonant,
		Tier:        2,
	})
	for _, l := range tier2Vowels {
		cards = append(cards, letterPair(l, typeVowel, 2)...)
	}

	for _, l := range tier3Aspirated {
		cards = append(cards, letterPair(l, typeAspiratedConsonant, 3)...)
	}
	for _, l := range tier3Tense {
		cards = append(cards, letterPair(l, typeTenseConsonant, 3)...)
	}

	for _, l := range tier4Compound {
		cards = append(cards, letterPair(l, typeCompoundVowel, 4)...)
	}
	return cards
}

// SeedBaseline inserts the baseline deck into an empty database and
// reports how many cards it created. A database that already holds
// cards is left untouched and returns zero.
func (s *Store) SeedBaseline(ctx context.Context) (int, error) {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&existing); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}
	return s.insertCards(ctx, BaselineCards(), "")
}

func (s *Store) insertCards(ctx context.Context, cards []vocab.Card, packID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (front, main_answer, description, card_type, tier, audio_hint, is_reverse, pack_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		var audio any
		if card.AudioHint != nil {
			audio = *card.AudioHint
		}
		if _, err := stmt.ExecContext(ctx,
			card.Front, card.MainAnswer, nullIfEmpty(card.Description),
			card.CardType, card.Tier, audio, boolToInt(card.IsReverse), nullIfEmpty(packID),
		); err != nil {
			return 0, fmt.Errorf("insert card %q: %w", card.Front, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit inserts: %w", err)
	}
	return len(cards), nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
