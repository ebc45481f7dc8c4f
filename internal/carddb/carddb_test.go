package carddb_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/PheelaV/kr-notebook/internal/carddb"
	"github.com/PheelaV/kr-notebook/internal/vocab"
)

func openStore(t *testing.T) (*carddb.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "learning.db")
	store, err := carddb.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func rawExec(t *testing.T, path string, stmts ...string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw connection: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func tierByNumber(t *testing.T, o carddb.Overview, tier int) carddb.TierStats {
	t.Helper()

	for _, ts := range o.Tiers {
		if ts.Tier == tier {
			return ts
		}
	}
	t.Fatalf("tier %d missing from overview: %+v", tier, o.Tiers)
	return carddb.TierStats{}
}

func TestSeedBaselineCreatesFourTiers(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	seeded, err := store.SeedBaseline(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 80 {
		t.Fatalf("seeded %d cards, want 80", seeded)
	}

	o, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if o.Cards != 80 || o.Learned != 0 || o.Reviews != 0 {
		t.Fatalf("fresh overview = %d cards, %d learned, %d reviews", o.Cards, o.Learned, o.Reviews)
	}
	wantTiers := map[int]int{1: 30, 2: 14, 3: 18, 4: 18}
	if len(o.Tiers) != len(wantTiers) {
		t.Fatalf("got %d tiers: %+v", len(o.Tiers), o.Tiers)
	}
	for tier, want := range wantTiers {
		ts := tierByNumber(t, o, tier)
		if ts.Total != want {
			t.Fatalf("tier %d has %d cards, want %d", tier, ts.Total, want)
		}
		if ts.New != want {
			t.Fatalf("tier %d has %d new cards, want all %d", tier, ts.New, want)
		}
	}
	if o.Settings["max_unlocked_tier"] != "1" {
		t.Fatalf("max_unlocked_tier = %q, want 1", o.Settings["max_unlocked_tier"])
	}

	again, err := store.SeedBaseline(ctx)
	if err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	if again != 0 {
		t.Fatalf("re-seed inserted %d cards into a populated database", again)
	}
}

func TestBaselineCardsShape(t *testing.T) {
	cards := carddb.BaselineCards()
	if len(cards) != 80 {
		t.Fatalf("baseline deck has %d cards, want 80", len(cards))
	}

	var forward, reverse *vocab.Card
	for i := range cards {
		switch {
		case cards[i].Front == "ㄱ":
			forward = &cards[i]
		case cards[i].MainAnswer == "ㄱ":
			reverse = &cards[i]
		}
	}
	if forward == nil || reverse == nil {
		t.Fatal("ㄱ recognition and recall cards missing")
	}
	if forward.MainAnswer != "g / k" || !strings.Contains(forward.Description, "kite") {
		t.Fatalf("ㄱ recognition card = %+v", forward)
	}
	if forward.IsReverse || !reverse.IsReverse {
		t.Fatal("direction flags swapped")
	}
	if reverse.Front != "g / k" || reverse.Description != "" {
		t.Fatalf("ㄱ recall card = %+v", reverse)
	}

	var positional, positionalReverse int
	for _, card := range cards {
		if strings.HasPrefix(card.Front, "ㅇ (") {
			positional++
		}
		if strings.HasPrefix(card.MainAnswer, "ㅇ (") {
			positionalReverse++
		}
	}
	if positional != 2 || positionalReverse != 0 {
		t.Fatalf("positional ㅇ cards = %d forward, %d reverse; want 2 and 0", positional, positionalReverse)
	}
}

func TestImportDeckRecordsPack(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if _, err := store.SeedBaseline(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hint := "syllables/na.mp3"
	deck := vocab.Deck{Cards: []vocab.Card{
		{Front: "나라", MainAnswer: "country", Description: "(nara) - noun", CardType: "Vocabulary", Tier: 5},
		{Front: "country", MainAnswer: "나라", Description: "(nara) - noun", CardType: "Vocabulary", Tier: 5, IsReverse: true},
		{Front: "나", MainAnswer: "I, me", CardType: "Vocabulary", Tier: 5, AudioHint: &hint},
	}}

	imported, err := store.ImportDeck(ctx, deck, "htsk-unit0-vocab")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 3 {
		t.Fatalf("imported %d cards, want 3", imported)
	}

	o, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if o.Cards != 83 {
		t.Fatalf("overview counts %d cards, want 83", o.Cards)
	}
	vocabTier := tierByNumber(t, o, 5)
	if vocabTier.Total != 3 || vocabTier.New != 3 {
		t.Fatalf("tier 5 = %+v", vocabTier)
	}
	if len(o.Packs) != 1 || o.Packs[0].ID != "htsk-unit0-vocab" || o.Packs[0].Cards != 3 {
		t.Fatalf("packs = %+v", o.Packs)
	}
	if o.Packs[0].ImportedAt == "" {
		t.Fatal("pack import time not recorded")
	}

	if _, err := store.ImportDeck(ctx, deck, "htsk-unit0-vocab"); !errors.Is(err, carddb.ErrPackImported) {
		t.Fatalf("second import returned %v, want ErrPackImported", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw connection: %v", err)
	}
	defer db.Close()
	var storedHint string
	if err := db.QueryRow("SELECT audio_hint FROM cards WHERE front = ?", "나").Scan(&storedHint); err != nil {
		t.Fatalf("query audio hint: %v", err)
	}
	if storedHint != hint {
		t.Fatalf("stored audio hint = %q, want %q", storedHint, hint)
	}
	var pack string
	if err := db.QueryRow("SELECT pack_id FROM cards WHERE front = ?", "나라").Scan(&pack); err != nil {
		t.Fatalf("query pack id: %v", err)
	}
	if pack != "htsk-unit0-vocab" {
		t.Fatalf("card pack id = %q", pack)
	}
}

func TestImportFileValidation(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if _, err := store.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Fatal("expected an error for a missing deck file")
	}

	empty := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(empty, []byte(`{"cards": []}`), 0o644); err != nil {
		t.Fatalf("write empty deck: %v", err)
	}
	if _, err := store.ImportFile(ctx, empty, ""); err == nil || !strings.Contains(err.Error(), "no cards") {
		t.Fatalf("empty deck import returned %v", err)
	}
}

func TestStatsCountsLearnedCards(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if _, err := store.SeedBaseline(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rawExec(t, path, `
		UPDATE cards SET repetitions = 3, total_reviews = 5, correct_reviews = 4
		WHERE id IN (SELECT id FROM cards WHERE tier = 1 ORDER BY id LIMIT 10)`)

	o, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	tier1 := tierByNumber(t, o, 1)
	if tier1.Learned != 10 || tier1.New != 20 {
		t.Fatalf("tier 1 after reviews = %+v", tier1)
	}
	if o.Learned != 10 || o.Reviews != 50 {
		t.Fatalf("overview after reviews = %d learned, %d reviews", o.Learned, o.Reviews)
	}
}

func TestBackupProducesWorkingCopy(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.SeedBaseline(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	target := filepath.Join(t.TempDir(), "backups", "before_experiment.db")
	if err := store.Backup(ctx, target); err != nil {
		t.Fatalf("backup: %v", err)
	}

	restored, err := carddb.Open(target)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer restored.Close()
	o, err := restored.Stats(ctx)
	if err != nil {
		t.Fatalf("stats on backup: %v", err)
	}
	if o.Cards != 80 {
		t.Fatalf("backup holds %d cards, want 80", o.Cards)
	}

	if err := store.Backup(ctx, target); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("overwriting backup returned %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.db")
	store, err := carddb.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	rawExec(t, path, "UPDATE schema_version SET version = 99")

	if _, err := carddb.Open(path); !errors.Is(err, carddb.ErrSchemaMismatch) {
		t.Fatalf("open returned %v, want ErrSchemaMismatch", err)
	}
}
