package carddb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/PheelaV/kr-notebook/internal/vocab"
)

// ErrPackImported indicates the named pack was already imported into
// this database.
var ErrPackImported = errors.New("pack already imported")

// ImportDeck inserts a deck's cards. When packID is set the import is
// recorded in enabled_packs and refused if that pack was imported
// before, so re-running an import cannot duplicate cards.
func (s *Store) ImportDeck(ctx context.Context, deck vocab.Deck, packID string) (int, error) {
	if packID != "" {
		var existing string
		err := s.db.QueryRowContext(ctx,
			"SELECT pack_id FROM enabled_packs WHERE pack_id = ?", packID).Scan(&existing)
		switch {
		case err == nil:
			return 0, fmt.Errorf("%w: %s", ErrPackImported, packID)
		case !errors.Is(err, sql.ErrNoRows):
			return 0, fmt.Errorf("check pack %s: %w", packID, err)
		}
	}

	count, err := s.insertCards(ctx, deck.Cards, packID)
	if err != nil {
		return 0, err
	}

	if packID != "" {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO enabled_packs (pack_id, enabled_at, cards_created) VALUES (?, ?, ?)",
			packID, time.Now().UTC().Format(time.RFC3339), count)
		if err != nil {
			return 0, fmt.Errorf("record pack %s: %w", packID, err)
		}
	}
	return count, nil
}

// ImportFile loads a cards.json deck from disk and imports it.
func (s *Store) ImportFile(ctx context.Context, path, packID string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read deck: %w", err)
	}
	var deck vocab.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return 0, fmt.Errorf("parse deck %s: %w", path, err)
	}
	if len(deck.Cards) == 0 {
		return 0, fmt.Errorf("deck %s contains no cards", path)
	}
	return s.ImportDeck(ctx, deck, packID)
}
