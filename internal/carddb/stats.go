package carddb

import (
	"context"
	"fmt"
)

// TierStats counts one tier's cards. A card is new until its first
// review and learned once it has survived two repetitions.
type TierStats struct {
	Tier    int
	Total   int
	New     int
	Learned int
}

// PackStats describes one imported deck.
type PackStats struct {
	ID         string
	Cards      int
	ImportedAt string
}

// Overview is the full picture the stats command renders.
type Overview struct {
	Cards    int
	Learned  int
	Reviews  int
	Tiers    []TierStats
	Packs    []PackStats
	Settings map[string]string
}

// Stats gathers card counts per tier, overall progress, imported packs,
// and the settings table.
func (s *Store) Stats(ctx context.Context) (Overview, error) {
	var o Overview

	rows, err := s.db.QueryContext(ctx, `
		SELECT tier,
		       COUNT(*),
		       SUM(CASE WHEN total_reviews = 0 THEN 1 ELSE 0 END),
		       SUM(CASE WHEN repetitions >= 2 THEN 1 ELSE 0 END)
		FROM cards GROUP BY tier ORDER BY tier`)
	if err != nil {
		return Overview{}, fmt.Errorf("query tiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t TierStats
		if err := rows.Scan(&t.Tier, &t.Total, &t.New, &t.Learned); err != nil {
			return Overview{}, fmt.Errorf("scan tier: %w", err)
		}
		o.Tiers = append(o.Tiers, t)
		o.Cards += t.Total
		o.Learned += t.Learned
	}
	if err := rows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate tiers: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_reviews), 0) FROM cards").Scan(&o.Reviews); err != nil {
		return Overview{}, fmt.Errorf("sum reviews: %w", err)
	}

	packRows, err := s.db.QueryContext(ctx,
		"SELECT pack_id, COALESCE(cards_created, 0), COALESCE(enabled_at, '') FROM enabled_packs ORDER BY pack_id")
	if err != nil {
		return Overview{}, fmt.Errorf("query packs: %w", err)
	}
	defer packRows.Close()
	for packRows.Next() {
		var p PackStats
		if err := packRows.Scan(&p.ID, &p.Cards, &p.ImportedAt); err != nil {
			return Overview{}, fmt.Errorf("scan pack: %w", err)
		}
		o.Packs = append(o.Packs, p)
	}
	if err := packRows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate packs: %w", err)
	}

	o.Settings = make(map[string]string)
	settingRows, err := s.db.QueryContext(ctx, "SELECT key, COALESCE(value, '') FROM settings")
	if err != nil {
		return Overview{}, fmt.Errorf("query settings: %w", err)
	}
	defer settingRows.Close()
	for settingRows.Next() {
		var key, value string
		if err := settingRows.Scan(&key, &value); err != nil {
			return Overview{}, fmt.Errorf("scan setting: %w", err)
		}
		o.Settings[key] = value
	}
	if err := settingRows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate settings: %w", err)
	}
	return o, nil
}
