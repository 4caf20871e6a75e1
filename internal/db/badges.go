package db

import (
	"fmt"
	"time"
)

// BadgeRecord is one persisted achievement for a player.
type BadgeRecord struct {
	BadgeID   string
	GameID    *string // set when the badge was earned in a specific game
	AwardedAt time.Time
}

// AwardBadge persists an achievement once; re-awarding is a no-op.
func (d *DB) AwardBadge(playerID, badgeID string, gameID *string) error {
	_, err := d.conn.Exec(`
		INSERT INTO player_badges (player_id, badge_id, game_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, badge_id) DO NOTHING
	`, playerID, badgeID, gameID)
	if err != nil {
		return fmt.Errorf("awarding badge: %w", err)
	}
	return nil
}

// PlayerBadges lists a player's achievements in the order they were earned.
func (d *DB) PlayerBadges(playerID string) ([]BadgeRecord, error) {
	rows, err := d.conn.Query(`
		SELECT badge_id, game_id, awarded_at FROM player_badges
		WHERE player_id = $1
		ORDER BY awarded_at
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing badges: %w", err)
	}
	defer rows.Close()

	var records []BadgeRecord
	for rows.Next() {
		var rec BadgeRecord
		if err := rows.Scan(&rec.BadgeID, &rec.GameID, &rec.AwardedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
