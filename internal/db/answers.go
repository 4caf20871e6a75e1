package db

import (
	"fmt"
	"time"
)

type AnswerEvent struct {
	GameID        string
	PlayerID      string
	Round         int
	ChallengeType string
	Correct       bool
	Points        int
	AnswerMs      int64
	SubmittedAt   time.Time
}

func (d *DB) RecordAnswer(ev AnswerEvent) error {
	_, err := d.conn.Exec(`
		INSERT INTO answer_events (game_id, player_id, round, challenge_type, correct, points, answer_ms, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ev.GameID, ev.PlayerID, ev.Round, ev.ChallengeType, ev.Correct, ev.Points, ev.AnswerMs, ev.SubmittedAt)
	if err != nil {
		return fmt.Errorf("recording answer: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordAnswers(events []AnswerEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO answer_events (game_id, player_id, round, challenge_type, correct, points, answer_ms, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.GameID, ev.PlayerID, ev.Round, ev.ChallengeType, ev.Correct, ev.Points, ev.AnswerMs, ev.SubmittedAt); err != nil {
			return fmt.Errorf("recording answer in batch: %w", err)
		}
	}

	return tx.Commit()
}
