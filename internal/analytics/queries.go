package analytics

import (
	"fmt"

	"partychallenges/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetPlayerGameStats(gameID, playerID string) (*PlayerGameStats, error) {
	stats := &PlayerGameStats{
		GameID:   gameID,
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`
		SELECT p.name, p.avatar, gp.final_score
		FROM game_players gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id = $1 AND gp.player_id = $2
	`, gameID, playerID).Scan(&stats.PlayerName, &stats.PlayerAvatar, &stats.Score)
	if err != nil {
		return nil, fmt.Errorf("getting game player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as answers,
			COUNT(*) FILTER (WHERE correct) as correct,
			COALESCE(AVG(answer_ms), 0) as avg_answer,
			COALESCE(MIN(answer_ms), 0) as fastest
		FROM answer_events
		WHERE game_id = $1 AND player_id = $2
	`, gameID, playerID).Scan(&stats.Answers, &stats.Correct, &stats.AvgAnswerMs, &stats.FastestMs)
	if err != nil {
		return nil, fmt.Errorf("getting answer stats: %w", err)
	}

	if stats.Answers > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Answers) * 100
	}

	return stats, nil
}

func (q *Queries) GetPlayerLifetimeStats(playerID string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`SELECT name, avatar FROM players WHERE id = $1`, playerID).
		Scan(&stats.PlayerName, &stats.PlayerAvatar)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as games_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_game,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM game_players
		WHERE player_id = $1
	`, playerID).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.BestGame, &stats.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	// Win streak counts consecutive first-place finishes, most recent first
	rows, err := q.DB.Query(`
		SELECT gp.rank
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.player_id = $1 AND g.ended_at IS NOT NULL
		ORDER BY g.ended_at DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		if rank == 1 {
			streak++
		} else {
			break
		}
	}
	stats.WinStreak = streak

	stats.Badges = EvaluateLifetimeBadges(*stats)

	// Persisted badges include game-scoped awards the lifetime rules can't
	// re-derive; merge them in without duplicates.
	earned := make(map[BadgeID]bool, len(stats.Badges))
	for _, b := range stats.Badges {
		earned[b.ID] = true
	}
	records, err := q.DB.PlayerBadges(playerID)
	if err != nil {
		return nil, fmt.Errorf("listing badges: %w", err)
	}
	for _, rec := range records {
		b, ok := AllBadges[BadgeID(rec.BadgeID)]
		if !ok || earned[b.ID] {
			continue
		}
		earned[b.ID] = true
		stats.Badges = append(stats.Badges, b)
	}

	return stats, nil
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "score":
		query = `
			SELECT p.id, p.name, p.avatar, COALESCE(SUM(gp.final_score), 0) as value
			FROM players p
			JOIN game_players gp ON gp.player_id = p.id
			GROUP BY p.id, p.name, p.avatar
			ORDER BY value DESC
			LIMIT $1`
	case "wins":
		query = `
			SELECT p.id, p.name, p.avatar, COUNT(*) FILTER (WHERE gp.rank = 1) as value
			FROM players p
			JOIN game_players gp ON gp.player_id = p.id
			GROUP BY p.id, p.name, p.avatar
			ORDER BY value DESC
			LIMIT $1`
	case "correct":
		query = `
			SELECT p.id, p.name, p.avatar, COUNT(*) FILTER (WHERE ae.correct) as value
			FROM players p
			JOIN answer_events ae ON ae.player_id = p.id
			GROUP BY p.id, p.name, p.avatar
			ORDER BY value DESC
			LIMIT $1`
	case "fastest":
		query = `
			SELECT p.id, p.name, p.avatar, COALESCE(MIN(ae.answer_ms), 0) as value
			FROM players p
			JOIN answer_events ae ON ae.player_id = p.id AND ae.correct
			GROUP BY p.id, p.name, p.avatar
			ORDER BY value ASC
			LIMIT $1`
	case "accuracy":
		query = `
			SELECT p.id, p.name, p.avatar,
				COALESCE(ROUND(COUNT(*) FILTER (WHERE ae.correct)::numeric / NULLIF(COUNT(*), 0) * 100)::int, 0) as value
			FROM players p
			JOIN answer_events ae ON ae.player_id = p.id
			GROUP BY p.id, p.name, p.avatar
			ORDER BY value DESC
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.PlayerAvatar, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, nil
}

func (q *Queries) GetGameRecap(gameID string) (*GameRecap, error) {
	recap := &GameRecap{GameID: gameID}

	err := q.DB.QueryRow(`
		SELECT room_code, started_at, ended_at FROM games WHERE id = $1
	`, gameID).Scan(&recap.RoomCode, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}

	rows, err := q.DB.Query(`
		SELECT gp.player_id FROM game_players gp WHERE gp.game_id = $1 ORDER BY gp.rank
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game players: %w", err)
	}
	defer rows.Close()

	var playerIDs []string
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		playerIDs = append(playerIDs, playerID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, playerID := range playerIDs {
		stats, err := q.GetPlayerGameStats(gameID, playerID)
		if err != nil {
			return nil, err
		}
		recap.Players = append(recap.Players, *stats)
	}

	return recap, nil
}
