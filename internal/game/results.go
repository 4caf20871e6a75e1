package game

import (
	"sort"
	"time"

	"partychallenges/internal/challenges"
	"partychallenges/internal/players"
)

type PlayerResult struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PlayerAvatar string `json:"player_avatar"`
	Answer       string `json:"answer"`
	Correct      bool   `json:"correct"`
	PointsEarned int    `json:"points_earned"`
}

type RoundResults struct {
	Challenge      *challenges.Payload `json:"challenge"`
	CorrectAnswer  *string             `json:"correct_answer"`
	PlayersResults []PlayerResult      `json:"players_results"`
	Scoreboard     []players.Summary   `json:"scoreboard"`
}

type GameSummary struct {
	TotalPlayers int `json:"total_players"`
	TotalRounds  int `json:"total_rounds"`
}

type FinalResults struct {
	Winner          *players.Summary  `json:"winner"`
	FinalScoreboard []players.Summary `json:"final_scoreboard"`
	TotalChallenges int               `json:"total_challenges"`
	GameSummary     GameSummary       `json:"game_summary"`
}

type Snapshot struct {
	ID                    string              `json:"id"`
	HostID                string              `json:"host_id"`
	Players               []players.Summary   `json:"players"`
	PlayerCount           int                 `json:"player_count"`
	GameStarted           bool                `json:"game_started"`
	GameEnded             bool                `json:"game_ended"`
	CurrentChallengeIndex int                 `json:"current_challenge_index"`
	TotalChallenges       int                 `json:"total_challenges"`
	CreatedAt             string              `json:"created_at"`
	CurrentChallenge      *challenges.Payload `json:"current_challenge,omitempty"`
}

// PlayerSummary returns the wire view of a single player.
func (g *Game) PlayerSummary(id string) (players.Summary, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.roster.Get(id)
	if p == nil {
		return players.Summary{}, false
	}
	return p.Summary(), true
}

func (g *Game) scoreboardLocked() []players.Summary {
	list := g.roster.List()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})

	board := make([]players.Summary, 0, len(list))
	for _, p := range list {
		board = append(board, p.Summary())
	}
	return board
}

// Scoreboard returns player summaries sorted by score, descending. Equal
// scores keep their join order.
func (g *Game) Scoreboard() []players.Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreboardLocked()
}

// RoundResults reports the current round: the challenge, the canonical
// answer (quiz only), every player's answer and a fresh scoreboard.
func (g *Game) RoundResults() RoundResults {
	g.mu.Lock()
	defer g.mu.Unlock()

	results := RoundResults{
		PlayersResults: make([]PlayerResult, 0, g.roster.Len()),
		Scoreboard:     g.scoreboardLocked(),
	}

	c, haveChallenge := g.currentLocked()
	if haveChallenge {
		payload := c.Payload()
		results.Challenge = &payload
		if c.Kind == challenges.KindQuiz && c.Answer != "" {
			answer := c.Answer
			results.CorrectAnswer = &answer
		}
	}

	for _, p := range g.roster.List() {
		result := PlayerResult{
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			PlayerAvatar: p.Avatar,
			Answer:       p.Answer,
		}
		if haveChallenge {
			if p.Answer != "" {
				result.Correct, result.PointsEarned = c.CheckAnswer(p.Answer)
			}
			result.Answer = c.RenderAnswer(p.Answer)
		}
		results.PlayersResults = append(results.PlayersResults, result)
	}

	return results
}

// FinalResults reports the winner, the final scoreboard and game totals.
func (g *Game) FinalResults() FinalResults {
	g.mu.Lock()
	defer g.mu.Unlock()

	board := g.scoreboardLocked()
	final := FinalResults{
		FinalScoreboard: board,
		TotalChallenges: len(g.challenges),
		GameSummary: GameSummary{
			TotalPlayers: g.roster.Len(),
			TotalRounds:  g.current + 1,
		},
	}
	if len(board) > 0 {
		winner := board[0]
		final.Winner = &winner
	}
	return final
}

// Snapshot is the room-info view of the game.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		ID:                    g.id,
		HostID:                g.hostID,
		PlayerCount:           g.roster.Len(),
		GameStarted:           g.started,
		GameEnded:             g.ended,
		CurrentChallengeIndex: g.current,
		TotalChallenges:       len(g.challenges),
		CreatedAt:             g.createdAt.Format(time.RFC3339),
		Players:               make([]players.Summary, 0, g.roster.Len()),
	}
	for _, p := range g.roster.List() {
		snap.Players = append(snap.Players, p.Summary())
	}
	if c, ok := g.currentLocked(); ok && g.started {
		payload := c.Payload()
		snap.CurrentChallenge = &payload
	}
	return snap
}
