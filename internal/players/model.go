package players

import (
	"strings"
	"time"
)

const DefaultAvatar = "👤"

type Player struct {
	ID       string
	Name     string
	Avatar   string
	Score    int
	JoinedAt time.Time

	// Per-round state, cleared on every round transition.
	Answered   bool
	Answer     string
	AnsweredAt time.Time
}

func New(id, name, avatar string) *Player {
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return &Player{
		ID:       id,
		Name:     name,
		Avatar:   avatar,
		JoinedAt: time.Now(),
	}
}

// RecordAnswer stores the normalized answer and marks the player as having
// answered the current round.
func (p *Player) RecordAnswer(answer string, at time.Time) {
	p.Answer = strings.ToLower(strings.TrimSpace(answer))
	p.AnsweredAt = at
	p.Answered = true
}

func (p *Player) AddPoints(points int) {
	p.Score += points
}

// ResetRound clears per-round answer state.
func (p *Player) ResetRound() {
	p.Answered = false
	p.Answer = ""
	p.AnsweredAt = time.Time{}
}

// Summary is the wire representation of a player.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Score    int    `json:"score"`
	JoinedAt string `json:"joined_at"`
	Answered bool   `json:"answered_current_round"`
}

func (p *Player) Summary() Summary {
	return Summary{
		ID:       p.ID,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Score:    p.Score,
		JoinedAt: p.JoinedAt.Format(time.RFC3339),
		Answered: p.Answered,
	}
}
