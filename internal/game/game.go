package game

import (
	"sync"
	"time"

	"partychallenges/internal/challenges"
	"partychallenges/internal/players"
)

type Config struct {
	MaxPlayers       int
	MinPlayers       int
	SpeedBonusPoints int
	SpeedBonusWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxPlayers:       10,
		MinPlayers:       2,
		SpeedBonusPoints: 50,
		SpeedBonusWindow: 10 * time.Second,
	}
}

// Game is one room's state machine: its players, its challenge sequence and
// the current round. All mutating operations take the game's mutex, so a
// room is a single unit of serializability; different games are fully
// independent.
type Game struct {
	mu sync.Mutex

	id     string
	hostID string
	roster *players.Roster
	cfg    Config

	challenges     []challenges.Challenge
	current        int // -1 until the game starts
	started        bool
	ended          bool
	roundStartedAt time.Time
	createdAt      time.Time
}

func New(id string, cfg Config) *Game {
	return &Game{
		id:        id,
		roster:    players.NewRoster(),
		cfg:       cfg,
		current:   -1,
		createdAt: time.Now(),
	}
}

func (g *Game) ID() string {
	return g.id
}

// AddPlayer admits a player, or refreshes name and avatar on re-join. The
// very first player becomes host. Fails only when the room is full.
func (g *Game) AddPlayer(id, name, avatar string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing := g.roster.Get(id); existing != nil {
		existing.Name = name
		if avatar == "" {
			avatar = players.DefaultAvatar
		}
		existing.Avatar = avatar
		return true
	}

	if g.roster.Len() >= g.cfg.MaxPlayers {
		return false
	}

	if g.roster.Len() == 0 {
		g.hostID = id
	}
	g.roster.Add(players.New(id, name, avatar))
	return true
}

// RemovePlayer drops a player. If the host leaves, the next-oldest remaining
// player by join order inherits the role.
func (g *Game) RemovePlayer(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.roster.Remove(id) {
		return false
	}

	if id == g.hostID {
		if oldest, ok := g.roster.Oldest(); ok {
			g.hostID = oldest
		}
	}
	return true
}

func (g *Game) HostID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hostID
}

func (g *Game) IsHost(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return id != "" && id == g.hostID
}

// MinPlayers reports how many players a game needs before it can start.
func (g *Game) MinPlayers() int {
	return g.cfg.MinPlayers
}

func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.Len()
}

func (g *Game) Empty() bool {
	return g.PlayerCount() == 0
}

// SetChallenges installs the challenge sequence for this game instance.
func (g *Game) SetChallenges(cs []challenges.Challenge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.challenges = cs
}

// Start begins the first round. Fails with fewer than MinPlayers players or
// with no challenges configured, leaving state untouched.
func (g *Game) Start() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.roster.Len() < g.cfg.MinPlayers || len(g.challenges) == 0 {
		return false
	}

	g.started = true
	g.ended = false
	g.current = 0
	g.roundStartedAt = time.Now()
	g.roster.ResetRound()
	return true
}

func (g *Game) currentLocked() (challenges.Challenge, bool) {
	if g.current < 0 || g.current >= len(g.challenges) {
		return challenges.Challenge{}, false
	}
	return g.challenges[g.current], true
}

func (g *Game) CurrentChallenge() (challenges.Challenge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentLocked()
}

// NextChallenge advances to the next round, clearing everyone's round state
// and restarting the round timer. Walking off the end of the sequence ends
// the game and reports no challenge.
func (g *Game) NextChallenge() (challenges.Challenge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.current++
	if g.current > len(g.challenges) {
		g.current = len(g.challenges)
	}
	g.roundStartedAt = time.Now()
	g.roster.ResetRound()

	c, ok := g.currentLocked()
	if !ok {
		g.ended = true
	}
	return c, ok
}

// CurrentIndex reports the zero-based index of the current round, -1 before
// the game starts.
func (g *Game) CurrentIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// RoundElapsed reports how long the current round has been running.
func (g *Game) RoundElapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roundStartedAt.IsZero() {
		return 0
	}
	return time.Since(g.roundStartedAt)
}

func (g *Game) HasAnswered(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.roster.Get(id)
	return p != nil && p.Answered
}

func (g *Game) HasNextChallenge() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current+1 < len(g.challenges)
}

// SubmitAnswer records a player's answer for the current round, at most once
// per round, and scores it. Correct quiz answers within the speed-bonus
// window earn extra points.
func (g *Game) SubmitAnswer(id, answer string) (bool, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.roster.Get(id)
	if p == nil || p.Answered {
		return false, 0
	}

	now := time.Now()
	p.RecordAnswer(answer, now)

	c, ok := g.currentLocked()
	if !ok {
		return false, 0
	}

	correct, points := c.CheckAnswer(answer)

	if c.Kind == challenges.KindQuiz && correct && !g.roundStartedAt.IsZero() {
		if now.Sub(g.roundStartedAt) <= g.cfg.SpeedBonusWindow {
			points += g.cfg.SpeedBonusPoints
		}
	}

	if points > 0 {
		p.AddPoints(points)
	}
	return correct, points
}

func (g *Game) AllAnswered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.AllAnswered()
}

// Reset returns the room to the not-started state with a fresh challenge
// sequence. Players keep their identities and names; scores are zeroed.
func (g *Game) Reset(cs []challenges.Challenge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.roster.ResetScores()
	g.challenges = cs
	g.current = -1
	g.started = false
	g.ended = false
	g.roundStartedAt = time.Time{}
}
