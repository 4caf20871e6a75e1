package rooms

import (
	"fmt"
	"sync"
	"time"

	"partychallenges/internal/broadcast"
	"partychallenges/internal/challenges"
	"partychallenges/internal/events"
	"partychallenges/internal/game"
	"partychallenges/internal/wshub"
)

// Store is the process-wide registry of rooms. It owns the challenge pool;
// each room it creates draws its own random challenge sample from it.
type Store struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	pool    []challenges.Challenge
	cfg     game.Config
	perGame int
}

func NewStore(pool []challenges.Challenge, cfg game.Config, challengesPerGame int) *Store {
	return &Store{
		rooms:   make(map[string]*Room),
		pool:    pool,
		cfg:     cfg,
		perGame: challengesPerGame,
	}
}

func (s *Store) sample() []challenges.Challenge {
	return challenges.Sample(s.pool, s.perGame)
}

// Create allocates a room with a fresh code and challenge sample. A non-empty
// hostID seeds the room with its first player (the host); an empty one leaves
// the room empty for transports that register the host after a handshake.
func (s *Store) Create(hostID, hostName, hostAvatar string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		g := game.New(code, s.cfg)
		g.SetChallenges(s.sample())
		if hostID != "" && hostName != "" {
			g.AddPlayer(hostID, hostName, hostAvatar)
		}

		bus := events.NewBus()
		room := &Room{
			Code:        code,
			Game:        g,
			Bus:         bus,
			Broadcaster: broadcast.NewBroadcaster(bus),
			Hub:         wshub.NewHub(),
			CreatedAt:   time.Now(),
		}
		s.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

// CreateEmpty allocates a room with no players yet.
func (s *Store) CreateEmpty() (*Room, error) {
	return s.Create("", "", "")
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// RemovePlayer delegates to the room and deletes the room once it has no
// players left. Empty rooms are never retained.
func (s *Store) RemovePlayer(code, playerID string) bool {
	room := s.Get(code)
	if room == nil {
		return false
	}

	removed := room.Game.RemovePlayer(playerID)

	if room.Game.Empty() {
		s.Delete(code)
	}
	return removed
}

func (s *Store) IsHost(code, playerID string) bool {
	room := s.Get(code)
	if room == nil {
		return false
	}
	return room.Game.IsHost(playerID)
}

// ResetGame returns a room to the not-started state with a fresh challenge
// sample, keeping its players.
func (s *Store) ResetGame(code string) bool {
	room := s.Get(code)
	if room == nil {
		return false
	}
	room.Game.Reset(s.sample())
	return true
}

// CleanupEmptyRooms deletes every room with no players and reports how many
// were removed. It is meant to be invoked periodically from outside.
func (s *Store) CleanupEmptyRooms() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, room := range s.rooms {
		if room.Game.Empty() {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}
