package rooms

import (
	"sync"
	"time"

	"partychallenges/internal/broadcast"
	"partychallenges/internal/events"
	"partychallenges/internal/game"
	"partychallenges/internal/wshub"
)

type Room struct {
	Code        string
	Game        *game.Game
	Bus         *events.Bus
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	CreatedAt   time.Time

	mu       sync.Mutex
	recordID string
}

// SetRecordID stores the database identifier of the game in progress.
func (r *Room) SetRecordID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordID = id
}

// RecordID returns the database identifier of the game in progress, empty
// when no database is configured or no game has started.
func (r *Room) RecordID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordID
}
