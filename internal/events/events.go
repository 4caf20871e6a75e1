package events

type Type string

const (
	PlayerJoined = Type("player_joined")
	PlayerLeft   = Type("player_left")
	GameStarted  = Type("game_started")
	NewChallenge = Type("new_challenge")
	RoundResults = Type("round_results")
	GameEnded    = Type("game_ended")
	GameReset    = Type("game_reset")
)

type Event struct {
	Type    Type
	Payload any
}

// Bus carries one room's lifecycle events to its broadcaster.
type Bus struct {
	Room chan Event
}

func NewBus() *Bus {
	return &Bus{
		Room: make(chan Event, 32),
	}
}

// Publish never blocks; events are dropped if the bus is backed up.
func (b *Bus) Publish(t Type, payload any) {
	select {
	case b.Room <- Event{Type: t, Payload: payload}:
	default:
	}
}
