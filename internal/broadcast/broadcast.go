package broadcast

import (
	"sync"

	"partychallenges/internal/events"
)

type Message struct {
	Event string
	Data  any
}

// Broadcaster fans one room's bus events out to spectator subscribers.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan Message]bool
}

func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		clients: make(map[chan Message]bool),
	}
	go func() {
		for ev := range bus.Room {
			b.Broadcast(string(ev.Type), ev.Payload)
		}
	}()
	return b
}

func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Broadcast(event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip subscribers with full channels
		}
	}
}
