package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
	Name   string `json:"player_name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	PlayerID string
	Name     string
	Avatar   string
	Conn     *websocket.Conn
	Send     chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Enqueue marshals and queues a message for this client alone, dropping it
// if the send buffer is full. Works before the client joins any hub.
func (c *Client) Enqueue(msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// Hub manages one room's WebSocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.PlayerID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[playerID]; ok {
		close(c.Send)
		delete(h.clients, playerID)
	}
}

// Detach removes a client without closing its Send channel, for a
// connection moving to another hub.
func (h *Hub) Detach(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, playerID)
}

func encode(msg ServerMessage) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return nil, false
	}
	return data, true
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		// Drop message if channel full
	}
}

// Broadcast sends a message to every client in the room.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.deliver(c, data)
	}
}

// BroadcastExcept sends a message to all clients except the sender.
func (h *Hub) BroadcastExcept(senderID string, msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id == senderID {
			continue
		}
		h.deliver(c, data)
	}
}

// Send delivers a message to a single client.
func (h *Hub) Send(playerID string, msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[playerID]; ok {
		h.deliver(c, data)
	}
}
