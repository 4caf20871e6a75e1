package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partychallenges/internal/db"
	"partychallenges/internal/rooms"
	"partychallenges/internal/utility"
)

type Server struct {
	Rooms        *rooms.Store
	DB           *db.DB              // nil if no database configured
	AnswerBuffer chan db.AnswerEvent // nil if no database configured
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Encoding response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type createRoomRequest struct {
	PlayerName string `json:"player_name"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:CreateRoom] Request Received")

	// Body is optional; the host registers over the WebSocket afterwards.
	var req createRoomRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.PlayerName != "" {
		if _, err := utility.ValidatePlayerName(req.PlayerName); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	room, err := s.Rooms.CreateEmpty()
	if err != nil {
		log.Println(err)
		writeError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	log.Printf("[Handle:CreateRoom] Created room %s\n", room.Code)
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": room.Code})
}

func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	code, err := utility.NormalizeRoomCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room := s.Rooms.Get(code)
	if room == nil {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	writeJSON(w, http.StatusOK, room.Game.Snapshot())
}

// handleEvents streams a room's lifecycle events to spectators over SSE.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	code, err := utility.NormalizeRoomCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room := s.Rooms.Get(code)
	if room == nil {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := room.Broadcaster.Subscribe()
	defer room.Broadcaster.Unsubscribe(msgChan)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgChan:
			data, err := json.Marshal(msg.Data)
			if err != nil {
				log.Printf("[SSE] Marshal error: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"db_error","error":"%s"}`, err.Error())
			return
		}
	}
	fmt.Fprint(w, `{"status":"ok"}`)
}
