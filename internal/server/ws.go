package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"partychallenges/internal/analytics"
	"partychallenges/internal/db"
	"partychallenges/internal/events"
	"partychallenges/internal/game"
	"partychallenges/internal/rooms"
	"partychallenges/internal/utility"
	"partychallenges/internal/wshub"
)

// session is one player's WebSocket connection plus the room it has joined.
type session struct {
	client *wshub.Client
	room   *rooms.Room
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	ctx := r.Context()
	sess := &session{
		client: &wshub.Client{
			PlayerID: uuid.New().String(),
			Conn:     conn,
			Send:     make(chan []byte, 32),
		},
	}
	go sess.client.WritePump(ctx)

	sess.client.Enqueue(wshub.ServerMessage{Type: "connected", Data: map[string]string{
		"player_id": sess.client.PlayerID,
	}})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.handleDisconnect(sess)
			return
		}

		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(sess, "Invalid message")
			continue
		}
		s.dispatch(sess, msg)
	}
}

func (s *Server) dispatch(sess *session, msg wshub.ClientMessage) {
	switch msg.Type {
	case "join_room":
		s.handleJoinRoom(sess, msg)
	case "start_game":
		s.handleStartGame(sess)
	case "submit_answer":
		s.handleSubmitAnswer(sess, msg)
	case "next_round":
		s.handleNextRound(sess)
	case "get_scoreboard":
		s.handleGetScoreboard(sess)
	case "reset_game":
		s.handleResetGame(sess)
	default:
		s.sendError(sess, "Unknown message type: "+msg.Type)
	}
}

func (s *Server) sendError(sess *session, message string) {
	sess.client.Enqueue(wshub.ServerMessage{Type: "error", Data: map[string]string{
		"message": message,
	}})
}

func (s *Server) handleJoinRoom(sess *session, msg wshub.ClientMessage) {
	log.Printf("[Handle:JoinRoom] Player %s joining %s\n", sess.client.PlayerID, msg.RoomID)

	code, err := utility.NormalizeRoomCode(msg.RoomID)
	if err != nil {
		s.sendError(sess, "Invalid room code")
		return
	}
	room := s.Rooms.Get(code)
	if room == nil {
		s.sendError(sess, "Room not found")
		return
	}

	name, err := utility.ValidatePlayerName(msg.Name)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	avatar := msg.Avatar
	if avatar == "" {
		avatar = utility.RandomAvatar()
	}

	// Switching rooms leaves the old one first; a ghost entry would hold up
	// the old room's rounds and keep it alive.
	if old := sess.room; old != nil && old.Code != room.Code {
		sess.room = nil
		old.Hub.Detach(sess.client.PlayerID)
		s.departRoom(old, sess)
	}

	if !room.Game.AddPlayer(sess.client.PlayerID, name, avatar) {
		s.sendError(sess, "Room is full")
		return
	}

	sess.room = room
	sess.client.Name = name
	sess.client.Avatar = avatar
	room.Hub.Register(sess.client)

	if s.DB != nil {
		if err := s.DB.UpsertPlayer(sess.client.PlayerID, name, avatar); err != nil {
			log.Printf("[DB] UpsertPlayer error: %v\n", err)
		}
	}

	summary, _ := room.Game.PlayerSummary(sess.client.PlayerID)

	sess.client.Enqueue(wshub.ServerMessage{Type: "room_joined", Data: map[string]any{
		"room":      room.Game.Snapshot(),
		"player_id": sess.client.PlayerID,
		"is_host":   room.Game.IsHost(sess.client.PlayerID),
	}})
	room.Hub.BroadcastExcept(sess.client.PlayerID, wshub.ServerMessage{Type: "player_joined", Data: map[string]any{
		"player":       summary,
		"player_count": room.Game.PlayerCount(),
	}})
	room.Bus.Publish(events.PlayerJoined, summary)
}

func (s *Server) handleStartGame(sess *session) {
	room := sess.room
	if room == nil {
		s.sendError(sess, "Join a room first")
		return
	}
	if !room.Game.IsHost(sess.client.PlayerID) {
		s.sendError(sess, "Only the host can start the game")
		return
	}
	if !room.Game.Start() {
		if room.Game.PlayerCount() < room.Game.MinPlayers() {
			s.sendError(sess, fmt.Sprintf("Need at least %d players to start", room.Game.MinPlayers()))
		} else {
			s.sendError(sess, "Unable to start the game")
		}
		return
	}

	snap := room.Game.Snapshot()
	if s.DB != nil {
		gameID, err := s.DB.CreateGame(room.Code, snap.HostID, snap.TotalChallenges)
		if err != nil {
			log.Printf("[DB] CreateGame error: %v\n", err)
		} else {
			room.SetRecordID(gameID)
		}
	}

	c, _ := room.Game.CurrentChallenge()
	data := map[string]any{
		"challenge":        c.Payload(),
		"challenge_index":  0,
		"total_challenges": snap.TotalChallenges,
	}
	room.Hub.Broadcast(wshub.ServerMessage{Type: "game_started", Data: data})
	room.Bus.Publish(events.GameStarted, data)
}

func (s *Server) handleSubmitAnswer(sess *session, msg wshub.ClientMessage) {
	room := sess.room
	if room == nil {
		s.sendError(sess, "Join a room first")
		return
	}

	already := room.Game.HasAnswered(sess.client.PlayerID)
	elapsed := room.Game.RoundElapsed()
	round := room.Game.CurrentIndex()
	challenge, haveChallenge := room.Game.CurrentChallenge()

	correct, points := room.Game.SubmitAnswer(sess.client.PlayerID, msg.Answer)

	room.Hub.Send(sess.client.PlayerID, wshub.ServerMessage{Type: "answer_result", Data: map[string]any{
		"correct":       correct,
		"points_earned": points,
	}})

	if s.AnswerBuffer != nil && !already && haveChallenge {
		if gameID := room.RecordID(); gameID != "" {
			select {
			case s.AnswerBuffer <- db.AnswerEvent{
				GameID:        gameID,
				PlayerID:      sess.client.PlayerID,
				Round:         round,
				ChallengeType: string(challenge.Kind),
				Correct:       correct,
				Points:        points,
				AnswerMs:      elapsed.Milliseconds(),
				SubmittedAt:   time.Now(),
			}:
			default:
				log.Println("[DB] Answer buffer full, dropping event")
			}
		}
	}

	if room.Game.AllAnswered() {
		results := room.Game.RoundResults()
		room.Hub.Broadcast(wshub.ServerMessage{Type: "round_results", Data: results})
		room.Bus.Publish(events.RoundResults, results)
	}
}

func (s *Server) handleNextRound(sess *session) {
	room := sess.room
	if room == nil {
		s.sendError(sess, "Join a room first")
		return
	}
	if !room.Game.IsHost(sess.client.PlayerID) {
		s.sendError(sess, "Only the host can advance the game")
		return
	}

	c, ok := room.Game.NextChallenge()
	if ok {
		data := map[string]any{
			"challenge":       c.Payload(),
			"challenge_index": room.Game.CurrentIndex(),
		}
		room.Hub.Broadcast(wshub.ServerMessage{Type: "new_challenge", Data: data})
		room.Bus.Publish(events.NewChallenge, data)
		return
	}

	final := room.Game.FinalResults()
	room.Hub.Broadcast(wshub.ServerMessage{Type: "game_ended", Data: final})
	room.Bus.Publish(events.GameEnded, final)
	s.persistGameResults(room, final)
}

func (s *Server) handleGetScoreboard(sess *session) {
	room := sess.room
	if room == nil {
		s.sendError(sess, "Join a room first")
		return
	}
	room.Hub.Send(sess.client.PlayerID, wshub.ServerMessage{Type: "scoreboard_update", Data: map[string]any{
		"scoreboard": room.Game.Scoreboard(),
	}})
}

func (s *Server) handleResetGame(sess *session) {
	room := sess.room
	if room == nil {
		s.sendError(sess, "Join a room first")
		return
	}
	if !room.Game.IsHost(sess.client.PlayerID) {
		s.sendError(sess, "Only the host can reset the game")
		return
	}

	s.Rooms.ResetGame(room.Code)
	room.SetRecordID("")

	snap := room.Game.Snapshot()
	room.Hub.Broadcast(wshub.ServerMessage{Type: "game_reset", Data: snap})
	room.Bus.Publish(events.GameReset, snap)
}

func (s *Server) handleDisconnect(sess *session) {
	room := sess.room
	if room == nil {
		return
	}
	sess.room = nil
	room.Hub.Unregister(sess.client.PlayerID)
	s.departRoom(room, sess)
}

// departRoom drops the player from the room's game and announces the
// departure to whoever is left. The caller has already taken the player's
// connection out of the room's hub.
func (s *Server) departRoom(room *rooms.Room, sess *session) {
	if !s.Rooms.RemovePlayer(room.Code, sess.client.PlayerID) {
		return
	}
	if s.Rooms.Get(room.Code) == nil {
		// Room dissolved with its last player.
		return
	}

	data := map[string]any{
		"player_id":    sess.client.PlayerID,
		"player_name":  sess.client.Name,
		"new_host":     room.Game.HostID(),
		"player_count": room.Game.PlayerCount(),
	}
	room.Hub.Broadcast(wshub.ServerMessage{Type: "player_left", Data: data})
	room.Bus.Publish(events.PlayerLeft, data)
}

// persistGameResults writes final standings and awards badges once a game
// finishes. Best effort; a database error never interrupts play.
func (s *Server) persistGameResults(room *rooms.Room, final game.FinalResults) {
	if s.DB == nil {
		return
	}
	gameID := room.RecordID()
	if gameID == "" {
		return
	}

	if err := s.DB.EndGame(gameID); err != nil {
		log.Printf("[DB] EndGame error: %v\n", err)
	}
	for i, p := range final.FinalScoreboard {
		if err := s.DB.AddGamePlayer(gameID, p.ID, p.Score, i+1); err != nil {
			log.Printf("[DB] AddGamePlayer error: %v\n", err)
		}
	}

	q := analytics.NewQueries(s.DB)
	for _, p := range final.FinalScoreboard {
		gameStats, err := q.GetPlayerGameStats(gameID, p.ID)
		if err != nil {
			log.Printf("[DB] GetPlayerGameStats error: %v\n", err)
			continue
		}
		for _, b := range analytics.EvaluateGameBadges(*gameStats) {
			gID := gameID
			if err := s.DB.AwardBadge(p.ID, string(b.ID), &gID); err != nil {
				log.Printf("[DB] AwardBadge error: %v\n", err)
			}
		}
		lifeStats, err := q.GetPlayerLifetimeStats(p.ID)
		if err != nil {
			continue
		}
		for _, b := range analytics.EvaluateLifetimeBadges(*lifeStats) {
			if err := s.DB.AwardBadge(p.ID, string(b.ID), nil); err != nil {
				log.Printf("[DB] AwardBadge error: %v\n", err)
			}
		}
	}
}
