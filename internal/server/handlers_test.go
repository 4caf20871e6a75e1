package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"partychallenges/internal/challenges"
	"partychallenges/internal/game"
	"partychallenges/internal/rooms"
	"partychallenges/internal/wshub"
)

func newTestServer(challengesPerGame int) *Server {
	return &Server{
		Rooms: rooms.NewStore(challenges.Defaults(), game.DefaultConfig(), challengesPerGame),
	}
}

func TestCreateRoom(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/rooms", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/rooms error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	code := body["room_id"]
	if len(code) != 8 {
		t.Errorf("room_id = %q, want 8-character code", code)
	}
	if srv.Rooms.Get(code) == nil {
		t.Error("created room not found in store")
	}
}

func TestCreateRoom_InvalidName(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	body := bytes.NewBufferString(`{"player_name":"a"}`)
	resp, err := http.Post(ts.URL+"/api/rooms", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/rooms error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestRoomInfo(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	room, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/rooms/" + room.Code)
	if err != nil {
		t.Fatalf("GET room info error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if snap.ID != room.Code {
		t.Errorf("snapshot id = %q, want %q", snap.ID, room.Code)
	}
	if snap.GameStarted {
		t.Error("fresh room should not have a started game")
	}
	if snap.TotalChallenges != 3 {
		t.Errorf("total_challenges = %d, want 3", snap.TotalChallenges)
	}
}

func TestRoomInfo_NotFound(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/rooms/ZZZZZZZ2")
	if err != nil {
		t.Fatalf("GET room info error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestRoomInfo_BadCode(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/rooms/nope")
	if err != nil {
		t.Fatalf("GET room info error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestAnalyticsWithoutDB(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	for _, path := range []string{"/analytics/leaderboard", "/analytics/player/x", "/analytics/game/x"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusServiceUnavailable)
		}
	}
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("websocket dial error: %v", err)
	}
	return conn
}

func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) wshub.ServerMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("websocket read error: %v", err)
	}
	var msg wshub.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshaling server message: %v", err)
	}
	return msg
}

func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msg wshub.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshaling client message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("websocket write error: %v", err)
	}
}

func wsExpect(ctx context.Context, t *testing.T, conn *websocket.Conn, wantType string) wshub.ServerMessage {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != wantType {
		t.Fatalf("message type = %q, want %q (data: %v)", msg.Type, wantType, msg.Data)
	}
	return msg
}

func TestWebSocketJoinErrors(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")

	connected := wsExpect(ctx, t, conn, "connected")
	data, ok := connected.Data.(map[string]any)
	if !ok || data["player_id"] == "" {
		t.Fatalf("connected message missing player_id: %v", connected.Data)
	}

	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: "ZZZZZZZ2", Name: "Alice"})
	wsExpect(ctx, t, conn, "error")

	room, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}
	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "a"})
	wsExpect(ctx, t, conn, "error")

	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "start_game"})
	wsExpect(ctx, t, conn, "error")

	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "bogus"})
	wsExpect(ctx, t, conn, "error")
}

func TestWebSocketGameFlow(t *testing.T) {
	srv := newTestServer(1)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}

	host := dialWS(ctx, t, ts)
	defer host.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, host, "connected")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Alice"})
	joined := wsExpect(ctx, t, host, "room_joined")
	joinedData := joined.Data.(map[string]any)
	if joinedData["is_host"] != true {
		t.Error("first joiner should be host")
	}

	guest := dialWS(ctx, t, ts)
	defer guest.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, guest, "connected")

	wsSend(ctx, t, guest, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Bob"})
	guestJoined := wsExpect(ctx, t, guest, "room_joined")
	if guestJoined.Data.(map[string]any)["is_host"] != false {
		t.Error("second joiner should not be host")
	}
	wsExpect(ctx, t, host, "player_joined")

	// Non-host cannot start
	wsSend(ctx, t, guest, wshub.ClientMessage{Type: "start_game"})
	wsExpect(ctx, t, guest, "error")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "start_game"})
	wsExpect(ctx, t, host, "game_started")
	wsExpect(ctx, t, guest, "game_started")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "submit_answer", Answer: "something"})
	wsExpect(ctx, t, host, "answer_result")

	wsSend(ctx, t, guest, wshub.ClientMessage{Type: "submit_answer", Answer: "something else"})
	wsExpect(ctx, t, guest, "answer_result")

	// Everyone answered, round results go to the whole room
	wsExpect(ctx, t, host, "round_results")
	wsExpect(ctx, t, guest, "round_results")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "get_scoreboard"})
	wsExpect(ctx, t, host, "scoreboard_update")

	// Single-challenge game ends on advance
	wsSend(ctx, t, host, wshub.ClientMessage{Type: "next_round"})
	wsExpect(ctx, t, host, "game_ended")
	wsExpect(ctx, t, guest, "game_ended")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "reset_game"})
	reset := wsExpect(ctx, t, host, "game_reset")
	wsExpect(ctx, t, guest, "game_reset")

	snap := reset.Data.(map[string]any)
	if snap["game_started"] != false {
		t.Error("reset game should not be started")
	}
	if snap["player_count"] != float64(2) {
		t.Errorf("player_count after reset = %v, want 2", snap["player_count"])
	}
}

func TestWebSocketSwitchRooms(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	roomA, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}
	roomB, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}

	host := dialWS(ctx, t, ts)
	defer host.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, host, "connected")
	wsSend(ctx, t, host, wshub.ClientMessage{Type: "join_room", RoomID: roomA.Code, Name: "Alice"})
	wsExpect(ctx, t, host, "room_joined")

	mover := dialWS(ctx, t, ts)
	defer mover.Close(websocket.StatusNormalClosure, "")
	connected := wsExpect(ctx, t, mover, "connected")
	moverID := connected.Data.(map[string]any)["player_id"]

	wsSend(ctx, t, mover, wshub.ClientMessage{Type: "join_room", RoomID: roomA.Code, Name: "Bob"})
	wsExpect(ctx, t, mover, "room_joined")
	wsExpect(ctx, t, host, "player_joined")

	// Joining another room must pull the player out of the first one.
	wsSend(ctx, t, mover, wshub.ClientMessage{Type: "join_room", RoomID: roomB.Code, Name: "Bob"})
	moved := wsExpect(ctx, t, mover, "room_joined")
	if moved.Data.(map[string]any)["is_host"] != true {
		t.Error("first joiner of the new room should be its host")
	}

	left := wsExpect(ctx, t, host, "player_left")
	if got := left.Data.(map[string]any)["player_id"]; got != moverID {
		t.Errorf("player_left player_id = %v, want %v", got, moverID)
	}

	if got := roomA.Game.PlayerCount(); got != 1 {
		t.Errorf("room A player count after switch = %d, want 1", got)
	}
	if got := roomB.Game.PlayerCount(); got != 1 {
		t.Errorf("room B player count after switch = %d, want 1", got)
	}

	// The old room no longer broadcasts to the moved connection: a full
	// round in room A must not leak messages to the mover, whose next
	// message is room B traffic only.
	wsSend(ctx, t, mover, wshub.ClientMessage{Type: "get_scoreboard"})
	update := wsExpect(ctx, t, mover, "scoreboard_update")
	board := update.Data.(map[string]any)["scoreboard"].([]any)
	if len(board) != 1 {
		t.Errorf("mover's scoreboard has %d entries, want 1 from room B", len(board))
	}
}

func TestWebSocketSwitchRooms_DissolvesEmptyOldRoom(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roomA, _ := srv.Rooms.CreateEmpty()
	roomB, _ := srv.Rooms.CreateEmpty()

	conn := dialWS(ctx, t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, conn, "connected")

	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: roomA.Code, Name: "Alice"})
	wsExpect(ctx, t, conn, "room_joined")
	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: roomB.Code, Name: "Alice"})
	wsExpect(ctx, t, conn, "room_joined")

	if srv.Rooms.Get(roomA.Code) != nil {
		t.Error("room A emptied by the switch should be deleted")
	}
	if srv.Rooms.Get(roomB.Code) == nil {
		t.Error("room B should still exist")
	}
}

func TestWebSocketStartGameRequiresPlayers(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, _ := srv.Rooms.CreateEmpty()

	conn := dialWS(ctx, t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, conn, "connected")
	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Alice"})
	wsExpect(ctx, t, conn, "room_joined")

	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "start_game"})
	errMsg := wsExpect(ctx, t, conn, "error")
	if got := errMsg.Data.(map[string]any)["message"]; got != "Need at least 2 players to start" {
		t.Errorf("error message = %v, want the player-count explanation", got)
	}
}

func TestWebSocketStartGameWithoutChallenges(t *testing.T) {
	srv := &Server{Rooms: rooms.NewStore(nil, game.DefaultConfig(), 3)}
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, _ := srv.Rooms.CreateEmpty()

	host := dialWS(ctx, t, ts)
	defer host.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, host, "connected")
	wsSend(ctx, t, host, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Alice"})
	wsExpect(ctx, t, host, "room_joined")

	guest := dialWS(ctx, t, ts)
	defer guest.Close(websocket.StatusNormalClosure, "")
	wsExpect(ctx, t, guest, "connected")
	wsSend(ctx, t, guest, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Bob"})
	wsExpect(ctx, t, guest, "room_joined")
	wsExpect(ctx, t, host, "player_joined")

	wsSend(ctx, t, host, wshub.ClientMessage{Type: "start_game"})
	errMsg := wsExpect(ctx, t, host, "error")
	if got := errMsg.Data.(map[string]any)["message"]; got != "Unable to start the game" {
		t.Errorf("error message = %v, want the generic start failure", got)
	}
}

func TestWebSocketDisconnectDissolvesRoom(t *testing.T) {
	srv := newTestServer(3)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, err := srv.Rooms.CreateEmpty()
	if err != nil {
		t.Fatalf("CreateEmpty() error: %v", err)
	}

	conn := dialWS(ctx, t, ts)
	wsExpect(ctx, t, conn, "connected")
	wsSend(ctx, t, conn, wshub.ClientMessage{Type: "join_room", RoomID: room.Code, Name: "Alice"})
	wsExpect(ctx, t, conn, "room_joined")

	conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Rooms.Get(room.Code) == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("room with no players left should have been deleted")
}
