package gateway

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/skirmish/go/internal/game"
	"github.com/mcdev12/skirmish/go/internal/game/events"
)

type testServer struct {
	server  *httptest.Server
	manager *Manager
	service *game.Service
	clock   *clockwork.FakeClock
	cancel  context.CancelFunc
}

func newTestServer(t *testing.T, cfg game.Config) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClock()
	manager := NewManager(DefaultConnectionConfig())
	service := game.NewService(cfg, manager,
		game.WithClock(clock),
		game.WithRand(rand.New(rand.NewSource(7))),
	)
	manager.BindService(service)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(manager).RegisterRoutes(mux)
	server := httptest.NewServer(mux)

	ts := &testServer{server: server, manager: manager, service: service, clock: clock, cancel: cancel}
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return ts
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws/game"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string) {
	t.Helper()
	if err := conn.WriteJSON(map[string]string{"type": msgType}); err != nil {
		t.Fatalf("sending %s: %v", msgType, err)
	}
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn, wantType string) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("reading frame (want %s): %v", wantType, err)
	}
	if f.Type != wantType {
		t.Fatalf("got frame type %s, want %s", f.Type, wantType)
	}
	return f
}

func TestMatchmakingOverWebsocket(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())

	c1 := ts.dial(t)
	send(t, c1, events.TypeFindOrCreateRoom)
	created := readFrame(t, c1, events.TypeRoomCreated)

	var createdPayload events.RoomCreatedPayload
	if err := json.Unmarshal(created.Data, &createdPayload); err != nil {
		t.Fatalf("decoding room_created: %v", err)
	}
	if len(createdPayload.Players) != 5 {
		t.Errorf("creator assigned %d players, want 5", len(createdPayload.Players))
	}

	c2 := ts.dial(t)
	send(t, c2, events.TypeFindOrCreateRoom)
	joined := readFrame(t, c2, events.TypeRoomJoined)

	var joinedPayload events.RoomCreatedPayload
	if err := json.Unmarshal(joined.Data, &joinedPayload); err != nil {
		t.Fatalf("decoding room_joined: %v", err)
	}
	if joinedPayload.RoomID != createdPayload.RoomID {
		t.Errorf("joiner in room %s, creator in %s", joinedPayload.RoomID, createdPayload.RoomID)
	}

	// Both sides observe the game start with zeroed scores.
	for _, conn := range []*websocket.Conn{c1, c2} {
		starting := readFrame(t, conn, events.TypeGameStarting)
		var payload events.GameStartingPayload
		if err := json.Unmarshal(starting.Data, &payload); err != nil {
			t.Fatalf("decoding game_starting: %v", err)
		}
		for socketID, score := range payload.Scores {
			if score != 0 {
				t.Errorf("initial score for %s is %d", socketID, score)
			}
		}
	}
}

func TestFullGameOverWebsocket(t *testing.T) {
	cfg := game.Config{TickInterval: 4 * time.Second, MaxEvents: 3, GameDuration: time.Hour}
	ts := newTestServer(t, cfg)

	c1 := ts.dial(t)
	send(t, c1, events.TypeFindOrCreateRoom)
	readFrame(t, c1, events.TypeRoomCreated)

	c2 := ts.dial(t)
	send(t, c2, events.TypeFindOrCreateRoom)
	readFrame(t, c2, events.TypeRoomJoined)
	readFrame(t, c1, events.TypeGameStarting)
	readFrame(t, c2, events.TypeGameStarting)

	var lastEvent events.GameEventPayload
	for i := 0; i < cfg.MaxEvents; i++ {
		ts.clock.Advance(cfg.TickInterval)
		e1 := readFrame(t, c1, events.TypeGameEvent)
		readFrame(t, c2, events.TypeGameEvent)
		if err := json.Unmarshal(e1.Data, &lastEvent); err != nil {
			t.Fatalf("decoding game_event: %v", err)
		}
	}

	// Budget spent: both sides get exactly one game_ended, consistent with
	// the running scores.
	for _, conn := range []*websocket.Conn{c1, c2} {
		ended := readFrame(t, conn, events.TypeGameEnded)
		var payload events.GameEndedPayload
		if err := json.Unmarshal(ended.Data, &payload); err != nil {
			t.Fatalf("decoding game_ended: %v", err)
		}
		for socketID, final := range payload.FinalScores {
			if final != lastEvent.AllScores[socketID] {
				t.Errorf("final score for %s is %d, last tick said %d", socketID, final, lastEvent.AllScores[socketID])
			}
		}
	}
}

func TestLeaveSettlesSurvivorOverWebsocket(t *testing.T) {
	cfg := game.Config{TickInterval: 4 * time.Second, MaxEvents: 100, GameDuration: time.Hour}
	ts := newTestServer(t, cfg)

	c1 := ts.dial(t)
	send(t, c1, events.TypeFindOrCreateRoom)
	readFrame(t, c1, events.TypeRoomCreated)

	c2 := ts.dial(t)
	send(t, c2, events.TypeFindOrCreateRoom)
	readFrame(t, c2, events.TypeRoomJoined)
	readFrame(t, c1, events.TypeGameStarting)
	readFrame(t, c2, events.TypeGameStarting)

	send(t, c2, events.TypeLeaveRoom)

	ended := readFrame(t, c1, events.TypeGameEnded)
	var payload events.GameEndedPayload
	if err := json.Unmarshal(ended.Data, &payload); err != nil {
		t.Fatalf("decoding game_ended: %v", err)
	}
	if payload.WinnerID == nil {
		t.Error("survivor should win by default after opponent leaves")
	}

	// The survivor can still query the settled room.
	send(t, c1, events.TypeGetRoomStatus)
	status := readFrame(t, c1, events.TypeRoomStatus)
	var statusPayload events.RoomStatusPayload
	if err := json.Unmarshal(status.Data, &statusPayload); err != nil {
		t.Fatalf("decoding room_status: %v", err)
	}
	if statusPayload.Phase != "ENDED" {
		t.Errorf("phase after settlement: got %s, want ENDED", statusPayload.Phase)
	}
}

func TestStatusWithoutRoomReturnsError(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())

	conn := ts.dial(t)
	send(t, conn, events.TypeGetRoomStatus)
	errFrame := readFrame(t, conn, events.TypeError)

	var payload events.ErrorPayload
	if err := json.Unmarshal(errFrame.Data, &payload); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	if payload.Code != codeNotInRoom {
		t.Errorf("error code: got %s, want %s", payload.Code, codeNotInRoom)
	}
}

func TestUnknownMessageReturnsError(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())

	conn := ts.dial(t)
	send(t, conn, "do_a_barrel_roll")
	errFrame := readFrame(t, conn, events.TypeError)

	var payload events.ErrorPayload
	if err := json.Unmarshal(errFrame.Data, &payload); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	if payload.Code != codeUnknownMessage {
		t.Errorf("error code: got %s, want %s", payload.Code, codeUnknownMessage)
	}
}

func TestBroadcastDuringDisconnectDoesNotPanic(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())

	// Keep tearing connections down while the manager delivers to them; a
	// send racing the channel close would panic the deliver loop and crash
	// the test binary.
	for i := 0; i < 20; i++ {
		conn := ts.dial(t)

		ts.manager.mu.RLock()
		ids := make([]string, 0, len(ts.manager.connections))
		for id := range ts.manager.connections {
			ids = append(ids, id)
		}
		ts.manager.mu.RUnlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 200; j++ {
				for _, id := range ids {
					ts.manager.SendTo(id, "noise", map[string]int{"seq": j})
				}
			}
		}()
		conn.Close()
		<-done
	}
}

func TestDisconnectRemovesSocketFromRoom(t *testing.T) {
	cfg := game.Config{TickInterval: 4 * time.Second, MaxEvents: 100, GameDuration: time.Hour}
	ts := newTestServer(t, cfg)

	c1 := ts.dial(t)
	send(t, c1, events.TypeFindOrCreateRoom)
	readFrame(t, c1, events.TypeRoomCreated)

	c2 := ts.dial(t)
	send(t, c2, events.TypeFindOrCreateRoom)
	readFrame(t, c2, events.TypeRoomJoined)
	readFrame(t, c1, events.TypeGameStarting)
	readFrame(t, c2, events.TypeGameStarting)

	// Drop c2's connection entirely; the read pump reports the disconnect
	// and the survivor gets settled.
	c2.Close()

	ended := readFrame(t, c1, events.TypeGameEnded)
	var payload events.GameEndedPayload
	if err := json.Unmarshal(ended.Data, &payload); err != nil {
		t.Fatalf("decoding game_ended: %v", err)
	}
	if payload.WinnerID == nil {
		t.Error("survivor should win after opponent disconnects")
	}
}
