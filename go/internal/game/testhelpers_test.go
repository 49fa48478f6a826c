package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// fakeBroadcaster records every message the engine emits.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []sentMessage
}

type sentMessage struct {
	SocketID string
	Type     string
	Payload  any
}

func (f *fakeBroadcaster) SendTo(socketID, msgType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{SocketID: socketID, Type: msgType, Payload: payload})
}

func (f *fakeBroadcaster) SendToMany(socketIDs []string, msgType string, payload any) {
	for _, id := range socketIDs {
		f.SendTo(id, msgType, payload)
	}
}

func (f *fakeBroadcaster) countByType(socketID, msgType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.SocketID == socketID && m.Type == msgType {
			n++
		}
	}
	return n
}

// newTestService builds an engine on a fake clock with a deterministic RNG.
func newTestService(cfg Config) (*Service, *fakeBroadcaster, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	bc := &fakeBroadcaster{}
	svc := NewService(cfg, bc,
		WithClock(clock),
		WithRand(rand.New(rand.NewSource(1))),
	)
	return svc, bc, clock
}

// startMatch pairs two sockets and starts the game.
func startMatch(t *testing.T, svc *Service) (roomID string) {
	t.Helper()
	created, err := svc.FindOrCreateRoom("sock-a")
	if err != nil {
		t.Fatalf("matchmaking sock-a: %v", err)
	}
	joined, err := svc.FindOrCreateRoom("sock-b")
	if err != nil {
		t.Fatalf("matchmaking sock-b: %v", err)
	}
	if joined.RoomID != created.RoomID {
		t.Fatalf("sock-b landed in room %s, want %s", joined.RoomID, created.RoomID)
	}
	if err := svc.StartGame(created.RoomID); err != nil {
		t.Fatalf("starting game: %v", err)
	}
	return created.RoomID
}

// waitFor polls until cond holds, failing the test after a real-time
// timeout. Needed because the fake clock fires into the room goroutine
// asynchronously.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// historyLen reads the room's event count through the status snapshot.
func historyLen(t *testing.T, svc *Service, socketID string) int {
	t.Helper()
	status, err := svc.RoomStatus(socketID)
	if err != nil {
		t.Fatalf("room status for %s: %v", socketID, err)
	}
	return len(status.Events)
}

// advanceTicks advances the fake clock one tick at a time, waiting for each
// tick to land so none are coalesced by the ticker.
func advanceTicks(t *testing.T, svc *Service, clock *clockwork.FakeClock, interval time.Duration, n int) {
	t.Helper()
	base := historyLen(t, svc, "sock-a")
	for i := 1; i <= n; i++ {
		clock.Advance(interval)
		want := base + i
		waitFor(t, func() bool { return historyLen(t, svc, "sock-a") >= want }, "tick to land")
	}
}
