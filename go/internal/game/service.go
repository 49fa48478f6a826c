// Package game implements the room lifecycle and timed-event engine: pairing
// two sockets into a room, running the scripted event schedule, settling the
// winner and cleaning up after departures. It depends on the transport only
// through the Broadcaster capability.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/skirmish/go/internal/game/events"
	"github.com/mcdev12/skirmish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Config holds the match timing tunables.
type Config struct {
	// TickInterval is the delay between scoring events.
	TickInterval time.Duration
	// MaxEvents is the tick budget; the game settles once it is spent.
	MaxEvents int
	// GameDuration is the safety ceiling: the game is force-settled after
	// this long regardless of tick count.
	GameDuration time.Duration
}

// DefaultConfig returns the reference timings: a 4s tick, 15 events, 60s cap.
func DefaultConfig() Config {
	return Config{
		TickInterval: 4 * time.Second,
		MaxEvents:    15,
		GameDuration: 60 * time.Second,
	}
}

// Service is the single in-memory authority over all rooms. One mutex
// serializes every mutation: connection-triggered operations and timer
// callbacks alike.
type Service struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	socketToRoom map[string]string

	cfg   Config
	clock clockwork.Clock
	rng   *rand.Rand
	bc    Broadcaster
	relay EventRelay
}

// Option applies a construction-time override to the Service.
type Option func(*Service)

// WithClock swaps the wall clock; tests pass a clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithRand swaps the event RNG for a deterministic source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

// WithRelay attaches a match relay mirroring events to the rest of the
// product.
func WithRelay(relay EventRelay) Option {
	return func(s *Service) {
		s.relay = relay
	}
}

// NewService creates the room engine. The broadcaster is required; clock,
// RNG and relay default to production implementations.
func NewService(cfg Config, bc Broadcaster, opts ...Option) *Service {
	s := &Service{
		rooms:        make(map[string]*Room),
		socketToRoom: make(map[string]string),
		cfg:          cfg,
		clock:        clockwork.NewRealClock(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		bc:           bc,
		relay:        NoopRelay{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LeaveRoom removes the socket from its room. Returns ErrNotInRoom when the
// socket has no room entry.
func (s *Service) LeaveRoom(socketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removePlayerLocked(socketID)
}

// Disconnect handles a transport-level connection drop. Unlike LeaveRoom it
// is a no-op for sockets that never matched.
func (s *Service) Disconnect(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.removePlayerLocked(socketID); err == nil {
		log.Info().Str("socket_id", socketID).Msg("disconnected socket removed from room")
	}
}

// RoomStatus returns a snapshot of the caller's room.
func (s *Service) RoomStatus(socketID string) (*events.RoomStatusPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.socketToRoom[socketID]
	if !ok {
		return nil, ErrNotInRoom
	}
	room := s.rooms[roomID]

	history := make([]models.GameEvent, len(room.Events))
	copy(history, room.Events)

	return &events.RoomStatusPayload{
		RoomID:       room.ID,
		PlayerCount:  len(room.Players),
		Phase:        string(room.Phase),
		CurrentScore: room.Scores[socketID],
		Events:       history,
	}, nil
}

// RoomCount reports how many rooms are live. Exposed for the stats endpoint.
func (s *Service) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// copyScores snapshots a score map so async broadcast payloads never alias
// mutable room state.
func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for socketID, score := range scores {
		out[socketID] = score
	}
	return out
}

// copyAssignments snapshots an assignment map for the same reason. The
// roster slices themselves are immutable catalog halves and safe to share.
func copyAssignments(assignments map[string][]models.FantasyPlayer) map[string][]models.FantasyPlayer {
	out := make(map[string][]models.FantasyPlayer, len(assignments))
	for socketID, players := range assignments {
		out[socketID] = players
	}
	return out
}
