package game

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/skirmish/go/internal/models"
)

// Phase is the lifecycle state of a room. Transitions only move forward:
// OPEN -> ACTIVE -> ENDED.
type Phase string

const (
	PhaseOpen   Phase = "OPEN"
	PhaseActive Phase = "ACTIVE"
	PhaseEnded  Phase = "ENDED"
)

// Room is the central mutable aggregate: one matched pair of sockets plus
// their shared game state. All access goes through the service mutex; the
// timer handles are private room state and never leave this package.
type Room struct {
	ID                string
	Players           []string // socket IDs, ordered, max 2
	PlayerAssignments map[string][]models.FantasyPlayer
	Scores            map[string]int
	Phase             Phase
	Events            []models.GameEvent
	CreatedAt         time.Time
	WinnerID          *string

	eventTicker clockwork.Ticker
	safetyTimer clockwork.Timer
	done        chan struct{}
	eventCount  int
}

// stopTimers cancels both timers and releases the run loop. Idempotent:
// stopping an already-stopped room is a no-op. Caller holds the service
// mutex.
func (r *Room) stopTimers() {
	if r.eventTicker != nil {
		r.eventTicker.Stop()
		r.eventTicker = nil
	}
	if r.safetyTimer != nil {
		r.safetyTimer.Stop()
		r.safetyTimer = nil
	}
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}

// ownerOf returns the socket ID whose assignment holds the given fantasy
// player, or "" when neither side owns it.
func (r *Room) ownerOf(playerID string) string {
	for socketID, assigned := range r.PlayerAssignments {
		for _, p := range assigned {
			if p.ID == playerID {
				return socketID
			}
		}
	}
	return ""
}

// opponentOf returns the other socket in the room, or "" for a
// single-occupant room.
func (r *Room) opponentOf(socketID string) string {
	for _, other := range r.Players {
		if other != socketID {
			return other
		}
	}
	return ""
}
