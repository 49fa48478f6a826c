package game

import (
	"github.com/mcdev12/skirmish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// MatchAction reports how matchmaking placed the socket.
type MatchAction string

const (
	MatchActionCreated MatchAction = "created"
	MatchActionJoined  MatchAction = "joined"
)

// MatchResult is the matchmaking outcome handed back to the transport. On
// "joined" the caller is responsible for starting the game; matchmaking
// itself never starts timers.
type MatchResult struct {
	Action  MatchAction
	RoomID  string
	Players []models.FantasyPlayer
}

// FindOrCreateRoom attaches the socket to the oldest waiting room, or
// creates a fresh one when none is open. A join that loses the race against
// a concurrent fill falls back to create, so the socket always ends up in a
// room.
func (s *Service) FindOrCreateRoom(socketID string) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.socketToRoom[socketID]; ok {
		return nil, ErrAlreadyInRoom
	}

	if open := s.findOpenRoomLocked(); open != nil {
		assigned, err := s.attachSecondPlayerLocked(open, socketID)
		if err == nil {
			return &MatchResult{Action: MatchActionJoined, RoomID: open.ID, Players: assigned}, nil
		}
		log.Warn().
			Err(err).
			Str("room_id", open.ID).
			Str("socket_id", socketID).
			Msg("join lost the race, creating a fresh room")
	}

	room, assigned := s.createRoomLocked(socketID)
	return &MatchResult{Action: MatchActionCreated, RoomID: room.ID, Players: assigned}, nil
}
