package game

import (
	"github.com/google/uuid"
	"github.com/mcdev12/skirmish/go/internal/game/catalog"
	"github.com/mcdev12/skirmish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Room bookkeeping. Every helper here requires the service mutex to be held
// by the caller; the exported entry points live in service.go and
// matchmaker.go.

// createRoomLocked allocates a new room with the first roster half assigned
// to the creator.
func (s *Service) createRoomLocked(socketID string) (*Room, []models.FantasyPlayer) {
	assigned := catalog.FirstHalf()
	room := &Room{
		ID:                "room_" + uuid.New().String(),
		Players:           []string{socketID},
		PlayerAssignments: map[string][]models.FantasyPlayer{socketID: assigned},
		Scores:            map[string]int{socketID: 0},
		Phase:             PhaseOpen,
		CreatedAt:         s.clock.Now(),
	}

	s.rooms[room.ID] = room
	s.socketToRoom[socketID] = room.ID

	log.Info().
		Str("room_id", room.ID).
		Str("socket_id", socketID).
		Msg("room created")
	return room, assigned
}

// findOpenRoomLocked returns the earliest-created room still waiting for an
// opponent, or nil.
func (s *Service) findOpenRoomLocked() *Room {
	var open *Room
	for _, room := range s.rooms {
		if room.Phase != PhaseOpen || len(room.Players) != 1 {
			continue
		}
		if open == nil || room.CreatedAt.Before(open.CreatedAt) ||
			(room.CreatedAt.Equal(open.CreatedAt) && room.ID < open.ID) {
			open = room
		}
	}
	return open
}

// attachSecondPlayerLocked assigns the complementary roster half to the
// joining socket. Fails with ErrRoomFull or ErrRoomAlreadyActive when the
// room filled or started between lookup and attach.
func (s *Service) attachSecondPlayerLocked(room *Room, socketID string) ([]models.FantasyPlayer, error) {
	if len(room.Players) >= 2 {
		return nil, ErrRoomFull
	}
	if room.Phase != PhaseOpen {
		return nil, ErrRoomAlreadyActive
	}

	// The occupant holds the second half when the original creator left an
	// OPEN room after someone joined; always hand out the complement so
	// the two sides stay disjoint and cover the roster.
	assigned := catalog.SecondHalf()
	if occupant := room.PlayerAssignments[room.Players[0]]; len(occupant) > 0 &&
		occupant[0].ID == assigned[0].ID {
		assigned = catalog.FirstHalf()
	}
	room.Players = append(room.Players, socketID)
	room.PlayerAssignments[socketID] = assigned
	room.Scores[socketID] = 0
	s.socketToRoom[socketID] = room.ID

	log.Info().
		Str("room_id", room.ID).
		Str("socket_id", socketID).
		Msg("socket joined room")
	return assigned, nil
}

// removePlayerLocked removes the socket from its room, stopping timers in
// the same critical section so no timer ever fires for a slot without a live
// occupant. An ACTIVE room left single-occupant settles immediately with the
// survivor as winner; an emptied room is deleted outright.
func (s *Service) removePlayerLocked(socketID string) error {
	roomID, ok := s.socketToRoom[socketID]
	if !ok {
		return ErrNotInRoom
	}
	room := s.rooms[roomID]

	delete(s.socketToRoom, socketID)
	delete(room.PlayerAssignments, socketID)
	delete(room.Scores, socketID)
	for i, id := range room.Players {
		if id == socketID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}

	log.Info().
		Str("room_id", roomID).
		Str("socket_id", socketID).
		Msg("socket left room")

	if len(room.Players) == 0 {
		room.stopTimers()
		delete(s.rooms, roomID)
		log.Info().Str("room_id", roomID).Msg("room cleaned up")
		return nil
	}

	if room.Phase == PhaseActive {
		s.endGameLocked(room)
	}
	return nil
}
