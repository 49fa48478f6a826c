package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/skirmish/go/internal/game/catalog"
	"github.com/mcdev12/skirmish/go/internal/game/events"
	"github.com/mcdev12/skirmish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StartGame moves a full room into the ACTIVE phase: both timers start, both
// sides get the game_starting broadcast. A room enters ACTIVE at most once;
// calling this on a started or short-handed room is an error.
func (s *Service) StartGame(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %s not found", roomID)
	}
	if room.Phase != PhaseOpen {
		return ErrRoomAlreadyActive
	}
	if len(room.Players) != 2 {
		return fmt.Errorf("room %s has %d players, need 2 to start", roomID, len(room.Players))
	}

	room.Phase = PhaseActive
	room.eventTicker = s.clock.NewTicker(s.cfg.TickInterval)
	room.safetyTimer = s.clock.NewTimer(s.cfg.GameDuration)
	room.done = make(chan struct{})

	payload := events.GameStartingPayload{
		RoomID:            room.ID,
		Scores:            copyScores(room.Scores),
		PlayerAssignments: copyAssignments(room.PlayerAssignments),
	}
	s.bc.SendToMany(room.Players, events.TypeGameStarting, payload)
	s.relay.Publish(events.TypeGameStarting, room.ID, payload)

	log.Info().
		Str("room_id", room.ID).
		Dur("tick_interval", s.cfg.TickInterval).
		Int("max_events", s.cfg.MaxEvents).
		Msg("game started")

	go s.runGame(room.ID, room.eventTicker, room.safetyTimer, room.done)
	return nil
}

// runGame is the per-room scheduling loop. It owns no state: every fire goes
// through the service mutex, so ticks serialize against joins, leaves and
// the safety timeout. A panic settles only this room, never the process.
func (s *Service) runGame(roomID string, ticker clockwork.Ticker, safety clockwork.Timer, done <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("room_id", roomID).
				Interface("panic", r).
				Msg("game loop panicked, force-settling room")
			s.forceEnd(roomID)
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			if ended := s.handleTick(roomID); ended {
				return
			}
		case <-safety.Chan():
			log.Warn().Str("room_id", roomID).Msg("safety timer fired, ending game")
			s.forceEnd(roomID)
			return
		}
	}
}

// handleTick runs one scoring tick. Returns true when the room is gone,
// ended, or just spent its tick budget, telling the loop to exit.
func (s *Service) handleTick(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Phase != PhaseActive {
		return true
	}

	s.generateEventLocked(room)

	room.eventCount++
	if room.eventCount >= s.cfg.MaxEvents {
		s.endGameLocked(room)
		return true
	}
	return false
}

// forceEnd settles the room if it is still active. Safe to call on rooms
// that already ended or vanished.
func (s *Service) forceEnd(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[roomID]; ok && room.Phase == PhaseActive {
		s.endGameLocked(room)
	}
}

// generateEventLocked draws a uniform player, template and delta, applies
// the delta to the owning side and fans the event out to both sockets. Any
// of the 10 roster players is eligible every tick; an event on the
// opponent's roster still only moves their score.
func (s *Service) generateEventLocked(room *Room) {
	player := catalog.FantasyPlayers[s.rng.Intn(len(catalog.FantasyPlayers))]
	tmpl := catalog.EventTemplates[s.rng.Intn(len(catalog.EventTemplates))]
	delta := tmpl.Points[s.rng.Intn(len(tmpl.Points))]

	event := models.GameEvent{
		ID:           "event_" + uuid.New().String(),
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		Action:       tmpl.Action,
		PointsChange: delta,
		Timestamp:    s.clock.Now(),
	}

	owner := room.ownerOf(player.ID)
	if owner == "" {
		// Assignment inconsistency: record and broadcast the event but leave
		// scores untouched rather than crashing the room.
		log.Error().
			Str("room_id", room.ID).
			Str("player_id", player.ID).
			Msg("fantasy player owned by neither side, skipping score change")
	} else {
		room.Scores[owner] += delta
	}

	room.Events = append(room.Events, event)

	log.Info().
		Str("room_id", room.ID).
		Str("player", player.Name).
		Str("action", tmpl.Action).
		Int("points", delta).
		Msg("game event")

	allScores := copyScores(room.Scores)
	for _, socketID := range room.Players {
		s.bc.SendTo(socketID, events.TypeGameEvent, events.GameEventPayload{
			Event:         event,
			CurrentScore:  room.Scores[socketID],
			OpponentScore: room.Scores[room.opponentOf(socketID)],
			AllScores:     allScores,
			GameEnded:     false,
			IsMyPlayer:    owner == socketID,
		})
	}
	s.relay.Publish(events.TypeGameEvent, room.ID, events.GameEventPayload{
		Event:     event,
		AllScores: allScores,
	})
}
