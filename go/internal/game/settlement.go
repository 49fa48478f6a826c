package game

import (
	"github.com/mcdev12/skirmish/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

// endGameLocked settles the room: timers stop, the winner is computed, the
// phase goes terminal and every remaining socket gets exactly one game_ended
// broadcast. Idempotent: the phase guard makes a second call (tick budget
// racing the safety timer, or a leave racing either) a no-op. Caller holds
// the service mutex.
func (s *Service) endGameLocked(room *Room) {
	if room.Phase == PhaseEnded {
		return
	}
	room.Phase = PhaseEnded
	room.stopTimers()

	switch len(room.Players) {
	case 1:
		// Opponent left mid-game: the survivor wins by default.
		winner := room.Players[0]
		room.WinnerID = &winner
	case 2:
		a, b := room.Players[0], room.Players[1]
		switch {
		case room.Scores[a] > room.Scores[b]:
			room.WinnerID = &a
		case room.Scores[b] > room.Scores[a]:
			room.WinnerID = &b
		}
		// Equal scores leave WinnerID nil: a tie has no winner.
	}

	finalScores := copyScores(room.Scores)
	winnerLog := "tie"
	if room.WinnerID != nil {
		winnerLog = *room.WinnerID
	}
	log.Info().
		Str("room_id", room.ID).
		Str("winner", winnerLog).
		Interface("final_scores", finalScores).
		Msg("game ended")

	payload := events.GameEndedPayload{
		Message:     "Game Over!",
		FinalScores: finalScores,
		WinnerID:    room.WinnerID,
	}
	s.bc.SendToMany(room.Players, events.TypeGameEnded, payload)
	s.relay.Publish(events.TypeGameEnded, room.ID, payload)
}
