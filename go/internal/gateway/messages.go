package gateway

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/skirmish/go/internal/game"
	"github.com/mcdev12/skirmish/go/internal/game/events"
)

// envelope is the wire frame for every message in both directions.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Error codes carried in error payloads.
const (
	codeNotInRoom      = "NOT_IN_ROOM"
	codeAlreadyInRoom  = "ALREADY_IN_ROOM"
	codeBadMessage     = "BAD_MESSAGE"
	codeUnknownMessage = "UNKNOWN_MESSAGE"
	codeInternal       = "INTERNAL"
)

// handleInbound routes one client frame into the game service. Every failure
// is answered with a typed error message; requests are never silently
// dropped.
func (m *Manager) handleInbound(conn *Connection, raw []byte) {
	var msg envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.sendError(conn.ID, codeBadMessage, "malformed message")
		return
	}

	log.Debug().
		Str("socket_id", conn.ID).
		Str("type", msg.Type).
		Msg("inbound message")

	switch msg.Type {
	case events.TypeFindOrCreateRoom:
		m.handleFindOrCreateRoom(conn.ID)
	case events.TypeLeaveRoom:
		if err := m.service.LeaveRoom(conn.ID); err != nil {
			m.sendError(conn.ID, codeNotInRoom, err.Error())
		}
	case events.TypeGetRoomStatus:
		status, err := m.service.RoomStatus(conn.ID)
		if err != nil {
			m.sendError(conn.ID, codeNotInRoom, err.Error())
			return
		}
		m.SendTo(conn.ID, events.TypeRoomStatus, status)
	default:
		m.sendError(conn.ID, codeUnknownMessage, "unknown message type: "+msg.Type)
	}
}

// handleFindOrCreateRoom runs matchmaking and, on a join that fills the
// room, starts the game. Starting is the transport's job: matchmaking hands
// the filled room back and this is where the handoff lands.
func (m *Manager) handleFindOrCreateRoom(socketID string) {
	result, err := m.service.FindOrCreateRoom(socketID)
	if err != nil {
		code := codeInternal
		if errors.Is(err, game.ErrAlreadyInRoom) {
			code = codeAlreadyInRoom
		}
		m.sendError(socketID, code, err.Error())
		return
	}

	payload := events.RoomCreatedPayload{RoomID: result.RoomID, Players: result.Players}
	switch result.Action {
	case game.MatchActionCreated:
		m.SendTo(socketID, events.TypeRoomCreated, payload)
	case game.MatchActionJoined:
		m.SendTo(socketID, events.TypeRoomJoined, payload)
		if err := m.service.StartGame(result.RoomID); err != nil {
			// The opponent vanished between attach and start; the joiner
			// keeps the room and waits for the next match.
			log.Warn().
				Err(err).
				Str("room_id", result.RoomID).
				Msg("could not start game after join")
		}
	}
}

func (m *Manager) sendError(socketID, code, message string) {
	m.SendTo(socketID, events.TypeError, events.ErrorPayload{Code: code, Message: message})
}
