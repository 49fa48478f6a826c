// Package events defines the wire message types and payloads shared between
// the game core and the websocket gateway. Field names are part of the
// client contract.
package events

import "github.com/mcdev12/skirmish/go/internal/models"

// Outbound message types.
const (
	TypeRoomCreated  = "room_created"
	TypeRoomJoined   = "room_joined"
	TypeGameStarting = "game_starting"
	TypeGameEvent    = "game_event"
	TypeGameEnded    = "game_ended"
	TypeRoomStatus   = "room_status"
	TypeError        = "error"
)

// Inbound message types.
const (
	TypeFindOrCreateRoom = "find_or_create_room"
	TypeLeaveRoom        = "leave_room"
	TypeGetRoomStatus    = "get_room_status"
)

// RoomCreatedPayload is sent to the creator of a new room. The same shape is
// sent to the joiner as room_joined.
type RoomCreatedPayload struct {
	RoomID  string                 `json:"roomId"`
	Players []models.FantasyPlayer `json:"players"`
}

// GameStartingPayload is sent to both sides exactly once when the match goes
// active.
type GameStartingPayload struct {
	RoomID            string                            `json:"roomId"`
	Scores            map[string]int                    `json:"scores"`
	PlayerAssignments map[string][]models.FantasyPlayer `json:"playerAssignments"`
}

// GameEventPayload is sent to both sides on every tick. Scores are relative
// to the receiving side.
type GameEventPayload struct {
	Event         models.GameEvent `json:"event"`
	CurrentScore  int              `json:"currentScore"`
	OpponentScore int              `json:"opponentScore"`
	AllScores     map[string]int   `json:"allScores"`
	GameEnded     bool             `json:"gameEnded"`
	IsMyPlayer    bool             `json:"isMyPlayer"`
}

// GameEndedPayload is sent to every remaining side exactly once at
// settlement. WinnerID is omitted on a tie.
type GameEndedPayload struct {
	Message     string         `json:"message"`
	FinalScores map[string]int `json:"finalScores"`
	WinnerID    *string        `json:"winnerId,omitempty"`
}

// RoomStatusPayload is the snapshot returned for get_room_status.
type RoomStatusPayload struct {
	RoomID       string             `json:"roomId"`
	PlayerCount  int                `json:"playerCount"`
	Phase        string             `json:"phase"`
	CurrentScore int                `json:"currentScore"`
	Events       []models.GameEvent `json:"events"`
}

// ErrorPayload is the typed error shape delivered on the transport instead
// of silently dropping a request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
