package models

import "time"

// GameEvent records a single scoring tick. Immutable once created; appended
// to the owning room's history and never removed.
type GameEvent struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	PlayerName   string    `json:"playerName"`
	Action       string    `json:"action"`
	PointsChange int       `json:"pointsChange"`
	Timestamp    time.Time `json:"timestamp"`
}
