package models

// FantasyPlayer is a catalog entity that can be assigned to one side of a
// match. The catalog is fixed; instances are never mutated at runtime.
type FantasyPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	BaseSkill int    `json:"baseSkill"`
}

// EventTemplate describes a possible in-game action and the point swings it
// can produce. Points may mix positive and negative values and always has at
// least one entry.
type EventTemplate struct {
	Action string `json:"action"`
	Points []int  `json:"points"`
}
