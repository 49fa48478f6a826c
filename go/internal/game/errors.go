package game

import "errors"

var (
	// ErrRoomFull is returned when a join is attempted on a room already at
	// capacity. Matchmaking retries from scratch instead of surfacing it.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomAlreadyActive is returned when a join is attempted on a room
	// past the OPEN phase.
	ErrRoomAlreadyActive = errors.New("game already started")

	// ErrNotInRoom is returned for status or leave requests from a socket
	// with no room entry.
	ErrNotInRoom = errors.New("not in a room")

	// ErrAlreadyInRoom is returned when a socket that already occupies a
	// room asks to be matched again.
	ErrAlreadyInRoom = errors.New("already in a room")
)
