package game

// Broadcaster defines what the game core needs from the transport layer.
// The gateway implements it; the core never imports the gateway.
type Broadcaster interface {
	// SendTo delivers a typed message to a single socket. Delivery is
	// fire-and-forget: a dead socket is the transport's problem.
	SendTo(socketID string, msgType string, payload any)

	// SendToMany delivers the same message to several sockets.
	SendToMany(socketIDs []string, msgType string, payload any)
}

// EventRelay defines what the game core needs from the match relay: a
// non-blocking mirror of room lifecycle events for the surrounding product
// to consume. Implementations must not block the caller.
type EventRelay interface {
	Publish(eventType string, roomID string, payload any)
}

// NoopRelay discards every event. Used when the relay is disabled.
type NoopRelay struct{}

func (NoopRelay) Publish(eventType string, roomID string, payload any) {}
