// Package gateway is the websocket transport for the room engine. It owns
// every client connection, implements the engine's Broadcaster capability
// and routes inbound messages into the game service.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/skirmish/go/internal/game"
	"github.com/mcdev12/skirmish/go/internal/game/events"
)

// GameService defines what the gateway needs from the room engine.
type GameService interface {
	FindOrCreateRoom(socketID string) (*game.MatchResult, error)
	StartGame(roomID string) error
	LeaveRoom(socketID string) error
	RoomStatus(socketID string) (*events.RoomStatusPayload, error)
	Disconnect(socketID string)
	RoomCount() int
}

// Manager owns the websocket connections, keyed by socket ID. It implements
// game.Broadcaster: the engine addresses sockets by ID and never sees a
// connection.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*Connection

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan outboundMessage

	service GameService
}

// Connection represents one websocket client.
type Connection struct {
	ID      string // socket ID, also the engine-side participant ID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *Manager

	ConnectedAt time.Time
	LastPing    time.Time

	mu     sync.Mutex // guards closed and sends on Send
	closed bool
}

// trySend enqueues one outbound frame without blocking. The closed flag is
// checked under the same lock that closes Send, so a send can never race
// the close.
func (c *Connection) trySend(data []byte) (sent, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, true
	}
	select {
	case c.Send <- data:
		return true, false
	default:
		return false, false
	}
}

// ConnectionConfig holds websocket tuning knobs.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default websocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

type outboundMessage struct {
	SocketID string
	Envelope envelope
}

// NewManager creates a websocket connection manager. Bind the game service
// with BindService before serving connections.
func NewManager(config ConnectionConfig) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan outboundMessage, 1000),
	}
}

// BindService attaches the room engine. Split from NewManager because the
// engine is constructed with the manager as its Broadcaster.
func (m *Manager) BindService(service GameService) {
	m.service = service
}

// Start drains the broadcast channel until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-m.broadcastCh:
			m.deliver(message)
		}
	}
}

// SendTo implements game.Broadcaster. Non-blocking: a full broadcast queue
// drops the message rather than stalling a tick.
func (m *Manager) SendTo(socketID string, msgType string, payload any) {
	select {
	case m.broadcastCh <- outboundMessage{SocketID: socketID, Envelope: envelope{Type: msgType, Data: payload}}:
	default:
		log.Warn().
			Str("socket_id", socketID).
			Str("type", msgType).
			Msg("broadcast channel full, dropping message")
	}
}

// SendToMany implements game.Broadcaster.
func (m *Manager) SendToMany(socketIDs []string, msgType string, payload any) {
	for _, socketID := range socketIDs {
		m.SendTo(socketID, msgType, payload)
	}
}

// UpgradeConnection upgrades an HTTP request to a websocket, assigns it a
// fresh socket ID and starts the read/write pumps.
func (m *Manager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     m,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	m.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("socket_id", connection.ID).
		Msg("websocket connection established")
	return nil
}

func (m *Manager) registerConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID] = conn

	log.Debug().
		Str("socket_id", conn.ID).
		Int("total_connections", len(m.connections)).
		Msg("connection registered")
}

func (m *Manager) unregisterConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.connections[conn.ID]; exists {
		delete(m.connections, conn.ID)

		conn.mu.Lock()
		conn.closed = true
		close(conn.Send)
		conn.mu.Unlock()

		log.Info().
			Str("socket_id", conn.ID).
			Msg("connection unregistered")
	}
}

// deliver marshals an envelope and hands it to the target connection.
func (m *Manager) deliver(message outboundMessage) {
	m.mu.RLock()
	conn, exists := m.connections[message.SocketID]
	m.mu.RUnlock()
	if !exists {
		return
	}

	data, err := json.Marshal(message.Envelope)
	if err != nil {
		log.Error().Err(err).Str("type", message.Envelope.Type).Msg("failed to marshal outbound message")
		return
	}

	sent, closed := conn.trySend(data)
	if closed || sent {
		return
	}
	// Connection is slow/dead, close it; the read pump's exit will clean
	// up its room membership.
	log.Warn().
		Str("socket_id", conn.ID).
		Msg("connection send buffer full, closing connection")
	m.unregisterConnection(conn)
	conn.Conn.Close()
}

// Stats returns counts for the stats endpoint.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	total := len(m.connections)
	m.mu.RUnlock()

	return map[string]interface{}{
		"total_connections": total,
		"active_rooms":      m.service.RoomCount(),
	}
}

// writePump handles sending messages to the websocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("failed to write message to websocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the websocket connection. Its exit
// is the disconnect signal: the socket is removed from its room before the
// connection is dropped from the manager.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.service.Disconnect(c.ID)
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("socket_id", c.ID).
					Msg("unexpected websocket close error")
			}
			break
		}

		c.Manager.handleInbound(c, message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
