// Package relay mirrors room lifecycle events onto a NATS JetStream stream
// so the rest of the product (chat, toasts, notifications) can consume them
// without reaching into the game engine. The relay is write-only: the engine
// stays the single authority over room state.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConfig holds connection and stream settings for the relay.
type JetStreamConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	MaxAge        time.Duration // how long to keep messages
	MaxMsgs       int64         // max number of messages to keep
}

// DefaultJetStreamConfig returns the default relay settings.
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:           nats.DefaultURL,
		StreamName:    "SKIRMISH_EVENTS",
		SubjectPrefix: "skirmish.events",
		MaxReconnects: -1, // infinite
		ReconnectWait: 2 * time.Second,
		MaxAge:        24 * time.Hour,
		MaxMsgs:       -1, // no limit
	}
}

// JetStreamRelay publishes match events to JetStream.
type JetStreamRelay struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

// NewJetStreamRelay connects to NATS and ensures the event stream exists.
func NewJetStreamRelay(cfg JetStreamConfig) (*JetStreamRelay, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	r := &JetStreamRelay{nc: nc, js: js, config: cfg}

	if err := r.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return r, nil
}

func (r *JetStreamRelay) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        r.config.StreamName,
		Description: "Match event stream for product-side consumers",
		Subjects:    []string{fmt.Sprintf("%s.>", r.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      r.config.MaxAge,
		MaxMsgs:     r.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
	}

	_, err := r.js.Stream(ctx, r.config.StreamName)
	if err != nil {
		_, err = r.js.CreateStream(ctx, sc)
		if err != nil {
			return fmt.Errorf("create stream %s: %w", r.config.StreamName, err)
		}
		log.Info().Str("stream", r.config.StreamName).Msg("created JetStream stream")
	}
	return nil
}

// Publish mirrors one match event. Fire-and-forget via PublishAsync so the
// game loop never blocks on the relay; failures are logged, not surfaced.
func (r *JetStreamRelay) Publish(eventType string, roomID string, payload any) {
	subject := fmt.Sprintf("%s.%s", r.config.SubjectPrefix, eventType)

	env := map[string]any{
		"eventId":   uuid.New().String(),
		"eventType": eventType,
		"roomId":    roomID,
		"timestamp": time.Now().UTC(),
		"payload":   payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to marshal relay event")
		return
	}

	if _, err := r.js.PublishAsync(subject, data); err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Str("room_id", roomID).
			Msg("failed to publish relay event")
	}
}

// Close drains pending publishes and closes the connection.
func (r *JetStreamRelay) Close() {
	select {
	case <-r.js.PublishAsyncComplete():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("timed out waiting for pending relay publishes")
	}
	r.nc.Close()
}
