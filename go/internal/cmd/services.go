package main

import (
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/skirmish/go/internal/game"
	"github.com/mcdev12/skirmish/go/internal/gateway"
	"github.com/mcdev12/skirmish/go/internal/relay"
)

// Services holds every constructed component. The registry/engine is an
// explicit instance owned here, not a singleton: tests build their own.
type Services struct {
	Game    *game.Service
	Gateway *gateway.Manager
	Relay   *relay.JetStreamRelay // nil when the relay is disabled
}

// setupServices wires the gateway and the room engine together. The gateway
// is the engine's Broadcaster, so it is built first and bound afterwards.
func setupServices(config *Config) (*Services, error) {
	manager := gateway.NewManager(gateway.DefaultConnectionConfig())

	opts := []game.Option{}
	var jsRelay *relay.JetStreamRelay
	if config.Relay.Enabled {
		r, err := relay.NewJetStreamRelay(config.relayConfig())
		if err != nil {
			return nil, err
		}
		jsRelay = r
		opts = append(opts, game.WithRelay(r))
		log.Info().Str("url", config.Relay.URL).Msg("match relay enabled")
	}

	gameService := game.NewService(config.gameConfig(), manager, opts...)
	manager.BindService(gameService)

	return &Services{
		Game:    gameService,
		Gateway: manager,
		Relay:   jsRelay,
	}, nil
}
