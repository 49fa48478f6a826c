package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/skirmish/go/internal/game"
	"github.com/mcdev12/skirmish/go/internal/relay"
)

// Config is the file-backed server configuration. Environment variables
// override individual fields.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Game struct {
		TickIntervalSec int `yaml:"tick_interval_sec"`
		MaxEvents       int `yaml:"max_events"`
		GameDurationSec int `yaml:"game_duration_sec"`
	} `yaml:"game"`
	Relay struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"relay"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads the yaml config file, falling back to defaults when the
// file is absent, then applies environment overrides.
func loadConfig(path string) (*Config, error) {
	var config Config
	config.Server.Port = "8080"
	defaults := relay.DefaultJetStreamConfig()
	config.Relay.URL = defaults.URL
	config.Relay.StreamName = defaults.StreamName
	config.Relay.SubjectPrefix = defaults.SubjectPrefix

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Game.TickIntervalSec = getEnvAsInt("GAME_TICK_INTERVAL_SEC", config.Game.TickIntervalSec)
	config.Game.MaxEvents = getEnvAsInt("GAME_MAX_EVENTS", config.Game.MaxEvents)
	config.Game.GameDurationSec = getEnvAsInt("GAME_DURATION_SEC", config.Game.GameDurationSec)
	config.Relay.Enabled = getEnvAsBool("RELAY_ENABLED", config.Relay.Enabled)
	config.Relay.URL = getEnv("NATS_URL", config.Relay.URL)

	return &config, nil
}

// gameConfig maps the file values onto engine timings, keeping the engine
// defaults for anything unset.
func (c *Config) gameConfig() game.Config {
	cfg := game.DefaultConfig()
	if c.Game.TickIntervalSec > 0 {
		cfg.TickInterval = time.Duration(c.Game.TickIntervalSec) * time.Second
	}
	if c.Game.MaxEvents > 0 {
		cfg.MaxEvents = c.Game.MaxEvents
	}
	if c.Game.GameDurationSec > 0 {
		cfg.GameDuration = time.Duration(c.Game.GameDurationSec) * time.Second
	}
	return cfg
}

// relayConfig maps the file values onto the JetStream relay settings.
func (c *Config) relayConfig() relay.JetStreamConfig {
	cfg := relay.DefaultJetStreamConfig()
	if c.Relay.URL != "" {
		cfg.URL = c.Relay.URL
	}
	if c.Relay.StreamName != "" {
		cfg.StreamName = c.Relay.StreamName
	}
	if c.Relay.SubjectPrefix != "" {
		cfg.SubjectPrefix = c.Relay.SubjectPrefix
	}
	return cfg
}
