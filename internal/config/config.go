// Package config handles application configuration via environment
// variables, parsed with kelseyhightower/envconfig.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Game   GameConfig
	Store  StoreConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int    `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Env  string `envconfig:"ENV" default:"development"`
}

// GameConfig holds game settings: the shared host password, room code
// shape and default per-phase timer durations (seconds, 0 = manual).
type GameConfig struct {
	HostPassword        string `envconfig:"HOST_PASSWORD" default:""`
	RoomCodeLength      int    `envconfig:"ROOM_CODE_LENGTH" default:"4"`
	CountdownSeconds    int    `envconfig:"COUNTDOWN_SECONDS" default:"3"`
	VolunteeringSeconds int    `envconfig:"VOLUNTEERING_SECONDS" default:"15"`
	PitchesSeconds      int    `envconfig:"PITCHES_SECONDS" default:"0"`
	VotingSeconds       int    `envconfig:"VOTING_SECONDS" default:"30"`
	ResultsSeconds      int    `envconfig:"RESULTS_SECONDS" default:"10"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	// Backend is "memory" or "postgres"
	Backend string `envconfig:"STORE_BACKEND" default:"memory"`

	// DSN is the Postgres connection string, required when Backend is
	// "postgres"
	DSN string `envconfig:"STORE_DSN" default:""`

	// MediaDir is where uploaded photos are stored on disk
	MediaDir string `envconfig:"MEDIA_DIR" default:"./media"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"` // "json" or "text"
}

// Load reads configuration from environment variables with the prefix
// "APP". Example: APP_PORT=8080, APP_HOST_PASSWORD=secret.
func Load() (*Config, error) {
	var cfg Config

	// Sections are processed separately to keep env var names flat
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Game); err != nil {
		return nil, fmt.Errorf("load game config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Store); err != nil {
		return nil, fmt.Errorf("load store config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("load log config: %w", err)
	}

	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Addr returns the server address in host:port format
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
