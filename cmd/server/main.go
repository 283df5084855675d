package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/19tp01/very-terry-game/internal/app"
	"github.com/19tp01/very-terry-game/internal/blob"
	"github.com/19tp01/very-terry-game/internal/config"
	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
	httpTransport "github.com/19tp01/very-terry-game/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}

	if cfg.Log.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting party game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
	)

	// Open the persistence backend
	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Photo storage, served back under /media
	blobs, err := blob.NewLocal(cfg.Store.MediaDir, "/media")
	if err != nil {
		logger.Error("failed to open media dir", "error", err)
		os.Exit(1)
	}

	// Create room hub
	defaults := domain.TimerSettings{
		Countdown:    cfg.Game.CountdownSeconds,
		Volunteering: cfg.Game.VolunteeringSeconds,
		Pitches:      cfg.Game.PitchesSeconds,
		Voting:       cfg.Game.VotingSeconds,
		Results:      cfg.Game.ResultsSeconds,
	}
	hub := app.NewRoomHub(st, blobs, cfg.Game.RoomCodeLength, defaults, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, blobs, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// openStore selects the persistence backend from configuration
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return store.NewPostgres(ctx, cfg.Store.DSN, logger)
	default:
		return store.NewMemory(), nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
