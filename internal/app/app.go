package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/core"
	transporthttp "github.com/vovakirdan/wirechat-lobby/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	commands, err := cfg.Chat.CommandTable()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Chat.NamePolicy()
	if err != nil {
		return nil, err
	}

	registry := core.NewRegistry(logger)
	dispatcher := core.NewDispatcher(registry, core.Options{
		Commands:      commands,
		Policy:        policy,
		RosterEnabled: cfg.Chat.RosterEnabled,
		Avatar:        cfg.Chat.DefaultAvatar,
	}, logger)

	server, err := transporthttp.NewServer(dispatcher, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}

	logger.Info().
		Str("claim", commands.Primary(core.ActionClaim)).
		Str("roster", commands.Primary(core.ActionRoster)).
		Bool("roster_enabled", cfg.Chat.RosterEnabled).
		Msg("chat configured")

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Int("sessions", a.registry.Len()).Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		return <-serverErr
	}
}
