// Package heartbeat keeps idle connections alive and surfaces dead peers.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pinger sends a transport-level keep-alive probe.
type Pinger interface {
	Ping(ctx context.Context, token string) error
}

// Config controls probe timing.
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	Timeout      time.Duration
}

// Prober pings one connection periodically until its context is cancelled.
// It knows nothing about sessions: a failed probe is returned to the caller,
// which closes the connection through the normal close path.
type Prober struct {
	cfg Config
	log *zerolog.Logger
}

// New builds a prober. Interval must be positive.
func New(cfg Config, logger *zerolog.Logger) (*Prober, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("heartbeat interval must be positive, got %s", cfg.Interval)
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Prober{cfg: cfg, log: logger}, nil
}

// Run blocks until ctx is done (returns nil) or a probe fails (returns the
// error).
func (p *Prober) Run(ctx context.Context, target Pinger) error {
	delay := time.NewTimer(p.cfg.InitialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-delay.C:
	}

	if err := p.probe(ctx, target); err != nil {
		return err
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.probe(ctx, target); err != nil {
				return err
			}
		}
	}
}

func (p *Prober) probe(ctx context.Context, target Pinger) error {
	token := uuid.NewString()

	pingCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	if err := target.Ping(pingCtx, token); err != nil {
		// The connection is already going away.
		if ctx.Err() != nil {
			return nil
		}
		p.log.Debug().Err(err).Str("token", token).Msg("heartbeat failed")
		return fmt.Errorf("heartbeat %s: %w", token, err)
	}
	p.log.Debug().Str("token", token).Msg("heartbeat ok")
	return nil
}
