package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Reaper periodically removes rooms nobody is connected to.
type Reaper struct {
	registry    *Registry
	clock       quartz.Clock
	interval    time.Duration
	idleTimeout time.Duration
	logger      *log.Logger
}

// NewReaper creates a reaper that sweeps every interval.
func NewReaper(registry *Registry, clock quartz.Clock, interval, idleTimeout time.Duration, logger *log.Logger) *Reaper {
	return &Reaper{
		registry:    registry,
		clock:       clock,
		interval:    interval,
		idleTimeout: idleTimeout,
		logger:      logger.WithPrefix("reaper"),
	}
}

// Run sweeps until ctx is done.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval, "reaper")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep removes idle rooms once and returns how many it removed.
func (r *Reaper) Sweep() int {
	reaped := r.registry.ReapIdle(r.idleTimeout)
	for _, id := range reaped {
		r.logger.Info("Reaped idle room", "room", id)
	}
	if len(reaped) > 0 {
		r.logger.Debug("Sweep complete", "reaped", len(reaped), "remaining", r.registry.Len())
	}
	return len(reaped)
}
