package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweepable is any store that can drop idle entries in one pass.
type Sweepable interface {
	Sweep(now time.Time) int
}

// SessionSweeper periodically evicts idle sessions from the in-memory store.
// Redis-backed stores expire keys themselves and do not need one.
type SessionSweeper struct {
	interval time.Duration
	store    Sweepable
	log      *zerolog.Logger
}

func NewSessionSweeper(interval time.Duration, store Sweepable, logger *zerolog.Logger) *SessionSweeper {
	swLog := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{
		interval: interval,
		store:    store,
		log:      &swLog,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			if n := w.store.Sweep(time.Now()); n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions evicted")
			}
		}
	}
}
