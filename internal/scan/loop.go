package scan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"market-scanner/internal/logging"
)

// Loop re-runs the default watchlist against one gate set on a fixed
// interval so dashboards stay warm without polling the scan endpoint.
type Loop struct {
	orch      *Orchestrator
	gateSetID string
	interval  time.Duration
	log       zerolog.Logger
}

// NewLoop builds a background scan loop.
func NewLoop(orch *Orchestrator, gateSetID string, interval time.Duration) *Loop {
	return &Loop{
		orch:      orch,
		gateSetID: gateSetID,
		interval:  interval,
		log:       logging.Component("scanloop"),
	}
}

// Run scans once immediately, then on every tick until the context is
// cancelled. Intended to run on its own goroutine.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info().
		Str("gate_set", l.gateSetID).
		Dur("interval", l.interval).
		Msg("background scan loop started")

	l.scanOnce(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("background scan loop stopped")
			return
		case <-ticker.C:
			l.scanOnce(ctx)
		}
	}
}

func (l *Loop) scanOnce(ctx context.Context) {
	if _, err := l.orch.ScanWatchlist(ctx, l.gateSetID, nil); err != nil && ctx.Err() == nil {
		l.log.Warn().Err(err).Msg("background scan aborted")
	}
}
