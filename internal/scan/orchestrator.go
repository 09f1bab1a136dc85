package scan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"market-scanner/internal/events"
	"market-scanner/internal/gateset"
	"market-scanner/internal/logging"
	"market-scanner/internal/metrics"
)

// Recorder persists a finished watchlist run. The orchestrator treats
// persistence as best-effort; a failed save never fails the scan.
type Recorder interface {
	Save(ctx context.Context, wl *WatchlistResult) error
}

// Orchestrator runs the evaluator sequentially over a watchlist with a
// paced delay between provider calls. Symbols are never fanned out in
// parallel; rate-limit safety wins over latency.
type Orchestrator struct {
	eval      *Evaluator
	sets      *gateset.Store
	bus       *events.EventBus
	metrics   *metrics.Metrics
	pacer     *Pacer
	watchlist []string
	recorder  Recorder
	log       zerolog.Logger
}

// SetRecorder enables scan-history persistence.
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// NewOrchestrator wires the orchestrator. bus and m may be nil when
// event streaming or metrics are not wanted.
func NewOrchestrator(eval *Evaluator, sets *gateset.Store, bus *events.EventBus, m *metrics.Metrics, pacer *Pacer, watchlist []string) *Orchestrator {
	return &Orchestrator{
		eval:      eval,
		sets:      sets,
		bus:       bus,
		metrics:   m,
		pacer:     pacer,
		watchlist: watchlist,
		log:       logging.Component("orchestrator"),
	}
}

// Watchlist returns the default symbol list.
func (o *Orchestrator) Watchlist() []string {
	out := make([]string, len(o.watchlist))
	copy(out, o.watchlist)
	return out
}

// ScanWatchlist evaluates symbols in order against one gate set. A nil
// or empty symbols slice falls back to the default watchlist. A fetch
// failure drops that one symbol; cancellation stops between symbols and
// returns the partial result alongside the context error.
func (o *Orchestrator) ScanWatchlist(ctx context.Context, gateSetID string, symbols []string) (*WatchlistResult, error) {
	if len(symbols) == 0 {
		symbols = o.watchlist
	}

	result := &WatchlistResult{
		ScanID:    uuid.NewString(),
		Results:   make([]*ScanResult, 0, len(symbols)),
		Passed:    make([]*ScanResult, 0),
		Failed:    make([]*ScanResult, 0),
		Timestamp: time.Now(),
	}
	if cfg, ok := o.sets.Get(gateSetID); ok {
		result.GateSet = cfg.Name
	}

	o.log.Info().
		Str("scan_id", result.ScanID).
		Str("gate_set", gateSetID).
		Int("symbols", len(symbols)).
		Msg("watchlist scan started")

	start := time.Now()
	var scanErr error
	for i, symbol := range symbols {
		if i > 0 {
			if err := o.pacer.Wait(ctx); err != nil {
				scanErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			scanErr = err
			break
		}

		res, err := o.eval.ScanSymbol(ctx, symbol, gateSetID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				scanErr = err
				break
			}
			o.log.Warn().Err(err).Str("symbol", symbol).Msg("fetch failed, symbol skipped")
			if o.metrics != nil {
				o.metrics.FetchErrorsTotal.Inc()
			}
			if o.bus != nil {
				o.bus.PublishError("orchestrator", "fetch failed for "+symbol, err)
			}
			continue
		}

		result.Results = append(result.Results, res)
		o.record(res)
		if res.Passed {
			result.Passed = append(result.Passed, res)
		} else {
			result.Failed = append(result.Failed, res)
		}
	}

	if o.metrics != nil {
		o.metrics.ScansTotal.Inc()
		o.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}
	if o.bus != nil {
		o.bus.PublishScanCompleted(result.ScanID, result.GateSet, len(result.Results), len(result.Passed), len(result.Failed))
	}
	if o.recorder != nil && len(result.Results) > 0 {
		// Detached context: the request may already be cancelled.
		go func() {
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.recorder.Save(saveCtx, result); err != nil {
				o.log.Warn().Err(err).Str("scan_id", result.ScanID).Msg("scan history save failed")
			}
		}()
	}

	o.log.Info().
		Str("scan_id", result.ScanID).
		Int("scanned", len(result.Results)).
		Int("passed", len(result.Passed)).
		Dur("took", time.Since(start)).
		Msg("watchlist scan finished")

	return result, scanErr
}

func (o *Orchestrator) record(res *ScanResult) {
	if o.metrics != nil {
		o.metrics.SymbolsScannedTotal.Inc()
		for _, g := range res.Gates {
			if g.Passed {
				o.metrics.GateTriggersTotal.WithLabelValues(g.RuleID).Inc()
			}
		}
		if res.Passed {
			o.metrics.SignalsTotal.WithLabelValues(string(res.Direction)).Inc()
		}
	}
	if o.bus != nil && res.Passed {
		o.bus.PublishSignal(res.Symbol, res.GateSet, string(res.Direction), res.Score, res.PassedGates, res.TotalGates)
	}
}
