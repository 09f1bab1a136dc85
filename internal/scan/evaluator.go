package scan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"market-scanner/internal/gateset"
	"market-scanner/internal/logging"
	"market-scanner/internal/market"
	"market-scanner/internal/rules"
)

// Evaluator scans one symbol against one gate set. Domain failures
// (unknown gate set, missing data, a required gate miss) come back
// inside the ScanResult; a Go error only means the provider call
// itself failed.
type Evaluator struct {
	provider     market.Provider
	registry     *rules.Registry
	sets         *gateset.Store
	lookbackDays int
	log          zerolog.Logger
}

// NewEvaluator wires the evaluator's collaborators.
func NewEvaluator(provider market.Provider, registry *rules.Registry, sets *gateset.Store, lookbackDays int) *Evaluator {
	return &Evaluator{
		provider:     provider,
		registry:     registry,
		sets:         sets,
		lookbackDays: lookbackDays,
		log:          logging.Component("evaluator"),
	}
}

// ScanSymbol resolves the gate set, fetches market data and walks the
// gates in order, master gate first.
func (e *Evaluator) ScanSymbol(ctx context.Context, symbol, gateSetID string) (*ScanResult, error) {
	cfg, ok := e.sets.Get(gateSetID)
	if !ok {
		return &ScanResult{
			Symbol: symbol,
			Error:  fmt.Sprintf("gate set %s not found", gateSetID),
		}, nil
	}

	result := &ScanResult{
		Symbol:     symbol,
		GateSet:    cfg.Name,
		Gates:      make([]GateResult, 0, len(cfg.Gates)),
		TotalGates: len(cfg.Gates),
	}

	series, err := e.provider.FetchOHLCV(ctx, symbol, e.lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", symbol, err)
	}
	if series == nil {
		result.Error = fmt.Sprintf("no market data for %s", symbol)
		return result, nil
	}

	for i, spec := range cfg.Gates {
		gr, cont := e.evalGate(series, spec, i == 0)
		result.Gates = append(result.Gates, gr)

		if gr.Passed {
			result.PassedGates++
			result.Score += spec.Weight
			if gr.IsMaster {
				result.Direction = gr.Direction
			}
		}

		if !cont {
			result.Message = fmt.Sprintf("required gate %d (%s) did not trigger: %s", spec.Gate, spec.RuleID, gr.Message)
			e.log.Debug().Str("symbol", symbol).Str("rule", spec.RuleID).Msg("required gate miss, scan stopped")
			return result, nil
		}
	}

	result.Passed = result.PassedGates >= 1
	result.Message = fmt.Sprintf("%d/%d gates passed (score %.0f%%)", result.PassedGates, result.TotalGates, result.Score)
	return result, nil
}

// evalGate runs one gate and decides whether evaluation continues.
// A required gate that fails to trigger stops the walk.
func (e *Evaluator) evalGate(series *market.Series, spec gateset.GateSpec, isMaster bool) (GateResult, bool) {
	outcome := e.registry.Evaluate(spec.RuleID, series, spec.Params)

	gr := GateResult{
		Outcome:   outcome,
		GateIndex: spec.Gate,
		RuleID:    spec.RuleID,
		Passed:    outcome.Triggered,
		Required:  spec.Required,
		IsMaster:  isMaster,
		Weight:    spec.Weight,
	}
	return gr, gr.Passed || !spec.Required
}
