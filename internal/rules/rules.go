// Package rules implements the gate registry: a catalog of named detector
// algorithms, each a pure function of an OHLCV series and a parameter bag.
package rules

import (
	"fmt"

	"market-scanner/internal/market"
)

// Direction is the directional bias a detector reports when it triggers.
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
)

// Params is the per-gate parameter bag. Values are numeric; integer
// parameters like lookbacks are stored as floats and truncated on read.
type Params map[string]float64

// Float returns the parameter value, or def when absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Int returns the parameter value truncated to int, or def when absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// Merge returns p overlaid with overrides, leaving both inputs untouched.
func (p Params) Merge(overrides Params) Params {
	out := make(Params, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Outcome is the result of running one detector. Short history never
// produces an error: detectors report triggered=false with an explanatory
// message so a misconfigured or data-starved gate degrades to "no signal".
type Outcome struct {
	Triggered bool               `json:"triggered"`
	Direction Direction          `json:"direction,omitempty"`
	Message   string             `json:"message"`
	Value     float64            `json:"value,omitempty"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// DetectorFunc evaluates one rule against a series.
type DetectorFunc func(s *market.Series, p Params) Outcome

// Rule describes one detector in the catalog. Definitions are static and
// never mutated after registration.
type Rule struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	DefaultGate   int    `json:"default_gate"`
	DefaultParams Params `json:"default_params,omitempty"`
}

// Registry maps rule ids to detector functions. Dispatch is a map lookup;
// the catalog preserves registration order for listing.
type Registry struct {
	rules     []Rule
	detectors map[string]DetectorFunc
	byID      map[string]Rule
}

// NewRegistry builds the registry with every built-in rule registered.
func NewRegistry() *Registry {
	r := &Registry{
		detectors: make(map[string]DetectorFunc),
		byID:      make(map[string]Rule),
	}

	r.Register(Rule{
		ID:            RuleLiquiditySweep,
		Name:          "Liquidity Sweep",
		Description:   "Price pierces a prior swing extreme and closes back inside it, trapping breakout traders",
		Category:      "liquidity",
		DefaultGate:   1,
		DefaultParams: Params{"lookback": 20},
	}, detectLiquiditySweep)

	r.Register(Rule{
		ID:            RuleSweepReclaim,
		Name:          "Sweep & Reclaim",
		Description:   "Two-phase trap: a recent bar pierced a swing extreme and the latest close has reclaimed it",
		Category:      "liquidity",
		DefaultGate:   1,
		DefaultParams: Params{"lookback": 20, "reclaim_bars": 3},
	}, detectSweepReclaim)

	r.Register(Rule{
		ID:            RuleEqualLevels,
		Name:          "Equal Highs/Lows Bait",
		Description:   "Multiple bars touching the same extreme build a liquidity pool likely to be swept",
		Category:      "liquidity",
		DefaultGate:   2,
		DefaultParams: Params{"window": 50, "tolerance": 0.002, "min_touches": 2},
	}, detectEqualLevels)

	r.Register(Rule{
		ID:            RuleSweepSpeed,
		Name:          "Sweep Speed Analysis",
		Description:   "Classifies how fast a sweep of a swing level was reclaimed; V-shapes suggest institutional stop hunts",
		Category:      "liquidity",
		DefaultGate:   2,
		DefaultParams: Params{"lookback": 20, "window": 15},
	}, detectSweepSpeed)

	r.Register(Rule{
		ID:            RuleRSIExtreme,
		Name:          "RSI Oversold/Overbought",
		Description:   "Contrarian signal when RSI crosses an extreme threshold",
		Category:      "momentum",
		DefaultGate:   3,
		DefaultParams: Params{"period": 14, "oversold": 30, "overbought": 70},
	}, detectRSIExtreme)

	r.Register(Rule{
		ID:            RuleVolumeSpike,
		Name:          "Volume Spike",
		Description:   "Current volume is a multiple of the trailing average, confirming participation",
		Category:      "volume",
		DefaultGate:   4,
		DefaultParams: Params{"period": 20, "multiplier": 2.0},
	}, detectVolumeSpike)

	r.Register(Rule{
		ID:            RuleEMACrossover,
		Name:          "EMA Crossover",
		Description:   "Fast EMA crossing the slow EMA on the latest bar",
		Category:      "trend",
		DefaultGate:   5,
		DefaultParams: Params{"fast": 9, "slow": 21},
	}, detectEMACrossover)

	return r
}

// Built-in rule ids.
const (
	RuleLiquiditySweep = "liquidity_sweep"
	RuleSweepReclaim   = "sweep_reclaim"
	RuleEqualLevels    = "equal_levels"
	RuleSweepSpeed     = "sweep_speed"
	RuleRSIExtreme     = "rsi_extreme"
	RuleVolumeSpike    = "volume_spike"
	RuleEMACrossover   = "ema_crossover"
)

// Register adds a rule and its detector. A colliding id replaces the
// detector but keeps the first definition's position in List.
func (r *Registry) Register(rule Rule, fn DetectorFunc) {
	if _, exists := r.byID[rule.ID]; !exists {
		r.rules = append(r.rules, rule)
	}
	r.detectors[rule.ID] = fn
	r.byID[rule.ID] = rule
}

// List returns all rule definitions in registration order.
func (r *Registry) List() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Get returns a rule definition by id.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Evaluate runs the detector for ruleID with the rule's defaults overlaid
// by params. An unknown rule id degrades to a not-triggered outcome so a
// stale gate set configuration cannot crash a scan.
func (r *Registry) Evaluate(ruleID string, s *market.Series, params Params) Outcome {
	fn, ok := r.detectors[ruleID]
	if !ok {
		return Outcome{Message: fmt.Sprintf("Rule %s not implemented", ruleID)}
	}

	defaults := r.byID[ruleID].DefaultParams
	return fn(s, defaults.Merge(params))
}

func insufficientData(need int) Outcome {
	return Outcome{Message: fmt.Sprintf("insufficient data: need at least %d bars", need)}
}
