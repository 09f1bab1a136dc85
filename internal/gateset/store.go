// Package gateset holds named, ordered gate configurations and the
// in-memory store that owns them. The store lives for the process
// lifetime only; custom sets do not survive a restart.
package gateset

import (
	"sort"
	"sync"

	"market-scanner/internal/rules"
)

// GateSpec configures one gate inside a set. Gate 0 is the master gate:
// its outcome seeds the scan direction and, when required, a miss stops
// the evaluation before any later gate runs.
type GateSpec struct {
	Gate     int          `json:"gate"`
	RuleID   string       `json:"rule_id"`
	Required bool         `json:"required"`
	Weight   float64      `json:"weight"`
	Params   rules.Params `json:"params,omitempty"`
}

// GateSetConfig is an ordered list of gates under a stable id.
type GateSetConfig struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Gates []GateSpec `json:"gates"`
}

// Store is a concurrency-safe collection of gate sets keyed by id.
type Store struct {
	mu   sync.RWMutex
	sets map[string]GateSetConfig
}

// NewStore builds a store seeded with the built-in presets.
func NewStore() *Store {
	s := &Store{sets: make(map[string]GateSetConfig)}
	for _, cfg := range presets() {
		s.sets[cfg.ID] = cfg
	}
	return s
}

// Add inserts or fully replaces a gate set. A colliding id overwrites
// the previous config; gates are never merged.
func (s *Store) Add(cfg GateSetConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[cfg.ID] = cfg
}

// Get returns the gate set for id.
func (s *Store) Get(id string) (GateSetConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.sets[id]
	return cfg, ok
}

// Delete removes a gate set and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return false
	}
	delete(s.sets, id)
	return true
}

// List returns every gate set, presets and custom alike, sorted by id.
func (s *Store) List() []GateSetConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GateSetConfig, 0, len(s.sets))
	for _, cfg := range s.sets {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func presets() []GateSetConfig {
	return []GateSetConfig{
		{
			ID:   "liquidity-hunt",
			Name: "Liquidity Hunt",
			Gates: []GateSpec{
				{Gate: 0, RuleID: rules.RuleLiquiditySweep, Required: true, Weight: 30},
				{Gate: 1, RuleID: rules.RuleVolumeSpike, Required: false, Weight: 25},
				{Gate: 2, RuleID: rules.RuleRSIExtreme, Required: false, Weight: 25},
				{Gate: 3, RuleID: rules.RuleEMACrossover, Required: false, Weight: 20},
			},
		},
		{
			ID:   "institutional-sniper",
			Name: "Institutional Sniper",
			Gates: []GateSpec{
				{Gate: 0, RuleID: rules.RuleSweepReclaim, Required: true, Weight: 40},
				{Gate: 1, RuleID: rules.RuleSweepSpeed, Required: false, Weight: 35},
				{Gate: 2, RuleID: rules.RuleVolumeSpike, Required: false, Weight: 25},
			},
		},
		{
			ID:   "bait-detector",
			Name: "Bait Detector",
			Gates: []GateSpec{
				{Gate: 0, RuleID: rules.RuleEqualLevels, Required: true, Weight: 50},
				{Gate: 1, RuleID: rules.RuleVolumeSpike, Required: false, Weight: 50},
			},
		},
		{
			ID:   "quick-scan",
			Name: "Quick Scan",
			Gates: []GateSpec{
				{Gate: 0, RuleID: rules.RuleRSIExtreme, Required: false, Weight: 35},
				{Gate: 1, RuleID: rules.RuleVolumeSpike, Required: false, Weight: 35},
				{Gate: 2, RuleID: rules.RuleEMACrossover, Required: false, Weight: 30},
			},
		},
	}
}
