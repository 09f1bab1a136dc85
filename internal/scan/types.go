// Package scan runs gate sets against market data: the single-symbol
// evaluator, the sequential watchlist orchestrator, and the pacer that
// spaces provider calls.
package scan

import (
	"time"

	"market-scanner/internal/rules"
)

// GateResult wraps one rule outcome with its position in the gate set.
// Passed mirrors Triggered; whether a miss stops the scan is decided by
// Required, not folded into Passed.
type GateResult struct {
	rules.Outcome
	GateIndex int     `json:"gate"`
	RuleID    string  `json:"rule_id"`
	Passed    bool    `json:"passed"`
	Required  bool    `json:"required"`
	IsMaster  bool    `json:"is_master"`
	Weight    float64 `json:"weight"`
}

// ScanResult is the terminal aggregate for one symbol against one gate set.
type ScanResult struct {
	Symbol      string          `json:"symbol"`
	GateSet     string          `json:"gate_set"`
	Gates       []GateResult    `json:"gates"`
	PassedGates int             `json:"passed_gates"`
	TotalGates  int             `json:"total_gates"`
	Score       float64         `json:"score"`
	Direction   rules.Direction `json:"direction,omitempty"`
	Passed      bool            `json:"passed"`
	Message     string          `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// WatchlistResult aggregates one orchestrator run.
type WatchlistResult struct {
	ScanID    string        `json:"scan_id"`
	GateSet   string        `json:"gate_set"`
	Results   []*ScanResult `json:"results"`
	Passed    []*ScanResult `json:"passed"`
	Failed    []*ScanResult `json:"failed"`
	Timestamp time.Time     `json:"timestamp"`
}
