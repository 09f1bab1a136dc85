package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the scanning engine.
type Metrics struct {
	ScansTotal          prometheus.Counter
	SymbolsScannedTotal prometheus.Counter
	GateTriggersTotal   *prometheus.CounterVec // labels: rule
	SignalsTotal        *prometheus.CounterVec // labels: direction
	FetchErrorsTotal    prometheus.Counter
	ScanDuration        prometheus.Histogram
}

// NewMetrics registers and returns all scanner metrics.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScansTotal,
		m.SymbolsScannedTotal,
		m.GateTriggersTotal,
		m.SignalsTotal,
		m.FetchErrorsTotal,
		m.ScanDuration,
	)
	return m
}

// NewUnregistered returns metrics without touching the default registry,
// for tests that build several scanners in one process.
func NewUnregistered() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_scans_total",
			Help: "Total watchlist scan invocations",
		}),
		SymbolsScannedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_symbols_scanned_total",
			Help: "Total symbols evaluated across all scans",
		}),
		GateTriggersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_gate_triggers_total",
			Help: "Gate triggers by rule id",
		}, []string{"rule"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_total",
			Help: "Passed scans by direction",
		}, []string{"direction"}),
		FetchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_fetch_errors_total",
			Help: "Provider fetch failures during watchlist scans",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_scan_duration_seconds",
			Help:    "Wall time of one watchlist scan",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
