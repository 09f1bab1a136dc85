package market

import "context"

// MinBars is the minimum usable history length. Providers return a nil
// series (not an error) when fewer bars are available, so the evaluator
// can report a clean "no data" result instead of failing the scan.
const MinBars = 20

// Provider supplies OHLCV history for a symbol over a lookback window.
//
// The contract mirrors the scanning engine's error taxonomy: a transport
// or API failure is returned as an error; "data exists but is unavailable
// or too short" is a nil series with a nil error.
type Provider interface {
	FetchOHLCV(ctx context.Context, symbol string, lookbackDays int) (*Series, error)
}
