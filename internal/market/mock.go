package market

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// MockProvider serves deterministic synthetic OHLCV data so the service
// can run without exchange connectivity (MOCK_MODE=true) and so tests have
// a stable data source. The walk is seeded from the symbol name: the same
// symbol always produces the same series.
type MockProvider struct {
	basePrices map[string]float64
}

// NewMockProvider creates a mock provider with realistic base prices.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		basePrices: map[string]float64{
			"BTCUSDT": 104500.00,
			"ETHUSDT": 3900.00,
			"BNBUSDT": 710.00,
			"SOLUSDT": 220.00,
			"XRPUSDT": 2.35,
			"ADAUSDT": 1.05,
			"LINKUSDT": 28.00,
			"AVAXUSDT": 50.00,
		},
	}
}

// FetchOHLCV generates a bounded random walk of daily bars for symbol.
func (m *MockProvider) FetchOHLCV(ctx context.Context, symbol string, lookbackDays int) (*Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lookbackDays < MinBars {
		return nil, nil
	}

	base, ok := m.basePrices[symbol]
	if !ok {
		base = 100.0
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := time.Now().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -lookbackDays)

	klines := make([]Kline, 0, lookbackDays)
	price := base
	for i := 0; i < lookbackDays; i++ {
		drift := (rng.Float64() - 0.5) * 0.04 // +/-2% per bar
		open := price
		close := open * (1 + drift)
		high := math.Max(open, close) * (1 + rng.Float64()*0.01)
		low := math.Min(open, close) * (1 - rng.Float64()*0.01)
		volume := base * (50 + rng.Float64()*100)

		openTime := start.AddDate(0, 0, i)
		klines = append(klines, Kline{
			OpenTime:  openTime.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			CloseTime: openTime.AddDate(0, 0, 1).UnixMilli() - 1,
		})
		price = close
	}

	return &Series{
		Symbol:    symbol,
		Interval:  "1d",
		Klines:    klines,
		FetchedAt: time.Now(),
	}, nil
}
