package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"

	"market-scanner/internal/logging"
)

// BinanceProvider fetches daily OHLCV history from the Binance spot API.
type BinanceProvider struct {
	client   *binance.Client
	interval string
	log      zerolog.Logger
}

// NewBinanceProvider creates a provider backed by the Binance REST API.
// Public kline endpoints do not require credentials, so empty keys are fine.
func NewBinanceProvider(apiKey, secretKey, baseURL string) *BinanceProvider {
	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return &BinanceProvider{
		client:   client,
		interval: "1d",
		log:      logging.Component("binance"),
	}
}

// FetchOHLCV returns up to lookbackDays daily bars for symbol, oldest first.
// A series shorter than MinBars is reported as unavailable (nil, nil).
func (p *BinanceProvider) FetchOHLCV(ctx context.Context, symbol string, lookbackDays int) (*Series, error) {
	raw, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(p.interval).
		Limit(lookbackDays).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	if len(raw) < MinBars {
		p.log.Warn().Str("symbol", symbol).Int("bars", len(raw)).Msg("insufficient history from provider")
		return nil, nil
	}

	klines := make([]Kline, 0, len(raw))
	for _, k := range raw {
		klines = append(klines, Kline{
			OpenTime:  k.OpenTime,
			Open:      parseFloat(k.Open),
			High:      parseFloat(k.High),
			Low:       parseFloat(k.Low),
			Close:     parseFloat(k.Close),
			Volume:    parseFloat(k.Volume),
			CloseTime: k.CloseTime,
		})
	}

	return &Series{
		Symbol:    symbol,
		Interval:  p.interval,
		Klines:    klines,
		FetchedAt: time.Now(),
	}, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
