package market

import (
	"context"
	"testing"
	"time"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) FetchOHLCV(_ context.Context, symbol string, lookbackDays int) (*Series, error) {
	p.calls++
	if lookbackDays < MinBars {
		return nil, nil
	}
	klines := make([]Kline, lookbackDays)
	for i := range klines {
		klines[i] = Kline{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	return &Series{Symbol: symbol, Interval: "1d", Klines: klines, FetchedAt: time.Now()}, nil
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	ctx := context.Background()

	if cache.Get(ctx, "BTCUSDT", 30) != nil {
		t.Fatal("empty cache must miss")
	}

	s := &Series{Symbol: "BTCUSDT", Klines: make([]Kline, 30)}
	cache.Set(ctx, "BTCUSDT", 30, s)

	if got := cache.Get(ctx, "BTCUSDT", 30); got == nil || got.Symbol != "BTCUSDT" {
		t.Error("cached series not returned")
	}
	if cache.Get(ctx, "BTCUSDT", 60) != nil {
		t.Error("a different lookback is a different key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	ctx := context.Background()

	cache.Set(ctx, "BTCUSDT", 30, &Series{Symbol: "BTCUSDT"})
	time.Sleep(5 * time.Millisecond)

	if cache.Get(ctx, "BTCUSDT", 30) != nil {
		t.Error("expired entry must miss")
	}
	cache.CleanupExpired()
}

func TestCachedProviderFetchesOnce(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedProvider(provider, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := cached.FetchOHLCV(ctx, "BTCUSDT", 30)
		if err != nil || s == nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if provider.calls != 1 {
		t.Errorf("expected a single upstream fetch, got %d", provider.calls)
	}
}

func TestCachedProviderNeverCachesNilSeries(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedProvider(provider, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if s, err := cached.FetchOHLCV(ctx, "BTCUSDT", 5); s != nil || err != nil {
			t.Fatalf("expected (nil, nil) for short lookback, got %v %v", s, err)
		}
	}
	if provider.calls != 2 {
		t.Errorf("unavailable data must not be cached, got %d calls", provider.calls)
	}
}
