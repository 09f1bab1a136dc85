package market

import (
	"context"
	"testing"
)

func TestMockProviderDeterministic(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	first, err := m.FetchOHLCV(ctx, "BTCUSDT", 60)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.FetchOHLCV(ctx, "BTCUSDT", 60)
	if err != nil {
		t.Fatal(err)
	}

	if first.Len() != 60 || second.Len() != 60 {
		t.Fatalf("expected 60 bars, got %d and %d", first.Len(), second.Len())
	}
	for i := range first.Klines {
		if first.Klines[i].Close != second.Klines[i].Close {
			t.Fatalf("bar %d differs between runs", i)
		}
	}
}

func TestMockProviderBarsAreCoherent(t *testing.T) {
	m := NewMockProvider()

	s, err := m.FetchOHLCV(context.Background(), "UNKNOWNUSDT", 40)
	if err != nil {
		t.Fatal(err)
	}
	for i, k := range s.Klines {
		if k.High < k.Open || k.High < k.Close || k.Low > k.Open || k.Low > k.Close {
			t.Fatalf("bar %d has incoherent OHLC: %+v", i, k)
		}
		if k.Volume <= 0 {
			t.Fatalf("bar %d has non-positive volume", i)
		}
	}
}

func TestMockProviderShortLookbackUnavailable(t *testing.T) {
	m := NewMockProvider()

	s, err := m.FetchOHLCV(context.Background(), "BTCUSDT", 5)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Error("lookback below the minimum must report no data")
	}
}
