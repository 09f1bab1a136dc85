package indicator

import (
	"math"
	"testing"
)

func TestEMASeedAndSentinel(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	period := 4

	ema := EMA(values, period)

	if len(ema) != len(values) {
		t.Fatalf("expected %d values, got %d", len(values), len(ema))
	}
	for i := 0; i < period-1; i++ {
		if !math.IsNaN(ema[i]) {
			t.Errorf("index %d should be NaN before the seed, got %v", i, ema[i])
		}
	}
	// Seed is the simple average of the first period points.
	if ema[period-1] != 2.5 {
		t.Errorf("expected seed 2.5 at index %d, got %v", period-1, ema[period-1])
	}
	for i := period; i < len(values); i++ {
		if math.IsNaN(ema[i]) || math.IsInf(ema[i], 0) {
			t.Errorf("index %d should be finite, got %v", i, ema[i])
		}
	}
}

func TestEMAShortInput(t *testing.T) {
	ema := EMA([]float64{1, 2}, 5)
	for i, v := range ema {
		if !math.IsNaN(v) {
			t.Errorf("short input should be all-NaN, index %d = %v", i, v)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	values := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64,
	}

	rsi, ok := RSI(values, 14)
	if !ok {
		t.Fatal("expected RSI to be computable")
	}
	if rsi < 0 || rsi > 100 {
		t.Errorf("RSI out of bounds: %v", rsi)
	}
}

func TestRSIZeroLossIsHundred(t *testing.T) {
	// Monotonically rising closes: average loss is exactly zero.
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	rsi, ok := RSI(values, 14)
	if !ok {
		t.Fatal("expected RSI to be computable")
	}
	if rsi != 100 {
		t.Errorf("expected RSI 100 on zero average loss, got %v", rsi)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if _, ok := RSI([]float64{1, 2, 3}, 14); ok {
		t.Error("expected ok=false for short input")
	}
}

func TestATRRawTrueRangePrefix(t *testing.T) {
	high := []float64{12, 13, 14, 15, 16}
	low := []float64{10, 11, 12, 13, 14}
	close := []float64{11, 12, 13, 14, 15}
	period := 3

	series := ATRSeries(high, low, close, period)

	// Indices before period-1 carry the raw true range.
	if series[0] != 2 {
		t.Errorf("index 0 should be raw TR high-low=2, got %v", series[0])
	}
	if series[1] != TrueRange(high, low, close, 1) {
		t.Errorf("index 1 should be raw TR, got %v", series[1])
	}

	atr, ok := ATR(high, low, close, period)
	if !ok {
		t.Fatal("expected ATR to be computable")
	}
	if math.IsNaN(atr) || atr <= 0 {
		t.Errorf("expected positive finite ATR, got %v", atr)
	}
}

func TestATRInsufficientData(t *testing.T) {
	if _, ok := ATR([]float64{1}, []float64{1}, []float64{1}, 14); ok {
		t.Error("expected ok=false for short input")
	}
}

func TestSwingPointsExcludesCurrentBar(t *testing.T) {
	// The last bar carries the extreme values; the swing window must not see them.
	high := []float64{10, 12, 11, 10, 13, 99}
	low := []float64{8, 9, 7, 8, 9, 1}

	swingHigh, swingLow, ok := SwingPoints(high, low, 5)
	if !ok {
		t.Fatal("expected swing points to be computable")
	}
	if swingHigh != 13 {
		t.Errorf("expected swing high 13, got %v", swingHigh)
	}
	if swingLow != 7 {
		t.Errorf("expected swing low 7, got %v", swingLow)
	}
}

func TestSwingPointsInsufficientData(t *testing.T) {
	if _, _, ok := SwingPoints([]float64{1, 2}, []float64{1, 2}, 5); ok {
		t.Error("expected ok=false when fewer than lookback+1 bars")
	}
}

func TestAverageVolume(t *testing.T) {
	vols := []float64{100, 100, 100, 100, 200}

	avg, ok := AverageVolume(vols, 5)
	if !ok {
		t.Fatal("expected average to be computable")
	}
	if avg != 120 {
		t.Errorf("expected 120, got %v", avg)
	}

	// Shorter input degrades to averaging what exists.
	avg, ok = AverageVolume([]float64{50, 150}, 20)
	if !ok || avg != 100 {
		t.Errorf("expected 100 over short input, got %v ok=%v", avg, ok)
	}
}
