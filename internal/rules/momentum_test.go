package rules

import (
	"math"
	"testing"

	"market-scanner/internal/market"
)

func closesKlines(closes []float64, volume float64) []market.Kline {
	klines := make([]market.Kline, len(closes))
	for i, c := range closes {
		klines[i] = market.Kline{
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volume,
		}
	}
	return klines
}

func TestRSIExtremeOversold(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200 - float64(i)*3
	}

	out := detectRSIExtreme(newSeries(closesKlines(closes, 1000)), Params{})

	if !out.Triggered || out.Direction != Bullish {
		t.Fatalf("expected bullish oversold signal, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
	if out.Value >= 30 {
		t.Errorf("RSI %.2f should be below the oversold threshold", out.Value)
	}
}

func TestRSIExtremeOverbought(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)*3
	}

	out := detectRSIExtreme(newSeries(closesKlines(closes, 1000)), Params{})

	if !out.Triggered || out.Direction != Bearish {
		t.Fatalf("expected bearish overbought signal, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
	if out.Value != 100 {
		t.Errorf("monotonic rise should pin RSI at 100, got %.2f", out.Value)
	}
}

func TestRSIExtremeNeutral(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}

	out := detectRSIExtreme(newSeries(closesKlines(closes, 1000)), Params{})

	if out.Triggered {
		t.Fatalf("balanced gains and losses must not trigger, got %q", out.Message)
	}
	if out.Value < 30 || out.Value > 70 {
		t.Errorf("expected neutral RSI, got %.2f", out.Value)
	}
}

func TestRSIExtremeInsufficientData(t *testing.T) {
	out := detectRSIExtreme(newSeries(flatKlines(10, 100, 1000)), Params{})
	if out.Triggered {
		t.Error("short series must not trigger")
	}
	if out.Message == "" {
		t.Error("expected an insufficient data message")
	}
}

func TestVolumeSpikeTriggered(t *testing.T) {
	klines := flatKlines(21, 100, 100)
	klines[20].Open = 100
	klines[20].Close = 103
	klines[20].Volume = 250

	out := detectVolumeSpike(newSeries(klines), Params{})

	if !out.Triggered || out.Direction != Bullish {
		t.Fatalf("expected bullish volume spike, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
	if out.Value != 2.5 {
		t.Errorf("expected ratio 2.5, got %v", out.Value)
	}
	if out.Details["average_volume"] != 100 {
		t.Errorf("trailing average must exclude the current bar, got %v", out.Details["average_volume"])
	}
}

func TestVolumeSpikeBearishOnDownBar(t *testing.T) {
	klines := flatKlines(21, 100, 100)
	klines[20].Open = 100
	klines[20].Close = 96
	klines[20].Volume = 300

	out := detectVolumeSpike(newSeries(klines), Params{})

	if !out.Triggered || out.Direction != Bearish {
		t.Fatalf("down bar spike should read bearish, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
}

func TestVolumeSpikeBelowThreshold(t *testing.T) {
	klines := flatKlines(21, 100, 100)
	klines[20].Volume = 150

	out := detectVolumeSpike(newSeries(klines), Params{})

	if out.Triggered {
		t.Fatalf("1.5x volume must not clear a 2.0x threshold, got %q", out.Message)
	}
	if out.Value != 1.5 {
		t.Errorf("expected ratio 1.5, got %v", out.Value)
	}
}

func TestVolumeSpikeInsufficientData(t *testing.T) {
	out := detectVolumeSpike(newSeries(flatKlines(15, 100, 100)), Params{})
	if out.Triggered {
		t.Error("short series must not trigger")
	}
}

func TestEMACrossoverBullish(t *testing.T) {
	closes := make([]float64, 26)
	for i := range closes {
		closes[i] = 100
	}
	closes[25] = 110

	out := detectEMACrossover(newSeries(closesKlines(closes, 1000)), Params{})

	if !out.Triggered || out.Direction != Bullish {
		t.Fatalf("expected bullish cross, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
	if out.Value <= 0 {
		t.Errorf("fast EMA should sit above slow after the cross, spread %v", out.Value)
	}
}

func TestEMACrossoverBearish(t *testing.T) {
	closes := make([]float64, 26)
	for i := range closes {
		closes[i] = 100
	}
	closes[25] = 90

	out := detectEMACrossover(newSeries(closesKlines(closes, 1000)), Params{})

	if !out.Triggered || out.Direction != Bearish {
		t.Fatalf("expected bearish cross, got triggered=%v direction=%s", out.Triggered, out.Direction)
	}
}

func TestEMACrossoverNoRetriggerWhileAbove(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	out := detectEMACrossover(newSeries(closesKlines(closes, 1000)), Params{})

	if out.Triggered {
		t.Fatalf("sustained uptrend must only trigger on the crossing bar, got %q", out.Message)
	}
	if out.Value <= 0 || math.IsNaN(out.Value) {
		t.Errorf("fast EMA should stay above slow in an uptrend, spread %v", out.Value)
	}
}

func TestEMACrossoverInsufficientData(t *testing.T) {
	out := detectEMACrossover(newSeries(flatKlines(15, 100, 1000)), Params{})
	if out.Triggered {
		t.Error("short series must not trigger")
	}
}
