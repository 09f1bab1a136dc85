package rules

import (
	"fmt"
	"math"

	"market-scanner/internal/indicator"
	"market-scanner/internal/market"
)

// detectRSIExtreme triggers when RSI sits beyond an extreme threshold.
// The call is contrarian: oversold reads bullish, overbought bearish.
func detectRSIExtreme(s *market.Series, p Params) Outcome {
	period := p.Int("period", 14)
	oversold := p.Float("oversold", 30)
	overbought := p.Float("overbought", 70)

	rsi, ok := indicator.RSI(s.Closes(), period)
	if !ok {
		return insufficientData(period + 1)
	}

	switch {
	case rsi < oversold:
		return Outcome{
			Triggered: true,
			Direction: Bullish,
			Message:   fmt.Sprintf("RSI %.1f below oversold threshold %.0f", rsi, oversold),
			Value:     rsi,
			Details:   map[string]float64{"rsi": rsi, "threshold": oversold},
		}
	case rsi > overbought:
		return Outcome{
			Triggered: true,
			Direction: Bearish,
			Message:   fmt.Sprintf("RSI %.1f above overbought threshold %.0f", rsi, overbought),
			Value:     rsi,
			Details:   map[string]float64{"rsi": rsi, "threshold": overbought},
		}
	}

	return Outcome{
		Message: fmt.Sprintf("RSI %.1f inside neutral band", rsi),
		Value:   rsi,
	}
}

// detectVolumeSpike triggers when the latest bar's volume is at least
// multiplier times the trailing average (which excludes the latest bar).
// Direction follows the bar's price change sign.
func detectVolumeSpike(s *market.Series, p Params) Outcome {
	period := p.Int("period", 20)
	multiplier := p.Float("multiplier", 2.0)

	if s.Len() < period+1 {
		return insufficientData(period + 1)
	}

	volumes := s.Volumes()
	avg, ok := indicator.AverageVolume(volumes[:len(volumes)-1], period)
	if !ok || avg == 0 {
		return Outcome{Message: "trailing average volume is zero"}
	}

	last, _ := s.Last()
	ratio := last.Volume / avg
	if ratio < multiplier {
		return Outcome{
			Message: fmt.Sprintf("volume %.2fx average, below %.1fx spike threshold", ratio, multiplier),
			Value:   ratio,
		}
	}

	dir := Bullish
	if last.Close < last.Open {
		dir = Bearish
	}

	return Outcome{
		Triggered: true,
		Direction: dir,
		Message:   fmt.Sprintf("volume spike %.2fx the %d-bar average", ratio, period),
		Value:     ratio,
		Details: map[string]float64{
			"ratio":          ratio,
			"average_volume": avg,
			"current_volume": last.Volume,
		},
	}
}

// detectEMACrossover triggers only on the bar where the fast EMA crosses
// the slow EMA, not while the fast side merely stays on top.
func detectEMACrossover(s *market.Series, p Params) Outcome {
	fast := p.Int("fast", 9)
	slow := p.Int("slow", 21)

	// One extra bar so the previous ordering is defined.
	if s.Len() < slow+1 {
		return insufficientData(slow + 1)
	}

	closes := s.Closes()
	fastEMA := indicator.EMA(closes, fast)
	slowEMA := indicator.EMA(closes, slow)

	n := len(closes)
	prevFast, curFast := fastEMA[n-2], fastEMA[n-1]
	prevSlow, curSlow := slowEMA[n-2], slowEMA[n-1]
	if math.IsNaN(prevFast) || math.IsNaN(prevSlow) || math.IsNaN(curFast) || math.IsNaN(curSlow) {
		return insufficientData(slow + 1)
	}

	details := map[string]float64{
		"fast_ema": curFast,
		"slow_ema": curSlow,
	}

	if prevFast <= prevSlow && curFast > curSlow {
		return Outcome{
			Triggered: true,
			Direction: Bullish,
			Message:   fmt.Sprintf("EMA %d crossed above EMA %d", fast, slow),
			Value:     curFast - curSlow,
			Details:   details,
		}
	}
	if prevFast >= prevSlow && curFast < curSlow {
		return Outcome{
			Triggered: true,
			Direction: Bearish,
			Message:   fmt.Sprintf("EMA %d crossed below EMA %d", fast, slow),
			Value:     curFast - curSlow,
			Details:   details,
		}
	}

	return Outcome{
		Message: fmt.Sprintf("no EMA %d/%d cross on the latest bar", fast, slow),
		Value:   curFast - curSlow,
	}
}
