package rules

import (
	"fmt"
	"math"

	"market-scanner/internal/indicator"
	"market-scanner/internal/market"
)

// detectLiquiditySweep flags a failed breakout of the prior swing extreme:
// the latest bar trades beyond the level but closes back inside it. The
// comparison is a hard inequality; the reference level comes from the
// trailing window that excludes the latest bar.
func detectLiquiditySweep(s *market.Series, p Params) Outcome {
	lookback := p.Int("lookback", 20)
	if s.Len() < lookback+1 {
		return insufficientData(lookback + 1)
	}

	highs := s.Highs()
	lows := s.Lows()
	swingHigh, swingLow, ok := indicator.SwingPoints(highs, lows, lookback)
	if !ok {
		return insufficientData(lookback + 1)
	}

	last, _ := s.Last()

	if last.High > swingHigh && last.Close < swingHigh {
		return Outcome{
			Triggered: true,
			Direction: Bearish,
			Message:   fmt.Sprintf("swept swing high %.4f and closed back below (trapped longs)", swingHigh),
			Value:     swingHigh,
			Details: map[string]float64{
				"swing_high":  swingHigh,
				"sweep_depth": pct(last.High-swingHigh, swingHigh),
			},
		}
	}

	if last.Low < swingLow && last.Close > swingLow {
		return Outcome{
			Triggered: true,
			Direction: Bullish,
			Message:   fmt.Sprintf("swept swing low %.4f and closed back above (trapped shorts)", swingLow),
			Value:     swingLow,
			Details: map[string]float64{
				"swing_low":   swingLow,
				"sweep_depth": pct(swingLow-last.Low, swingLow),
			},
		}
	}

	return Outcome{Message: "no sweep of the prior swing extremes on the latest bar"}
}

// detectSweepReclaim looks for the two-phase trap: a bar within the last
// reclaim_bars pierced a swing extreme computed from the window preceding
// those bars, and the most recent close has moved back inside the level.
// Candidate sweep bars are scanned oldest first; the first qualifying bar
// wins and its age and sweep depth are reported.
func detectSweepReclaim(s *market.Series, p Params) Outcome {
	lookback := p.Int("lookback", 20)
	reclaimBars := p.Int("reclaim_bars", 3)

	need := lookback + reclaimBars + 1
	if s.Len() < need {
		return insufficientData(need)
	}

	highs := s.Highs()
	lows := s.Lows()
	n := s.Len()

	// Swing extremes over the window immediately preceding the candidate bars.
	start := n - reclaimBars - lookback
	swingHigh := highs[start]
	swingLow := lows[start]
	for i := start + 1; i < n-reclaimBars; i++ {
		swingHigh = math.Max(swingHigh, highs[i])
		swingLow = math.Min(swingLow, lows[i])
	}

	lastClose := s.Klines[n-1].Close

	for i := n - reclaimBars; i < n; i++ {
		barsAgo := float64(n - 1 - i)

		if highs[i] > swingHigh && lastClose < swingHigh {
			return Outcome{
				Triggered: true,
				Direction: Bearish,
				Message:   fmt.Sprintf("swing high %.4f swept %d bars ago and reclaimed", swingHigh, int(barsAgo)),
				Value:     swingHigh,
				Details: map[string]float64{
					"swing_high":      swingHigh,
					"bars_to_reclaim": barsAgo,
					"sweep_depth":     pct(highs[i]-swingHigh, swingHigh),
				},
			}
		}

		if lows[i] < swingLow && lastClose > swingLow {
			return Outcome{
				Triggered: true,
				Direction: Bullish,
				Message:   fmt.Sprintf("swing low %.4f swept %d bars ago and reclaimed", swingLow, int(barsAgo)),
				Value:     swingLow,
				Details: map[string]float64{
					"swing_low":       swingLow,
					"bars_to_reclaim": barsAgo,
					"sweep_depth":     pct(swingLow-lows[i], swingLow),
				},
			}
		}
	}

	return Outcome{Message: "no sweep-and-reclaim pattern in the recent bars"}
}

// detectEqualLevels hunts the pre-sweep "bait": several bars parked within
// tolerance of the same extreme, a resting liquidity pool. Direction is
// contrarian to the touched level: equal highs set up a bearish sweep,
// equal lows a bullish one.
func detectEqualLevels(s *market.Series, p Params) Outcome {
	window := p.Int("window", 50)
	tolerance := p.Float("tolerance", 0.002)
	minTouches := p.Int("min_touches", 2)

	if s.Len() < window {
		return insufficientData(window)
	}

	highs := s.Highs()
	lows := s.Lows()
	n := s.Len()
	lastClose := s.Klines[n-1].Close

	maxHigh := highs[n-window]
	minLow := lows[n-window]
	for i := n - window + 1; i < n; i++ {
		maxHigh = math.Max(maxHigh, highs[i])
		minLow = math.Min(minLow, lows[i])
	}

	highTouches, highLevelSum := countTouches(highs[n-window:], maxHigh, tolerance)
	if highTouches >= minTouches {
		avgLevel := highLevelSum / float64(highTouches)
		return Outcome{
			Triggered: true,
			Direction: Bearish,
			Message:   fmt.Sprintf("%d equal highs near %.4f, liquidity pool above", highTouches, avgLevel),
			Value:     avgLevel,
			Details: map[string]float64{
				"touches":          float64(highTouches),
				"level":            avgLevel,
				"distance_percent": pct(avgLevel-lastClose, lastClose),
			},
		}
	}

	lowTouches, lowLevelSum := countTouches(lows[n-window:], minLow, tolerance)
	if lowTouches >= minTouches {
		avgLevel := lowLevelSum / float64(lowTouches)
		return Outcome{
			Triggered: true,
			Direction: Bullish,
			Message:   fmt.Sprintf("%d equal lows near %.4f, liquidity pool below", lowTouches, avgLevel),
			Value:     avgLevel,
			Details: map[string]float64{
				"touches":          float64(lowTouches),
				"level":            avgLevel,
				"distance_percent": pct(lastClose-avgLevel, lastClose),
			},
		}
	}

	return Outcome{Message: "no clustered equal highs or lows in the window"}
}

func countTouches(values []float64, extreme, tolerance float64) (int, float64) {
	if extreme == 0 {
		return 0, 0
	}
	count := 0
	sum := 0.0
	for _, v := range values {
		if math.Abs(v-extreme)/math.Abs(extreme) <= tolerance {
			count++
			sum += v
		}
	}
	return count, sum
}

// Sweep speed classes. Fast V-shaped reclaims point at an engineered stop
// hunt; slow reclaims may be a genuine trend change.
const (
	speedFast   = "fast_v_shape"
	speedMedium = "medium"
	speedSlow   = "slow"
)

// detectSweepSpeed scans a fixed recent window for the first bar breaching
// the swing reference built from the bars before it, then measures how many
// bars it took to close back inside the level. Each speed class carries a
// fixed confidence score.
func detectSweepSpeed(s *market.Series, p Params) Outcome {
	lookback := p.Int("lookback", 20)
	window := p.Int("window", 15)

	need := lookback + window + 1
	if s.Len() < need {
		return insufficientData(need)
	}

	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()
	n := s.Len()

	start := n - window - lookback
	swingHigh := highs[start]
	swingLow := lows[start]
	for i := start + 1; i < n-window; i++ {
		swingHigh = math.Max(swingHigh, highs[i])
		swingLow = math.Min(swingLow, lows[i])
	}

	for i := n - window; i < n; i++ {
		if highs[i] > swingHigh {
			if reclaimAt, ok := firstCloseBelow(closes, i, swingHigh); ok {
				return classifySweepSpeed(Bearish, swingHigh, reclaimAt-i)
			}
			return Outcome{Message: fmt.Sprintf("swing high %.4f swept but not yet reclaimed", swingHigh)}
		}
		if lows[i] < swingLow {
			if reclaimAt, ok := firstCloseAbove(closes, i, swingLow); ok {
				return classifySweepSpeed(Bullish, swingLow, reclaimAt-i)
			}
			return Outcome{Message: fmt.Sprintf("swing low %.4f swept but not yet reclaimed", swingLow)}
		}
	}

	return Outcome{Message: "no sweep of the reference level in the analysis window"}
}

func firstCloseBelow(closes []float64, from int, level float64) (int, bool) {
	for i := from; i < len(closes); i++ {
		if closes[i] < level {
			return i, true
		}
	}
	return 0, false
}

func firstCloseAbove(closes []float64, from int, level float64) (int, bool) {
	for i := from; i < len(closes); i++ {
		if closes[i] > level {
			return i, true
		}
	}
	return 0, false
}

func classifySweepSpeed(dir Direction, level float64, bars int) Outcome {
	var class string
	var confidence, risk float64
	switch {
	case bars <= 3:
		class, confidence, risk = speedFast, 85, 1
	case bars <= 8:
		class, confidence, risk = speedMedium, 65, 2
	default:
		class, confidence, risk = speedSlow, 45, 3
	}

	msg := fmt.Sprintf("level %.4f reclaimed in %d bars (%s)", level, bars, class)
	if class == speedSlow {
		msg += ", may be a genuine trend change"
	}

	return Outcome{
		Triggered: true,
		Direction: dir,
		Message:   msg,
		Value:     confidence,
		Details: map[string]float64{
			"bars_to_reclaim": float64(bars),
			"confidence":      confidence,
			"risk_level":      risk,
			"level":           level,
		},
	}
}

func pct(delta, base float64) float64 {
	if base == 0 {
		return 0
	}
	return delta / base * 100
}
