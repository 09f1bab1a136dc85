// Package indicator provides pure, stateless technical indicator functions
// over price and volume slices (oldest value first). Every function degrades
// gracefully on short input: series values that cannot be computed are NaN,
// and scalar results carry an ok flag instead of panicking or erroring.
package indicator

import "math"

// EMA returns the exponential moving average series of values. The value at
// index period-1 is seeded with the simple average of the first period
// points; earlier indices are NaN. Input shorter than period yields an
// all-NaN result of the same length.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}

// RSI returns Wilder's Relative Strength Index over the last period changes.
// ok is false when fewer than period+1 values are available. A zero average
// loss is defined as RSI 100.
func RSI(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period+1 {
		return 0, false
	}

	gains := 0.0
	losses := 0.0
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing over the remaining bars.
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// TrueRange returns the true range at index i, defined as the maximum of
// high-low, |high-prevClose| and |low-prevClose|. Index 0 has no previous
// close and uses high-low alone.
func TrueRange(high, low, close []float64, i int) float64 {
	tr := high[i] - low[i]
	if i == 0 {
		return tr
	}
	prevClose := close[i-1]
	tr = math.Max(tr, math.Abs(high[i]-prevClose))
	return math.Max(tr, math.Abs(low[i]-prevClose))
}

// ATRSeries returns the Average True Range series smoothed with Wilder's
// recursive average. The first period-1 values carry the raw true range;
// index period-1 holds the simple average of the first period true ranges.
func ATRSeries(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	if period <= 0 || n == 0 || len(high) != n || len(low) != n {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	for i := 0; i < n && i < period-1; i++ {
		out[i] = TrueRange(high, low, close, i)
	}
	if n < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += TrueRange(high, low, close, i)
	}
	out[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + TrueRange(high, low, close, i)) / float64(period)
	}
	return out
}

// ATR returns the latest Average True Range value. ok is false when fewer
// than period bars are available.
func ATR(high, low, close []float64, period int) (float64, bool) {
	if period <= 0 || len(close) < period {
		return 0, false
	}
	series := ATRSeries(high, low, close, period)
	return series[len(series)-1], true
}

// SwingPoints returns the swing high and swing low of the trailing window of
// length lookback that excludes the most recent bar. ok is false when fewer
// than lookback+1 bars are available. Several detectors use these values as
// liquidity reference levels.
func SwingPoints(high, low []float64, lookback int) (swingHigh, swingLow float64, ok bool) {
	return SwingPointsAt(high, low, len(high), lookback)
}

// SwingPointsAt computes swing points over the lookback window that ends
// just before index end-1, i.e. bars [end-1-lookback, end-1). end equal to
// len(high) reproduces SwingPoints.
func SwingPointsAt(high, low []float64, end, lookback int) (swingHigh, swingLow float64, ok bool) {
	if lookback <= 0 || end > len(high) || end < lookback+1 || len(low) != len(high) {
		return 0, 0, false
	}

	start := end - 1 - lookback
	swingHigh = high[start]
	swingLow = low[start]
	for i := start + 1; i < end-1; i++ {
		if high[i] > swingHigh {
			swingHigh = high[i]
		}
		if low[i] < swingLow {
			swingLow = low[i]
		}
	}
	return swingHigh, swingLow, true
}

// AverageVolume returns the simple average of the last period values.
// ok is false on an empty window.
func AverageVolume(volumes []float64, period int) (float64, bool) {
	if period <= 0 || len(volumes) == 0 {
		return 0, false
	}
	if len(volumes) < period {
		period = len(volumes)
	}

	sum := 0.0
	for i := len(volumes) - period; i < len(volumes); i++ {
		sum += volumes[i]
	}
	return sum / float64(period), true
}
