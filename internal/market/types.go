package market

import "time"

// Kline represents a single OHLCV candlestick.
type Kline struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// Series is an ordered OHLCV history for one symbol, oldest bar first.
// Once fetched it is treated as immutable for the lifetime of a scan.
type Series struct {
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Klines    []Kline   `json:"klines"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Klines)
}

// Last returns the most recent bar. ok is false on an empty series.
func (s *Series) Last() (Kline, bool) {
	if s.Len() == 0 {
		return Kline{}, false
	}
	return s.Klines[len(s.Klines)-1], true
}

// Closes returns the close prices as a slice, oldest first.
func (s *Series) Closes() []float64 {
	out := make([]float64, s.Len())
	for i, k := range s.Klines {
		out[i] = k.Close
	}
	return out
}

// Highs returns the high prices as a slice, oldest first.
func (s *Series) Highs() []float64 {
	out := make([]float64, s.Len())
	for i, k := range s.Klines {
		out[i] = k.High
	}
	return out
}

// Lows returns the low prices as a slice, oldest first.
func (s *Series) Lows() []float64 {
	out := make([]float64, s.Len())
	for i, k := range s.Klines {
		out[i] = k.Low
	}
	return out
}

// Volumes returns the volumes as a slice, oldest first.
func (s *Series) Volumes() []float64 {
	out := make([]float64, s.Len())
	for i, k := range s.Klines {
		out[i] = k.Volume
	}
	return out
}
