package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered, read-only price history for one instrument.
// Bars are strictly increasing in time once they leave the collector.
type PriceSeries struct {
	Symbol    string
	Range     string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar and false when the series is empty.
func (s PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// NewCloseSeries builds a series from parallel timestamp/close slices.
// Extra elements of the longer slice are ignored.
func NewCloseSeries(symbol string, times []time.Time, closes []float64) PriceSeries {
	n := len(times)
	if len(closes) < n {
		n = len(closes)
	}
	bars := make([]OHLCV, n)
	for i := 0; i < n; i++ {
		c := closes[i]
		bars[i] = OHLCV{Time: times[i], Open: c, High: c, Low: c, Close: c}
	}
	return PriceSeries{Symbol: symbol, Bars: bars}
}

// Instrument is one selectable entry of the instrument menu.
type Instrument struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Label  string `yaml:"label" json:"label"`
}

// TimeRange is a labelled preset of bar interval and lookback period.
type TimeRange struct {
	Label    string `yaml:"label" json:"label"`
	Interval string `yaml:"interval" json:"interval"`
	Period   string `yaml:"period" json:"period"`
}
