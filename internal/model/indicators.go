package model

import (
	"fmt"
	"math"
)

// Reading is an indicator value that may be undefined, e.g. when the
// rolling window has not seen enough history yet.
type Reading struct {
	Value float64
	Valid bool
}

// Defined wraps v, marking NaN and ±Inf as undefined.
func Defined(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{Value: v, Valid: true}
}

// Undefined is the zero Reading.
func Undefined() Reading { return Reading{} }

func (r Reading) String() string {
	if !r.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.Value)
}

// Indicator names used in results and failures.
const (
	IndicatorTrend = "sma_trend"
	IndicatorRSI   = "rsi"
	IndicatorMACD  = "macd"
)

// IndicatorValues holds the latest readings behind the three signals.
type IndicatorValues struct {
	SMA5       Reading
	SMA20      Reading
	RSI        Reading
	MACD       Reading
	MACDSignal Reading
}

// IndicatorFailure records one indicator that could not produce a signal.
// It never aborts sibling indicators.
type IndicatorFailure struct {
	Indicator string
	Err       error
}

func (f IndicatorFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Indicator, f.Err)
}

func (f IndicatorFailure) Unwrap() error { return f.Err }

// IndicatorResult is the output of the indicator engine for one series.
type IndicatorResult struct {
	TrendUp             bool
	RSINotOverbought    bool
	MACDBullish         bool
	ConfidencePct       int // round(100 * points / 3)
	Points              int
	Observations        int
	InsufficientHistory bool
	Values              IndicatorValues
	Failures            []IndicatorFailure
}
