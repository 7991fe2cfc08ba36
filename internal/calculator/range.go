package calculator

import (
	"errors"
	"math"

	"TrendSignal/internal/model"
)

var nan = math.NaN()

// WindowRange scans the most recent `window` bars and returns the high and low.
// A non-positive window scans every bar.
func WindowRange(bars []model.OHLCV, window int) (model.PriceRange, error) {
	if len(bars) == 0 {
		return model.PriceRange{}, errors.New("no bars provided")
	}
	n := len(bars)
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return model.PriceRange{High: high, Low: low}, nil
}

// RangePosition returns where price sits within r, clamped to 0.0~1.0.
func RangePosition(price float64, r model.PriceRange) (float64, error) {
	if r.High == r.Low {
		return 0.5, nil
	}
	if r.High < r.Low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - r.Low) / (r.High - r.Low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
