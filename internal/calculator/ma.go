package calculator

import (
	"errors"

	"TrendSignal/internal/model"
)

var ErrInvalidPeriod = errors.New("period must be positive")

// SMA computes the simple moving average at every position of values.
// Element i is undefined until the window has period observations (i < period-1).
// Each window is summed afresh so a window of zeros averages to exactly 0.
func SMA(values []float64, period int) ([]model.Reading, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Reading, len(values))
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-period+1 : i+1] {
			sum += v
		}
		out[i] = model.Defined(sum / float64(period))
	}
	return out, nil
}

// Last returns the final reading of a series, undefined when empty.
func Last(series []model.Reading) model.Reading {
	if len(series) == 0 {
		return model.Undefined()
	}
	return series[len(series)-1]
}
