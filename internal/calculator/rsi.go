package calculator

import (
	"TrendSignal/internal/model"
)

// RSI computes the relative strength index at every position of closes
// using a plain rolling mean of gains and losses (not Wilder smoothing).
//
// The first change has no predecessor and counts as zero gain and zero loss.
// A window without losses has an undefined RS, so its reading is undefined
// rather than 100.
func RSI(closes []float64, period int) ([]model.Reading, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGain, err := SMA(gains, period)
	if err != nil {
		return nil, err
	}
	avgLoss, err := SMA(losses, period)
	if err != nil {
		return nil, err
	}

	out := make([]model.Reading, n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if !g.Valid || !l.Valid || l.Value <= 0 {
			continue
		}
		rs := g.Value / l.Value
		out[i] = model.Defined(100.0 - 100.0/(1.0+rs))
	}
	return out, nil
}
