// Package forecast projects the next close price with an ordinary least
// squares line over (time, close).
//
// This is a one-step linear extrapolation, not a time-series model: it has
// no error bars, no seasonality and weights every observation equally.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"TrendSignal/internal/model"

	"gonum.org/v1/gonum/stat"
)

// MinPoints is the smallest series PredictNext accepts.
const MinPoints = 2

var (
	ErrInsufficientHistory = errors.New("forecast needs at least 2 observations")
	ErrDegenerateFit       = errors.New("all timestamps are identical; slope is undefined")
	ErrNonFiniteFit        = errors.New("fit produced a non-finite value")
	ErrNonPositivePrice    = errors.New("latest close must be positive")
)

// Line is a fitted close ≈ Slope*seconds + Intercept, where seconds are
// measured from Origin. Shifting the origin only moves the intercept, so the
// fit is the same as on raw epoch seconds but keeps more precision.
type Line struct {
	Origin    time.Time
	Slope     float64 // price units per second
	Intercept float64
}

// At evaluates the line at t.
func (l Line) At(t time.Time) float64 {
	return l.Intercept + l.Slope*seconds(l.Origin, t)
}

// Fit runs OLS of close on time with an intercept.
func Fit(series model.PriceSeries) (Line, error) {
	n := series.Len()
	if n < MinPoints {
		return Line{}, fmt.Errorf("%w: got %d", ErrInsufficientHistory, n)
	}

	origin := series.Bars[0].Time
	xs := make([]float64, n)
	ys := make([]float64, n)
	varies := false
	for i, b := range series.Bars {
		xs[i] = seconds(origin, b.Time)
		ys[i] = b.Close
		if xs[i] != xs[0] {
			varies = true
		}
	}
	if !varies {
		return Line{}, ErrDegenerateFit
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Line{}, ErrNonFiniteFit
	}
	return Line{Origin: origin, Slope: beta, Intercept: alpha}, nil
}

// NextTimestamp returns the last timestamp advanced by the most recent
// observed spacing (not a fixed interval).
func NextTimestamp(series model.PriceSeries) (time.Time, time.Duration, error) {
	n := series.Len()
	if n < MinPoints {
		return time.Time{}, 0, fmt.Errorf("%w: got %d", ErrInsufficientHistory, n)
	}
	last := series.Bars[n-1].Time
	step := last.Sub(series.Bars[n-2].Time)
	return last.Add(step), step, nil
}

// PredictNext returns the fitted line's value one observed step past the
// last timestamp.
func PredictNext(series model.PriceSeries) (float64, error) {
	line, err := Fit(series)
	if err != nil {
		return 0, err
	}
	at, _, err := NextTimestamp(series)
	if err != nil {
		return 0, err
	}
	return line.At(at), nil
}

// Project wraps PredictNext into a model.Forecast against the latest close.
func Project(series model.PriceSeries) (model.Forecast, error) {
	line, err := Fit(series)
	if err != nil {
		return model.Forecast{}, err
	}
	at, step, err := NextTimestamp(series)
	if err != nil {
		return model.Forecast{}, err
	}
	last, _ := series.Last()
	if last.Close <= 0 {
		return model.Forecast{}, fmt.Errorf("%w: got %v", ErrNonPositivePrice, last.Close)
	}
	predicted := line.At(at)

	return model.Forecast{
		PredictedPrice: predicted,
		CurrentPrice:   last.Close,
		ChangePct:      100 * (predicted - last.Close) / last.Close,
		At:             at,
		Step:           step,
	}, nil
}

func seconds(origin, t time.Time) float64 {
	return t.Sub(origin).Seconds()
}
