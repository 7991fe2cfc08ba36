package strategy

import (
	"math"

	"TrendSignal/internal/model"
)

// MinHistory is the number of observations required before any indicator
// is evaluated. Shorter series score 0 without error.
const MinHistory = 30

const totalIndicators = 3

// Evaluate runs the three indicators independently over the series and
// combines them into a confidence score. The series is never modified.
func Evaluate(series model.PriceSeries) model.IndicatorResult {
	res := model.IndicatorResult{Observations: series.Len()}
	if series.Len() < MinHistory {
		res.InsufficientHistory = true
		return res
	}

	closes := series.Closes()
	factors := []struct {
		name string
		eval func([]float64, *model.IndicatorValues) signal
		dst  *bool
	}{
		{model.IndicatorTrend, trendSignal, &res.TrendUp},
		{model.IndicatorRSI, rsiSignal, &res.RSINotOverbought},
		{model.IndicatorMACD, macdSignal, &res.MACDBullish},
	}
	for _, f := range factors {
		s := f.eval(closes, &res.Values)
		if s.err != nil {
			res.Failures = append(res.Failures, model.IndicatorFailure{Indicator: f.name, Err: s.err})
			continue
		}
		*f.dst = s.on
	}

	res.Points = countPoints(res)
	res.ConfidencePct = confidenceFor(res.Points)
	return res
}

// ComputeConfidence returns only the 0-100 score of Evaluate.
func ComputeConfidence(series model.PriceSeries) int {
	return Evaluate(series).ConfidencePct
}

func countPoints(res model.IndicatorResult) int {
	points := 0
	for _, on := range []bool{res.TrendUp, res.RSINotOverbought, res.MACDBullish} {
		if on {
			points++
		}
	}
	return points
}

// confidenceFor maps 0..3 points to {0, 33, 67, 100}. math.Round rounds half
// away from zero; thirds never produce a tie.
func confidenceFor(points int) int {
	if points < 0 {
		points = 0
	}
	if points > totalIndicators {
		points = totalIndicators
	}
	return int(math.Round(100 * float64(points) / totalIndicators))
}
