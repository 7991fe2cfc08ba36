package forecast

import (
	"testing"
	"time"

	"TrendSignal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSpaced(base time.Time, step time.Duration, closes ...float64) model.PriceSeries {
	times := make([]time.Time, len(closes))
	for i := range closes {
		times[i] = base.Add(time.Duration(i) * step)
	}
	return model.NewCloseSeries("TEST", times, closes)
}

func TestPredictNext_LinearSeries(t *testing.T) {
	// close[t] = 10 + 2t at t = 0..5 -> 22 at t = 6
	s := unitSpaced(time.Unix(0, 0).UTC(), time.Second, 10, 12, 14, 16, 18, 20)
	got, err := PredictNext(s)
	require.NoError(t, err)
	assert.InDelta(t, 22.0, got, 1e-9)
}

func TestPredictNext_RealEpochTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	s := unitSpaced(base, 30*time.Minute, 10, 12, 14, 16, 18, 20)
	got, err := PredictNext(s)
	require.NoError(t, err)
	assert.InDelta(t, 22.0, got, 1e-6)
}

func TestPredictNext_ConstantSeries(t *testing.T) {
	s := unitSpaced(time.Unix(1_700_000_000, 0), time.Minute, 100, 100, 100, 100)
	got, err := PredictNext(s)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestPredictNext_IdenticalTimestampsIsDegenerate(t *testing.T) {
	s := unitSpaced(time.Unix(1_700_000_000, 0), 0, 100, 100, 100)
	_, err := PredictNext(s)
	assert.ErrorIs(t, err, ErrDegenerateFit)
}

func TestPredictNext_TooShort(t *testing.T) {
	for _, s := range []model.PriceSeries{
		{},
		unitSpaced(time.Unix(0, 0), time.Second, 42),
	} {
		_, err := PredictNext(s)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	}
}

func TestPredictNext_UsesLastSpacing(t *testing.T) {
	// Points on close = t (seconds); last gap is 10s, so predict at 30.
	times := []time.Time{time.Unix(0, 0), time.Unix(10, 0), time.Unix(20, 0)}
	s := model.NewCloseSeries("TEST", times, []float64{0, 10, 20})
	got, err := PredictNext(s)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, got, 1e-9)

	times = []time.Time{time.Unix(0, 0), time.Unix(15, 0), time.Unix(20, 0)}
	s = model.NewCloseSeries("TEST", times, []float64{0, 15, 20})
	got, err = PredictNext(s)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-9)
}

func TestProject_SteadyRise(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	base := time.Unix(0, 0).UTC()
	fc, err := Project(unitSpaced(base, time.Second, closes...))
	require.NoError(t, err)

	assert.InDelta(t, 130.0, fc.PredictedPrice, 1e-9)
	assert.Equal(t, 129.0, fc.CurrentPrice)
	assert.InDelta(t, 100*(130.0-129.0)/129.0, fc.ChangePct, 1e-9)
	assert.Equal(t, time.Second, fc.Step)
	assert.Equal(t, base.Add(30*time.Second), fc.At)
}

func TestProject_NonPositiveLastClose(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	for _, last := range []float64{0, -5} {
		_, err := Project(unitSpaced(base, time.Second, 4, 3, 2, 1, last))
		assert.ErrorIs(t, err, ErrNonPositivePrice, "last close %v", last)
	}

	// The line itself may cross zero; only the reference close matters.
	fc, err := Project(unitSpaced(base, time.Second, 4, 3, 2, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, fc.PredictedPrice, 1e-9)
	assert.InDelta(t, -100.0, fc.ChangePct, 1e-9)
}

func TestFit_Line(t *testing.T) {
	base := time.Unix(500, 0)
	s := unitSpaced(base, 2*time.Second, 5, 9, 13)
	line, err := Fit(s)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, line.Slope, 1e-12)
	assert.InDelta(t, 5.0, line.Intercept, 1e-12)
	assert.InDelta(t, 17.0, line.At(base.Add(6*time.Second)), 1e-12)
}
