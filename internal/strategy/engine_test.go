package strategy

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"TrendSignal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(closes ...float64) model.PriceSeries {
	base := time.Unix(0, 0).UTC()
	times := make([]time.Time, len(closes))
	for i := range closes {
		times[i] = base.Add(time.Duration(i) * time.Second)
	}
	return model.NewCloseSeries("TEST", times, closes)
}

func rising(n int, start float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)
	}
	return closes
}

// zigzag extends closes by n steps alternating a then b.
func zigzag(closes []float64, start float64, n int, a, b float64) []float64 {
	p := start
	if len(closes) > 0 {
		p = closes[len(closes)-1]
	}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			p += a
		} else {
			p += b
		}
		closes = append(closes, p)
	}
	return closes
}

func TestEvaluate_ShortSeriesScoresZero(t *testing.T) {
	for n := 0; n < MinHistory; n++ {
		res := Evaluate(seriesOf(rising(n, 100)...))
		if res.ConfidencePct != 0 {
			t.Fatalf("len %d: expected 0, got %d", n, res.ConfidencePct)
		}
		if !res.InsufficientHistory {
			t.Fatalf("len %d: expected insufficient history flag", n)
		}
		if len(res.Failures) != 0 {
			t.Fatalf("len %d: no indicator should run, got failures %v", n, res.Failures)
		}
	}
}

func TestEvaluate_SteadyRise(t *testing.T) {
	// 100..129: SMA5 > SMA20, RSI undefined (no losses), MACD above signal.
	res := Evaluate(seriesOf(rising(30, 100)...))

	assert.False(t, res.InsufficientHistory)
	assert.True(t, res.TrendUp)
	assert.False(t, res.RSINotOverbought)
	assert.True(t, res.MACDBullish)
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, 67, res.ConfidencePct)
	assert.Equal(t, model.RecommendBuy, Recommend(res.ConfidencePct))

	assert.InDelta(t, 127.0, res.Values.SMA5.Value, 1e-9)
	assert.InDelta(t, 119.5, res.Values.SMA20.Value, 1e-9)
	assert.False(t, res.Values.RSI.Valid)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, model.IndicatorRSI, res.Failures[0].Indicator)
	assert.True(t, errors.Is(res.Failures[0], ErrUndefined))
}

func TestEvaluate_SteadyDecline(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	res := Evaluate(seriesOf(closes...))

	assert.False(t, res.TrendUp)
	assert.True(t, res.RSINotOverbought, "all-loss window has RSI 0")
	assert.False(t, res.MACDBullish)
	assert.Equal(t, 33, res.ConfidencePct)
	assert.Empty(t, res.Failures)
	assert.Equal(t, model.RecommendAvoid, Recommend(res.ConfidencePct))
}

func TestEvaluate_FlatSeriesIsolatesRSIFailure(t *testing.T) {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100
	}
	res := Evaluate(seriesOf(closes...))

	// SMA5 == SMA20, so no trend point. The MACD sibling still runs.
	assert.True(t, res.Values.SMA5.Valid)
	assert.False(t, res.TrendUp)
	assert.True(t, res.Values.MACD.Valid)
	assert.True(t, res.Values.MACDSignal.Valid)
	assert.False(t, res.RSINotOverbought)
	assert.LessOrEqual(t, res.ConfidencePct, 33)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, model.IndicatorRSI, res.Failures[0].Indicator)
}

func TestEvaluate_ChoppyRiseAwardsAllThree(t *testing.T) {
	// +1/-1 chop, then +2/-1 chop: 7 gains of 2 and 7 losses of 1 in the RSI window.
	closes := zigzag(nil, 100, 20, 1, -1)
	closes = zigzag(closes, 0, 20, 2, -1)
	res := Evaluate(seriesOf(closes...))

	assert.Empty(t, res.Failures)
	assert.True(t, res.TrendUp)
	assert.True(t, res.RSINotOverbought)
	assert.True(t, res.MACDBullish)
	assert.Equal(t, 3, res.Points)
	assert.Equal(t, 100, res.ConfidencePct)
	assert.Equal(t, model.RecommendBuy, Recommend(res.ConfidencePct))

	assert.InDelta(t, 109.6, res.Values.SMA5.Value, 1e-9)
	assert.InDelta(t, 106.0, res.Values.SMA20.Value, 1e-9)
	assert.InDelta(t, 200.0/3, res.Values.RSI.Value, 1e-9)
	assert.Greater(t, res.Values.MACD.Value-res.Values.MACDSignal.Value, 0.3)
}

func TestEvaluate_MomentumWithoutTrend(t *testing.T) {
	// Long chop lower, short chop higher: MACD turns up before SMA5 clears SMA20.
	closes := zigzag(nil, 150, 25, -2, 1)
	closes = zigzag(closes, 0, 5, 2, -1)
	res := Evaluate(seriesOf(closes...))

	assert.Empty(t, res.Failures)
	assert.False(t, res.TrendUp)
	assert.True(t, res.RSINotOverbought)
	assert.True(t, res.MACDBullish)
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, 67, res.ConfidencePct)
	assert.Equal(t, model.RecommendBuy, Recommend(res.ConfidencePct))

	assert.InDelta(t, 138.4, res.Values.SMA5.Value, 1e-9)
	assert.InDelta(t, 139.75, res.Values.SMA20.Value, 1e-9)
	assert.InDelta(t, 500.0/11, res.Values.RSI.Value, 1e-9)
}

func TestEvaluate_DoesNotMutateSeries(t *testing.T) {
	s := seriesOf(rising(40, 10)...)
	before := append([]model.OHLCV(nil), s.Bars...)
	_ = Evaluate(s)
	assert.Equal(t, before, s.Bars)
}

func TestComputeConfidence_AttainableValues(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	allowed := map[int]bool{0: true, 33: true, 67: true, 100: true}
	for trial := 0; trial < 500; trial++ {
		n := MinHistory + rng.Intn(70)
		closes := make([]float64, n)
		p := 100.0
		for i := range closes {
			p += rng.NormFloat64()
			if p < 1 {
				p = 1
			}
			closes[i] = p
		}
		got := ComputeConfidence(seriesOf(closes...))
		if !allowed[got] {
			t.Fatalf("trial %d: unexpected confidence %d", trial, got)
		}
	}
}

func TestConfidenceFor_Monotonic(t *testing.T) {
	want := []int{0, 33, 67, 100}
	prev := -1
	for points, w := range want {
		got := confidenceFor(points)
		assert.Equal(t, w, got)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, 0, confidenceFor(-1))
	assert.Equal(t, 100, confidenceFor(4))
}

func TestCountPoints_AddingSignalNeverDecreases(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		base := model.IndicatorResult{
			TrendUp:          mask&1 != 0,
			RSINotOverbought: mask&2 != 0,
			MACDBullish:      mask&4 != 0,
		}
		score := confidenceFor(countPoints(base))
		for bit := 0; bit < 3; bit++ {
			up := base
			switch bit {
			case 0:
				up.TrendUp = true
			case 1:
				up.RSINotOverbought = true
			case 2:
				up.MACDBullish = true
			}
			if got := confidenceFor(countPoints(up)); got < score {
				t.Errorf("mask %03b bit %d: score dropped %d -> %d", mask, bit, score, got)
			}
		}
	}
}
