package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"TrendSignal/internal/metrics"
	"TrendSignal/internal/model"

	"go.uber.org/zap"
)

var (
	// ErrUpstream wraps every failure of the market data source.
	ErrUpstream        = errors.New("market data unavailable")
	ErrEmptySeries     = errors.New("empty price series")
	ErrMalformedSeries = errors.New("malformed price series")
	ErrUnknownSymbol   = errors.New("unknown symbol")
)

const defaultTimeout = 20 * time.Second

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Step  time.Duration
	Count int
	Bars  []model.OHLCV
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, _, _, _ string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	count := m.Count
	if count == 0 {
		count = 60
	}
	step := m.Step
	if step == 0 {
		step = 30 * time.Minute
	}
	return generateMockBars(m.Price, count, step), nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().UTC().Truncate(step).Add(-time.Duration(count) * step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches price history and hands back a validated series.
type Collector struct {
	Fetcher Fetcher
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Fetcher: fetcher, Timeout: timeout, Metrics: m, Logger: logger}
}

// Collect fetches bars for symbol over the time range and validates them.
// Every returned error wraps ErrUpstream.
func (c *Collector) Collect(ctx context.Context, symbol string, tr model.TimeRange) (model.PriceSeries, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	bars, err := c.Fetcher.FetchBars(ctx, symbol, tr.Interval, tr.Period)
	if err == nil {
		bars, err = Normalize(bars)
	}
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), err)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: %s %s/%s from %s: %w",
			ErrUpstream, symbol, tr.Interval, tr.Period, c.Fetcher.Name(), err)
	}

	c.Logger.Debug("collected bars",
		zap.String("symbol", symbol),
		zap.String("range", tr.Label),
		zap.Int("bars", len(bars)),
		zap.Duration("took", time.Since(start)))

	return model.PriceSeries{
		Symbol:    symbol,
		Range:     tr.Label,
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// Validate rejects empty input, non-finite or non-positive closes and bars
// without a timestamp. Order and duplicates are left alone.
func Validate(bars []model.OHLCV) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}
	for i, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			return fmt.Errorf("%w: bad close %v at %d", ErrMalformedSeries, b.Close, i)
		}
		if b.Time.IsZero() {
			return fmt.Errorf("%w: missing timestamp at %d", ErrMalformedSeries, i)
		}
	}
	return nil
}

// Normalize validates bars, sorts them chronologically and keeps the last
// bar for a repeated timestamp. The input slice is not modified.
func Normalize(in []model.OHLCV) ([]model.OHLCV, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(in))
	copy(bars, in)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
