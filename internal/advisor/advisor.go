// Package advisor combines market data, the indicator engine, the forecast
// and the recommendation bands into one SignalReport.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"TrendSignal/internal/calculator"
	"TrendSignal/internal/collector"
	"TrendSignal/internal/config"
	"TrendSignal/internal/forecast"
	"TrendSignal/internal/metrics"
	"TrendSignal/internal/model"
	"TrendSignal/internal/strategy"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// ErrInvalidRequest wraps every rejection of user input.
var ErrInvalidRequest = errors.New("invalid request")

// Request selects what to analyse. Empty Range and zero Amount fall back to
// the configured defaults.
type Request struct {
	Symbol string
	Range  string
	Amount float64
}

// Advisor produces signal reports.
type Advisor struct {
	cfg       *config.Config
	collector *collector.Collector
	tracer    trace.Tracer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an Advisor. tracer, m and logger may be nil.
func New(cfg *config.Config, c *collector.Collector, tracer trace.Tracer, m *metrics.Metrics, logger *zap.Logger) *Advisor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("advisor")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		cfg:       cfg,
		collector: c,
		tracer:    tracer,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the advisor resolves requests against.
func (a *Advisor) Config() *config.Config { return a.cfg }

// Resolve validates req against the instrument menu and range presets.
func (a *Advisor) Resolve(req Request) (model.Instrument, model.TimeRange, float64, error) {
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return model.Instrument{}, model.TimeRange{}, 0, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	inst, ok := a.cfg.Instrument(symbol)
	if !ok {
		return model.Instrument{}, model.TimeRange{}, 0, fmt.Errorf("%w: unknown instrument %q", ErrInvalidRequest, symbol)
	}

	label := strings.TrimSpace(req.Range)
	if label == "" {
		label = a.cfg.Analysis.DefaultRange
	}
	tr, ok := a.cfg.Range(label)
	if !ok {
		return model.Instrument{}, model.TimeRange{}, 0, fmt.Errorf("%w: unknown range %q", ErrInvalidRequest, label)
	}

	amount := a.amountOrDefault(req.Amount)
	if err := checkAmount(amount); err != nil {
		return model.Instrument{}, model.TimeRange{}, 0, err
	}
	return inst, tr, amount, nil
}

// Analyze fetches the instrument's history and evaluates it.
func (a *Advisor) Analyze(ctx context.Context, req Request) (*model.SignalReport, error) {
	ctx, span := a.tracer.Start(ctx, "advisor.Analyze")
	defer span.End()

	inst, tr, amount, err := a.Resolve(req)
	if err != nil {
		return nil, a.fail(span, req.Symbol, err)
	}
	span.SetAttributes(
		attribute.String("symbol", inst.Symbol),
		attribute.String("range", tr.Label),
		attribute.Float64("amount", amount),
	)

	series, err := a.collector.Collect(ctx, inst.Symbol, tr)
	if err != nil {
		return nil, a.fail(span, inst.Symbol, err)
	}

	report, err := a.evaluate(series, amount)
	if err != nil {
		return nil, a.fail(span, inst.Symbol, err)
	}
	report.Label = inst.Label
	a.finish(span, report)
	return report, nil
}

// AnalyzeSeries evaluates a series the caller already holds. A zero amount
// means the configured default. A non-empty series.Range must name a
// configured preset; it only labels the report.
func (a *Advisor) AnalyzeSeries(ctx context.Context, series model.PriceSeries, amount float64) (*model.SignalReport, error) {
	_, span := a.tracer.Start(ctx, "advisor.AnalyzeSeries")
	defer span.End()

	amount = a.amountOrDefault(amount)
	span.SetAttributes(
		attribute.String("symbol", series.Symbol),
		attribute.Int("observations", series.Len()),
		attribute.Float64("amount", amount),
	)

	if series.Range != "" {
		if _, ok := a.cfg.Range(series.Range); !ok {
			return nil, a.fail(span, series.Symbol, fmt.Errorf("%w: unknown range %q", ErrInvalidRequest, series.Range))
		}
	}
	if err := checkAmount(amount); err != nil {
		return nil, a.fail(span, series.Symbol, err)
	}
	report, err := a.evaluate(series, amount)
	if err != nil {
		return nil, a.fail(span, series.Symbol, err)
	}
	if inst, ok := a.cfg.Instrument(series.Symbol); ok {
		report.Label = inst.Label
	}
	a.finish(span, report)
	return report, nil
}

func (a *Advisor) evaluate(series model.PriceSeries, amount float64) (*model.SignalReport, error) {
	result := strategy.Evaluate(series)
	for _, f := range result.Failures {
		a.logger.Warn("indicator scored 0",
			zap.String("symbol", series.Symbol),
			zap.String("indicator", f.Indicator),
			zap.Error(f.Err))
		a.metrics.IndicatorFailed(f.Indicator)
	}

	fc, err := forecast.Project(series)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", series.Symbol, err)
	}

	window, err := calculator.WindowRange(series.Bars, 0)
	if err != nil {
		return nil, fmt.Errorf("price window %s: %w", series.Symbol, err)
	}

	return &model.SignalReport{
		Symbol:         series.Symbol,
		Label:          series.Symbol,
		Range:          series.Range,
		Observations:   series.Len(),
		Indicators:     result,
		Recommendation: strategy.Recommend(result.ConfidencePct),
		Forecast:       fc,
		PnL:            strategy.BuildPnL(result.ConfidencePct, amount),
		Window:         window,
		GeneratedAt:    a.now(),
	}, nil
}

func (a *Advisor) finish(span trace.Span, r *model.SignalReport) {
	span.SetAttributes(
		attribute.Int("confidence_pct", r.Indicators.ConfidencePct),
		attribute.String("recommendation", string(r.Recommendation)),
	)
	a.metrics.ObserveEvaluation(string(r.Recommendation), r.Indicators.ConfidencePct)
	a.logger.Info("signal evaluated",
		zap.String("symbol", r.Symbol),
		zap.String("range", r.Range),
		zap.Int("observations", r.Observations),
		zap.Int("confidence_pct", r.Indicators.ConfidencePct),
		zap.String("recommendation", string(r.Recommendation)),
		zap.Float64("predicted", r.Forecast.PredictedPrice))
}

func (a *Advisor) fail(span trace.Span, symbol string, err error) error {
	kind := Classify(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	a.metrics.EvaluationFailed(string(kind))
	a.logger.Warn("evaluation failed",
		zap.String("symbol", symbol),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return err
}

func (a *Advisor) amountOrDefault(amount float64) float64 {
	if amount == 0 {
		return a.cfg.Analysis.DefaultAmount
	}
	return amount
}

func checkAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number, got %v", ErrInvalidRequest, amount)
	}
	return nil
}
