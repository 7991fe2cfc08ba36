package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TrendSignal/internal/advisor"
	"TrendSignal/internal/collector"
	"TrendSignal/internal/model"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetInstruments returns the instrument menu.
func (h *Handler) GetInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": h.advisor.Config().Instruments})
}

// GetRanges returns the time-range presets and the default label.
func (h *Handler) GetRanges(c *gin.Context) {
	cfg := h.advisor.Config()
	c.JSON(http.StatusOK, gin.H{
		"ranges":  cfg.Ranges,
		"default": cfg.Analysis.DefaultRange,
	})
}

// GetSignal fetches history for :symbol and returns its report.
// Query: range (preset label), amount (invested amount).
func (h *Handler) GetSignal(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signal")
	defer span.End()

	req := advisor.Request{
		Symbol: strings.ToUpper(strings.TrimSpace(c.Param("symbol"))),
		Range:  strings.TrimSpace(c.Query("range")),
	}
	span.SetAttributes(attribute.String("symbol", req.Symbol))

	if raw := strings.TrimSpace(c.Query("amount")); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a number"})
			return
		}
		req.Amount = amount
	}

	report, err := h.advisor.Analyze(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReportResponse(report))
}

type pointRequest struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

type evaluateRequest struct {
	Symbol string         `json:"symbol" binding:"required"`
	Range  string         `json:"range"`
	Amount float64        `json:"amount"`
	Points []pointRequest `json:"points"`
}

// Evaluate scores a caller-supplied close series without fetching.
// Points must be non-empty, positive and in chronological order; equal
// timestamps are allowed. A zero amount means the configured default.
func (h *Handler) Evaluate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.evaluate")
	defer span.End()

	var body evaluateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Debug("rejected evaluate body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("symbol", body.Symbol),
		attribute.Int("points", len(body.Points)),
	)

	series, err := seriesFromPoints(body)
	if err != nil {
		h.logger.Debug("rejected evaluate points", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.advisor.AnalyzeSeries(ctx, series, body.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReportResponse(report))
}

func seriesFromPoints(body evaluateRequest) (model.PriceSeries, error) {
	times := make([]time.Time, len(body.Points))
	closes := make([]float64, len(body.Points))
	for i, p := range body.Points {
		if i > 0 && p.Time.Before(body.Points[i-1].Time) {
			return model.PriceSeries{}, fmt.Errorf("points[%d]: timestamps must be in chronological order", i)
		}
		times[i] = p.Time
		closes[i] = p.Close
	}
	series := model.NewCloseSeries(strings.ToUpper(strings.TrimSpace(body.Symbol)), times, closes)
	if err := collector.Validate(series.Bars); err != nil {
		return model.PriceSeries{}, fmt.Errorf("points: %w", err)
	}
	series.Range = strings.TrimSpace(body.Range)
	return series, nil
}
