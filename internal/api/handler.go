// Package api exposes signal evaluation over HTTP.
package api

import (
	"net/http"

	"TrendSignal/internal/advisor"
	"TrendSignal/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Handler struct {
	tracer  trace.Tracer
	advisor *advisor.Advisor
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(tracer trace.Tracer, adv *advisor.Advisor, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tracer:  tracer,
		advisor: adv,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.GET("/api/instruments", h.GetInstruments)
	r.GET("/api/ranges", h.GetRanges)
	r.GET("/api/signal/:symbol", h.GetSignal)
	r.POST("/api/evaluate", h.Evaluate)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(kind advisor.FailureKind) int {
	switch kind {
	case advisor.KindInvalidRequest:
		return http.StatusBadRequest
	case advisor.KindNotEnoughData, advisor.KindComputationError:
		return http.StatusUnprocessableEntity
	case advisor.KindDataUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := advisor.Classify(err)
	c.JSON(statusFor(kind), gin.H{
		"error":   kind.Message(),
		"kind":    string(kind),
		"details": err.Error(),
	})
}
