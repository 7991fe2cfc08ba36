package advisor

import (
	"context"
	"errors"

	"TrendSignal/internal/collector"
	"TrendSignal/internal/forecast"
)

// FailureKind groups errors by what the user can do about them.
type FailureKind string

const (
	KindNone             FailureKind = ""
	KindNotEnoughData    FailureKind = "not_enough_data"
	KindComputationError FailureKind = "computation_error"
	KindDataUnavailable  FailureKind = "data_unavailable"
	KindInvalidRequest   FailureKind = "invalid_request"
)

// Classify maps an error returned by the advisor to a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, collector.ErrUpstream),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindDataUnavailable
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return KindNotEnoughData
	default:
		return KindComputationError
	}
}

// Message is the user-facing explanation for a failure kind.
func (k FailureKind) Message() string {
	switch k {
	case KindNone:
		return ""
	case KindNotEnoughData:
		return "Not enough data yet. Try a longer time range."
	case KindDataUnavailable:
		return "Market data is unavailable right now. Please try again later."
	case KindInvalidRequest:
		return "The request is invalid. See /instruments and /ranges for valid choices."
	default:
		return "The signal could not be computed for this series."
	}
}
