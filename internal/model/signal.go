package model

import "time"

// Recommendation is the action label derived from a confidence score.
type Recommendation string

const (
	RecommendBuy   Recommendation = "BUY"
	RecommendSell  Recommendation = "SELL"
	RecommendAvoid Recommendation = "AVOID"
)

// Forecast is a one-step linear extrapolation of the close price.
// It carries no error bars and no seasonality.
type Forecast struct {
	PredictedPrice float64
	CurrentPrice   float64
	ChangePct      float64 // 100 * (predicted - current) / current
	At             time.Time
	Step           time.Duration
}

// PnL is the illustrative payoff implied by a confidence score.
type PnL struct {
	Invested       float64
	ExpectedReturn float64
	Profit         float64
}

// PriceRange is the high/low envelope of the analysed window.
type PriceRange struct {
	High float64
	Low  float64
}

// SignalReport is the full result handed to presentation layers.
type SignalReport struct {
	Symbol         string
	Label          string
	Range          string
	Observations   int
	Indicators     IndicatorResult
	Recommendation Recommendation
	Forecast       Forecast
	PnL            PnL
	Window         PriceRange
	GeneratedAt    time.Time
}
