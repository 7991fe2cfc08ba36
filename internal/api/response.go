package api

import (
	"time"

	"TrendSignal/internal/model"
)

// ReportResponse is the JSON view of a SignalReport.
type ReportResponse struct {
	Symbol              string             `json:"symbol"`
	Label               string             `json:"label"`
	Range               string             `json:"range,omitempty"`
	Observations        int                `json:"observations"`
	ConfidencePct       int                `json:"confidence_pct"`
	InsufficientHistory bool               `json:"insufficient_history"`
	Recommendation      string             `json:"recommendation"`
	Indicators          IndicatorsResponse `json:"indicators"`
	Forecast            ForecastResponse   `json:"forecast"`
	PnL                 PnLResponse        `json:"pnl"`
	WindowHigh          float64            `json:"window_high"`
	WindowLow           float64            `json:"window_low"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

type IndicatorsResponse struct {
	TrendUp          bool              `json:"trend_up"`
	RSINotOverbought bool              `json:"rsi_not_overbought"`
	MACDBullish      bool              `json:"macd_bullish"`
	Points           int               `json:"points"`
	SMA5             *float64          `json:"sma5"`
	SMA20            *float64          `json:"sma20"`
	RSI              *float64          `json:"rsi"`
	MACD             *float64          `json:"macd"`
	MACDSignal       *float64          `json:"macd_signal"`
	Failures         []FailureResponse `json:"failures,omitempty"`
}

type FailureResponse struct {
	Indicator string `json:"indicator"`
	Error     string `json:"error"`
}

type ForecastResponse struct {
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	ChangePct      float64   `json:"change_pct"`
	At             time.Time `json:"at"`
	StepSeconds    float64   `json:"step_seconds"`
}

type PnLResponse struct {
	Invested       float64 `json:"invested"`
	ExpectedReturn float64 `json:"expected_return"`
	Profit         float64 `json:"profit"`
}

// NewReportResponse converts a report; undefined readings become null.
func NewReportResponse(r *model.SignalReport) ReportResponse {
	ind := r.Indicators
	resp := ReportResponse{
		Symbol:              r.Symbol,
		Label:               r.Label,
		Range:               r.Range,
		Observations:        r.Observations,
		ConfidencePct:       ind.ConfidencePct,
		InsufficientHistory: ind.InsufficientHistory,
		Recommendation:      string(r.Recommendation),
		Indicators: IndicatorsResponse{
			TrendUp:          ind.TrendUp,
			RSINotOverbought: ind.RSINotOverbought,
			MACDBullish:      ind.MACDBullish,
			Points:           ind.Points,
			SMA5:             reading(ind.Values.SMA5),
			SMA20:            reading(ind.Values.SMA20),
			RSI:              reading(ind.Values.RSI),
			MACD:             reading(ind.Values.MACD),
			MACDSignal:       reading(ind.Values.MACDSignal),
		},
		Forecast: ForecastResponse{
			CurrentPrice:   r.Forecast.CurrentPrice,
			PredictedPrice: r.Forecast.PredictedPrice,
			ChangePct:      r.Forecast.ChangePct,
			At:             r.Forecast.At,
			StepSeconds:    r.Forecast.Step.Seconds(),
		},
		PnL: PnLResponse{
			Invested:       r.PnL.Invested,
			ExpectedReturn: r.PnL.ExpectedReturn,
			Profit:         r.PnL.Profit,
		},
		WindowHigh:  r.Window.High,
		WindowLow:   r.Window.Low,
		GeneratedAt: r.GeneratedAt,
	}
	for _, f := range ind.Failures {
		resp.Indicators.Failures = append(resp.Indicators.Failures, FailureResponse{
			Indicator: f.Indicator,
			Error:     f.Err.Error(),
		})
	}
	return resp
}

func reading(r model.Reading) *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}
