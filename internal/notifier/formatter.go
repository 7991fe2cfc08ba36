package notifier

import (
	"fmt"
	"html"
	"strings"

	"TrendSignal/internal/calculator"
	"TrendSignal/internal/model"
	"TrendSignal/internal/strategy"
)

var recommendationIcon = map[model.Recommendation]string{
	model.RecommendBuy:   "🟢",
	model.RecommendSell:  "🟠",
	model.RecommendAvoid: "🔴",
}

// FormatSignalReport formats a report into a Telegram HTML message.
func FormatSignalReport(r *model.SignalReport) string {
	var b strings.Builder
	ind := r.Indicators

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> (%s) | %s | %s\n\n",
		html.EscapeString(r.Label), html.EscapeString(r.Symbol), html.EscapeString(r.Range),
		r.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | confidence %d%%\n", recommendationIcon[r.Recommendation], r.Recommendation, ind.ConfidencePct))
	if ind.InsufficientHistory {
		b.WriteString(fmt.Sprintf("⚠️ Not enough data yet (%d of %d points)\n", r.Observations, strategy.MinHistory))
	}
	b.WriteString("\n")

	// Price and forecast
	b.WriteString(fmt.Sprintf("Current price: %.2f\n", r.Forecast.CurrentPrice))
	b.WriteString(fmt.Sprintf("Predicted next: %.2f (%+.2f%%)\n", r.Forecast.PredictedPrice, r.Forecast.ChangePct))
	if pos, err := calculator.RangePosition(r.Forecast.CurrentPrice, r.Window); err == nil {
		b.WriteString(fmt.Sprintf("Window: %.2f ~ %.2f (at %.0f%%)\n", r.Window.Low, r.Window.High, pos*100))
	}
	b.WriteString("\n")

	// Indicators
	b.WriteString("📈 <b>Indicators:</b>\n")
	v := ind.Values
	b.WriteString(fmt.Sprintf("  %s SMA5 %s vs SMA20 %s\n", check(ind.TrendUp), v.SMA5, v.SMA20))
	b.WriteString(fmt.Sprintf("  %s RSI(14) %s below 70\n", check(ind.RSINotOverbought), v.RSI))
	b.WriteString(fmt.Sprintf("  %s MACD %s vs signal %s\n", check(ind.MACDBullish), v.MACD, v.MACDSignal))
	for _, f := range ind.Failures {
		b.WriteString(fmt.Sprintf("  ⚠️ %s\n", html.EscapeString(f.Error())))
	}
	b.WriteString("\n")

	// Payoff
	b.WriteString("💰 <b>Illustrative payoff:</b>\n")
	b.WriteString(fmt.Sprintf("   Invested: %.2f\n", r.PnL.Invested))
	b.WriteString(fmt.Sprintf("   Expected return: %.2f\n", r.PnL.ExpectedReturn))
	b.WriteString(fmt.Sprintf("   Profit/loss: %+.2f\n", r.PnL.Profit))

	return b.String()
}

func check(on bool) string {
	if on {
		return "✅"
	}
	return "❌"
}

// FormatFailure formats a user-facing failure message.
func FormatFailure(symbol, message string) string {
	if symbol == "" {
		return fmt.Sprintf("❌ %s", html.EscapeString(message))
	}
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(message))
}

// FormatInstruments lists the instrument menu.
func FormatInstruments(instruments []model.Instrument) string {
	var b strings.Builder
	b.WriteString("📋 <b>Instruments</b>\n\n")
	for _, in := range instruments {
		b.WriteString(fmt.Sprintf("<code>%s</code> %s\n", html.EscapeString(in.Symbol), html.EscapeString(in.Label)))
	}
	return b.String()
}

// FormatRanges lists the time-range presets, marking the default.
func FormatRanges(ranges []model.TimeRange, defaultLabel string) string {
	var b strings.Builder
	b.WriteString("🕒 <b>Time ranges</b>\n\n")
	for _, r := range ranges {
		mark := ""
		if r.Label == defaultLabel {
			mark = " (default)"
		}
		b.WriteString(fmt.Sprintf("<code>%s</code> %s bars over %s%s\n",
			html.EscapeString(r.Label), html.EscapeString(r.Interval), html.EscapeString(r.Period), mark))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n\n" +
		"/signal SYMBOL [RANGE] [AMOUNT] - evaluate an instrument\n" +
		"/instruments - list instruments\n" +
		"/ranges - list time ranges\n" +
		"/help - this message"
}
