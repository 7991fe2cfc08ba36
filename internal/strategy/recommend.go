package strategy

import "TrendSignal/internal/model"

// Bands are checked in order; the first match wins. The Buy band is tested
// before the Avoid band, leaving [50,66) as Sell.
var Bands = []struct {
	MinConfidence  int
	Recommendation model.Recommendation
}{
	{66, model.RecommendBuy},
	{50, model.RecommendSell},
}

// DefaultRecommendation applies below every band.
var DefaultRecommendation = model.RecommendAvoid

// Recommend maps a confidence percentage to an action label.
func Recommend(confidencePct int) model.Recommendation {
	for _, b := range Bands {
		if confidencePct >= b.MinConfidence {
			return b.Recommendation
		}
	}
	return DefaultRecommendation
}

// ExpectedPnL is a linear, illustrative mapping from confidence to payoff:
// expectedReturn = invested * (1 + (confidence-50)/100).
func ExpectedPnL(confidencePct int, invested float64) (expectedReturn, profit float64) {
	expectedReturn = invested * (1 + float64(confidencePct-50)/100)
	profit = expectedReturn - invested
	return expectedReturn, profit
}

// BuildPnL wraps ExpectedPnL into a model.PnL.
func BuildPnL(confidencePct int, invested float64) model.PnL {
	ret, profit := ExpectedPnL(confidencePct, invested)
	return model.PnL{Invested: invested, ExpectedReturn: ret, Profit: profit}
}
