package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendSignal/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher reads the public Yahoo Finance v8 chart endpoint.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	// Aliases maps shorthand symbols to Yahoo tickers.
	Aliases map[string]string
}

func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  NewHTTPClient(proxyURL),
		Aliases: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
			"BTC":   "BTC-USD",
			"ETH":   "ETH-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) ticker(symbol string) string {
	if t, ok := f.Aliases[strings.ToUpper(symbol)]; ok {
		return t
	}
	return symbol
}

// chartResponse covers the fields of /v8/finance/chart we read. Quote
// arrays hold null for bars without trades.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

// FetchBars returns the non-null bars of the chart. An empty chart yields
// no bars and no error; Collector reports it as an empty series.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error) {
	base := f.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	q := url.Values{"interval": {interval}, "range": {period}}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(f.ticker(symbol)), q.Encode())
	header := http.Header{"User-Agent": {"Mozilla/5.0"}}

	var chart chartResponse
	if err := getJSON(ctx, f.Client, endpoint, header, &chart); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx, ok := at(quote.Close, i)
		if !ok {
			continue
		}
		bar := model.OHLCV{Time: time.Unix(ts, 0).UTC(), Close: closePx}
		bar.Open, _ = at(quote.Open, i)
		bar.High, _ = at(quote.High, i)
		bar.Low, _ = at(quote.Low, i)
		bar.Volume, _ = at(quote.Volume, i)
		bars = append(bars, bar)
	}
	return bars, nil
}
