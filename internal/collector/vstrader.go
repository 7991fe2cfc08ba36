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

// VsTraderFetcher reads bars from a vstrader-compatible REST API:
// GET {BaseURL}/api/v1/bars?symbol=&interval=&range= returning a JSON array.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (b vsBar) toOHLCV() model.OHLCV {
	return model.OHLCV{
		Time:   time.Unix(b.Timestamp, 0).UTC(),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

// FetchBars returns bars in the order the API sent them; Collector sorts.
func (f *VsTraderFetcher) FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error) {
	q := url.Values{
		"symbol":   {symbol},
		"interval": {interval},
		"range":    {period},
	}
	header := http.Header{}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}

	var raw []vsBar
	if err := getJSON(ctx, f.Client, f.BaseURL+"/api/v1/bars?"+q.Encode(), header, &raw); err != nil {
		return nil, fmt.Errorf("vstrader %s: %w", symbol, err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = b.toOHLCV()
	}
	return bars, nil
}
