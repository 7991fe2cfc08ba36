package collector

import (
	"context"

	"TrendSignal/internal/model"
)

// Fetcher defines the interface for fetching market data.
// interval is the bar size ("30m", "1d"), period the lookback ("5d", "6mo").
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error)
	Name() string
}

// MockSource selects MockFetcher as the data source.
const MockSource = "mock"

// NewFetcher picks the data source: MockFetcher for MockSource, the VsTrader
// API when baseURL is set, Yahoo Finance otherwise.
func NewFetcher(baseURL, apiKey, proxyURL string) Fetcher {
	switch baseURL {
	case MockSource:
		return &MockFetcher{Price: 100}
	case "":
		return NewYahooFetcher(proxyURL)
	default:
		return NewVsTraderFetcher(baseURL, apiKey, proxyURL)
	}
}
