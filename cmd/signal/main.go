// Command signal evaluates one instrument and prints the report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"TrendSignal/internal/advisor"
	"TrendSignal/internal/api"
	"TrendSignal/internal/collector"
	"TrendSignal/internal/config"
	"TrendSignal/internal/logger"
	"TrendSignal/internal/model"

	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	symbol := flag.String("symbol", "", "instrument symbol, e.g. AAPL")
	rangeLabel := flag.String("range", "", "time range preset (default from config)")
	amount := flag.Float64("amount", 0, "invested amount (default from config)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	list := flag.Bool("list", false, "list instruments and ranges, then exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	if *list {
		printMenus(cfg)
		return
	}
	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.Must("warn", true)
	defer log.Sync()

	fetcher := collector.NewFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	col := collector.NewCollector(fetcher, cfg.DataSource.Timeout, nil, log)
	adv := advisor.New(cfg, col, nil, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DataSource.Timeout+5*time.Second)
	defer cancel()

	report, err := adv.Analyze(ctx, advisor.Request{Symbol: *symbol, Range: *rangeLabel, Amount: *amount})
	if err != nil {
		kind := advisor.Classify(err)
		fmt.Fprintf(os.Stderr, "%s\n%v\n", kind.Message(), err)
		log.Debug("analysis failed", zap.String("kind", string(kind)))
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(api.NewReportResponse(report)); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printReport(report)
}

func printMenus(cfg *config.Config) {
	fmt.Println("Instruments:")
	for _, in := range cfg.Instruments {
		fmt.Printf("  %-10s %s\n", in.Symbol, in.Label)
	}
	fmt.Println("Ranges:")
	for _, r := range cfg.Ranges {
		fmt.Printf("  %-6s %s bars over %s\n", r.Label, r.Interval, r.Period)
	}
}

func printReport(r *model.SignalReport) {
	ind := r.Indicators
	fmt.Printf("%s (%s) range %s, %d points\n", r.Label, r.Symbol, r.Range, r.Observations)
	if ind.InsufficientHistory {
		fmt.Println("not enough data yet: confidence is 0")
	}
	fmt.Printf("Confidence:     %d%%\n", ind.ConfidencePct)
	fmt.Printf("Recommendation: %s\n", r.Recommendation)
	fmt.Printf("Current price:  %.4f\n", r.Forecast.CurrentPrice)
	fmt.Printf("Predicted next: %.4f (%+.2f%%) at %s\n",
		r.Forecast.PredictedPrice, r.Forecast.ChangePct, r.Forecast.At.Format(time.RFC3339))
	fmt.Printf("Window:         %.4f - %.4f\n", r.Window.Low, r.Window.High)
	fmt.Printf("SMA5 > SMA20:   %v (%s vs %s)\n", ind.TrendUp, ind.Values.SMA5, ind.Values.SMA20)
	fmt.Printf("RSI(14) < 70:   %v (%s)\n", ind.RSINotOverbought, ind.Values.RSI)
	fmt.Printf("MACD > signal:  %v (%s vs %s)\n", ind.MACDBullish, ind.Values.MACD, ind.Values.MACDSignal)
	for _, f := range ind.Failures {
		fmt.Printf("  indicator failed: %v\n", f)
	}
	fmt.Printf("Invested %.2f, expected return %.2f, profit %+.2f\n",
		r.PnL.Invested, r.PnL.ExpectedReturn, r.PnL.Profit)
}
