package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"TrendSignal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", nil)
	n.BaseURL = url
	n.Backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPollOnce(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			var body map[string]int
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 7, body["offset"])
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /help "}},
				{"update_id":8},
				{"update_id":9,"message":{"text":"/quiet"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			sent = append(sent, body["text"])
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	var commands []string
	handler := func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		if cmd == "/help" {
			return "help text"
		}
		return ""
	}

	next, err := newTestNotifier(srv.URL).pollOnce(context.Background(), 7, 0, handler)
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"/help", "/quiet"}, commands)
	assert.Equal(t, []string{"help text"}, sent)
}

func TestPollOnce_NotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Unauthorized"}`)
	}))
	defer srv.Close()

	next, err := newTestNotifier(srv.URL).pollOnce(context.Background(), 3, 0, func(context.Context, string) string { return "" })
	require.Error(t, err)
	assert.Equal(t, 3, next)
}

func sampleReport() *model.SignalReport {
	return &model.SignalReport{
		Symbol:       "^GSPC",
		Label:        "S&P 500",
		Range:        "1d",
		Observations: 124,
		Indicators: model.IndicatorResult{
			TrendUp:       true,
			MACDBullish:   true,
			Points:        2,
			ConfidencePct: 67,
			Values: model.IndicatorValues{
				SMA5:  model.Defined(5010),
				SMA20: model.Defined(4950),
				RSI:   model.Undefined(),
			},
			Failures: []model.IndicatorFailure{{Indicator: model.IndicatorRSI, Err: fmt.Errorf("undefined reading")}},
		},
		Recommendation: model.RecommendBuy,
		Forecast:       model.Forecast{CurrentPrice: 5020, PredictedPrice: 5035, ChangePct: 0.2988},
		PnL:            model.PnL{Invested: 1000, ExpectedReturn: 1170, Profit: 170},
		Window:         model.PriceRange{High: 5100, Low: 4800},
		GeneratedAt:    time.Date(2024, 5, 6, 21, 0, 0, 0, time.UTC),
	}
}

func TestFormatSignalReport(t *testing.T) {
	msg := FormatSignalReport(sampleReport())

	assert.Contains(t, msg, "S&amp;P 500")
	assert.Contains(t, msg, "^GSPC")
	assert.Contains(t, msg, "<b>BUY</b> | confidence 67%")
	assert.Contains(t, msg, "Current price: 5020.00")
	assert.Contains(t, msg, "Predicted next: 5035.00 (+0.30%)")
	assert.Contains(t, msg, "Window: 4800.00 ~ 5100.00 (at 73%)")
	assert.Contains(t, msg, "✅ SMA5 5010.0000 vs SMA20 4950.0000")
	assert.Contains(t, msg, "❌ RSI(14) n/a below 70")
	assert.Contains(t, msg, "rsi: undefined reading")
	assert.Contains(t, msg, "Profit/loss: +170.00")
	assert.NotContains(t, msg, "Not enough data")
}

func TestFormatSignalReport_ShortHistory(t *testing.T) {
	r := sampleReport()
	r.Observations = 12
	r.Indicators = model.IndicatorResult{InsufficientHistory: true, Observations: 12}
	r.Recommendation = model.RecommendAvoid

	msg := FormatSignalReport(r)
	assert.Contains(t, msg, "Not enough data yet (12 of 30 points)")
	assert.Contains(t, msg, "🔴 <b>AVOID</b> | confidence 0%")
}

func TestFormatMenus(t *testing.T) {
	inst := FormatInstruments([]model.Instrument{{Symbol: "AAPL", Label: "Apple"}})
	assert.Contains(t, inst, "<code>AAPL</code> Apple")

	ranges := FormatRanges([]model.TimeRange{
		{Label: "30m", Interval: "30m", Period: "5d"},
		{Label: "1d", Interval: "1d", Period: "6mo"},
	}, "30m")
	assert.Contains(t, ranges, "<code>30m</code> 30m bars over 5d (default)")
	assert.Contains(t, ranges, "<code>1d</code> 1d bars over 6mo\n")

	assert.Equal(t, "❌ <b>TSLA</b>: a &lt;b&gt;", FormatFailure("TSLA", "a <b>"))
	assert.Equal(t, "❌ oops", FormatFailure("", "oops"))
	assert.Contains(t, FormatHelp(), "/signal SYMBOL [RANGE] [AMOUNT]")
}
