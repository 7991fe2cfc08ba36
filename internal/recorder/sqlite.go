package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"TrendSignal/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_reports (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			range_label     TEXT,
			points          INTEGER,
			confidence_pct  INTEGER,
			trend_up        INTEGER,
			rsi_ok          INTEGER,
			macd_bullish    INTEGER,
			recommendation  TEXT,
			current_price   REAL,
			predicted_price REAL,
			change_pct      REAL,
			amount          REAL,
			expected_return REAL,
			profit          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_ts ON signal_reports(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_symbol ON signal_reports(symbol)`,

		`CREATE TABLE IF NOT EXISTS evaluation_failures (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT,
			range_label TEXT,
			kind        TEXT,
			message     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failure_ts ON evaluation_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(rep *model.SignalReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ind := rep.Indicators
	_, err := r.db.Exec(`INSERT INTO signal_reports
		(timestamp, symbol, range_label, points, confidence_pct,
		 trend_up, rsi_ok, macd_bullish, recommendation,
		 current_price, predicted_price, change_pct,
		 amount, expected_return, profit)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), rep.Symbol, rep.Range, rep.Observations, ind.ConfidencePct,
		ind.TrendUp, ind.RSINotOverbought, ind.MACDBullish, string(rep.Recommendation),
		rep.Forecast.CurrentPrice, rep.Forecast.PredictedPrice, rep.Forecast.ChangePct,
		rep.PnL.Invested, rep.PnL.ExpectedReturn, rep.PnL.Profit,
	)
	if err != nil {
		r.logger.Warn("record signal failed", zap.String("symbol", rep.Symbol), zap.Error(err))
	}
	return err
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO evaluation_failures
		(timestamp, symbol, range_label, kind, message)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), evt.Symbol, evt.Range, evt.Kind, evt.Message,
	)
	if err != nil {
		r.logger.Warn("record failure failed", zap.String("symbol", evt.Symbol), zap.Error(err))
	}
	return err
}

// countSignals returns the number of stored reports for symbol.
func (r *SQLiteRecorder) countSignals(symbol string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM signal_reports WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
