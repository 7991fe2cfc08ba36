package strategy

import (
	"errors"
	"fmt"

	"TrendSignal/internal/calculator"
	"TrendSignal/internal/model"
)

const (
	smaFastPeriod    = 5
	smaSlowPeriod    = 20
	rsiPeriod        = 14
	rsiOverbought    = 70.0
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// ErrUndefined marks an indicator whose latest value could not be computed.
var ErrUndefined = errors.New("indicator value undefined")

// signal is the outcome of one indicator. A non-nil err means the indicator
// failed and contributes nothing.
type signal struct {
	on  bool
	err error
}

func failed(err error) signal { return signal{err: err} }

// trendSignal: SMA5 above SMA20 at the latest position.
func trendSignal(closes []float64, vals *model.IndicatorValues) signal {
	fast, err := calculator.SMA(closes, smaFastPeriod)
	if err != nil {
		return failed(err)
	}
	slow, err := calculator.SMA(closes, smaSlowPeriod)
	if err != nil {
		return failed(err)
	}
	vals.SMA5 = calculator.Last(fast)
	vals.SMA20 = calculator.Last(slow)
	if !vals.SMA5.Valid || !vals.SMA20.Valid {
		return failed(fmt.Errorf("sma%d/sma%d: %w", smaFastPeriod, smaSlowPeriod, ErrUndefined))
	}
	return signal{on: vals.SMA5.Value > vals.SMA20.Value}
}

// rsiSignal: RSI(14) below the overbought line. A window without losses has
// no defined RS and counts as a failure.
func rsiSignal(closes []float64, vals *model.IndicatorValues) signal {
	rsi, err := calculator.RSI(closes, rsiPeriod)
	if err != nil {
		return failed(err)
	}
	vals.RSI = calculator.Last(rsi)
	if !vals.RSI.Valid {
		return failed(fmt.Errorf("rsi%d: %w", rsiPeriod, ErrUndefined))
	}
	return signal{on: vals.RSI.Value < rsiOverbought}
}

// macdSignal: MACD line above its signal line.
func macdSignal(closes []float64, vals *model.IndicatorValues) signal {
	macd, sig, err := calculator.MACD(closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	if err != nil {
		return failed(err)
	}
	vals.MACD = calculator.Last(macd)
	vals.MACDSignal = calculator.Last(sig)
	if !vals.MACD.Valid || !vals.MACDSignal.Valid {
		return failed(fmt.Errorf("macd: %w", ErrUndefined))
	}
	return signal{on: vals.MACD.Value > vals.MACDSignal.Value}
}
