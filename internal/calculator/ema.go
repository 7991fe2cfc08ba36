package calculator

import (
	"TrendSignal/internal/model"
)

// EMA computes an exponential moving average with alpha = 2/(span+1),
// seeded by the first value and without bias adjustment:
//
//	ema[0] = x[0]
//	ema[t] = alpha*x[t] + (1-alpha)*ema[t-1]
//
// Once a non-finite input poisons the recurrence, every later reading is undefined.
func EMA(values []float64, span int) ([]model.Reading, error) {
	if span <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Reading, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	prev := values[0]
	out[0] = model.Defined(prev)
	for i := 1; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = model.Defined(prev)
	}
	return out, nil
}

// MACD returns the MACD line (EMA(fast) - EMA(slow)) and its signal line
// (EMA(signal) of the MACD line), both using the unadjusted EMA recurrence.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine []model.Reading, err error) {
	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, err
	}
	if signal <= 0 {
		return nil, nil, ErrInvalidPeriod
	}

	macd = make([]model.Reading, len(closes))
	line := make([]float64, len(closes))
	for i := range closes {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			macd[i] = model.Defined(fastEMA[i].Value - slowEMA[i].Value)
		}
		if macd[i].Valid {
			line[i] = macd[i].Value
		} else {
			line[i] = nan
		}
	}
	signalLine, err = EMA(line, signal)
	if err != nil {
		return nil, nil, err
	}
	return macd, signalLine, nil
}
