// Package indicators provides technical indicator calculations.
package indicators

import (
	"inversor/internal/models"
)

// Default indicator periods.
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
)

// RSILast calculates the Relative Strength Index for the most recent bar
// using a plain average of gains and losses over the trailing window.
// Returns false when there are fewer than period close-to-close deltas.
func RSILast(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}

	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	// No losses in the window saturates the oscillator.
	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// EMASeries calculates an exponential moving average over values, seeded
// with the first value. No warm-up discard; result[i] is defined for all i.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nil
	}

	result := make([]float64, len(values))
	multiplier := 2.0 / float64(period+1)

	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}

	return result
}

// MACDSeries calculates the MACD line (EMA fast − EMA slow of closes) and
// its signal line (EMA of the MACD line). Returns nil slices when there are
// fewer closes than the slow period.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, signalLine []float64) {
	if len(closes) < slow {
		return nil, nil
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = EMASeries(macd, signal)
	return macd, signalLine
}

// Snapshot computes the indicator snapshot for the most recent bar. Short
// history never produces an error; the affected fields are just marked
// invalid and contribute nothing downstream.
func Snapshot(candles []models.Candle) models.IndicatorSnapshot {
	closes := closePrices(candles)

	var snap models.IndicatorSnapshot

	if rsi, ok := RSILast(closes, RSIPeriod); ok {
		snap.RSI = rsi
		snap.RSIValid = true
	}

	macd, signal := MACDSeries(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if macd != nil {
		snap.MACD = macd[len(macd)-1]
		snap.MACDSignal = signal[len(signal)-1]
		snap.MACDValid = true
	}

	return snap
}
