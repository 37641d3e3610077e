// Package indicators contains pure technical-indicator math over close-price
// series. No state, no I/O; identical input always yields identical output.
package indicators

import "math"

// Volatility category thresholds and the MACD/Bollinger defaults below are
// policy constants, not physical ones. Tune per deployment.
const (
	VolatilityLowMax    = 0.001
	VolatilityMediumMax = 0.003

	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9

	BollingerPeriod     = 20
	BollingerMultiplier = 2.0

	RSIPeriod = 14
)

type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "LOW"
	VolatilityMedium VolatilityLevel = "MEDIUM"
	VolatilityHigh   VolatilityLevel = "HIGH"
)

// SMA returns the average of the last period values.
// NaN when the series is shorter than the period.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return math.NaN()
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns a series aligned with the input: positions before period-1 are
// NaN, position period-1 is the simple average seed, the rest follow
// k = 2/(period+1) smoothing.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / (float64(period) + 1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI sums gains and losses over the trailing period window.
// 100 when the window had no losses, NaN when data is insufficient.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return math.NaN()
	}
	var gains, losses float64
	for i := len(values) - period; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change >= 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

// MACD returns the latest MACD line, signal line and histogram values.
// Zeros on insufficient data so the evaluator stays branch-free: a zero
// histogram never passes the >0/<0 entry checks.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram float64) {
	if len(closes) < slow+signal {
		return 0, 0, 0
	}
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			macdLine[i] = emaFast[i] - emaSlow[i]
		}
	}

	signalSeries := EMA(macdLine, signal)
	last := len(closes) - 1
	macd = macdLine[last]
	signalLine = signalSeries[last]
	if math.IsNaN(signalLine) {
		return 0, 0, 0
	}
	return macd, signalLine, macd - signalLine
}

// BollingerBands returns middle = SMA(period) and upper/lower at
// middle ± mult*stddev. Zeros on insufficient data, deliberately not an error.
func BollingerBands(values []float64, period int, mult float64) (upper, middle, lower float64) {
	if period <= 0 || len(values) < period {
		return 0, 0, 0
	}
	window := values[len(values)-period:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(period)

	var variance float64
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(period))

	return mean + mult*std, mean, mean - mult*std
}

// ReturnVolatility is the standard deviation of per-step percentage returns.
// 0 when fewer than two points.
func ReturnVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			return 0
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

// CategorizeVolatility buckets a return stddev into LOW/MEDIUM/HIGH.
func CategorizeVolatility(stddev float64) VolatilityLevel {
	switch {
	case stddev < VolatilityLowMax:
		return VolatilityLow
	case stddev < VolatilityMediumMax:
		return VolatilityMedium
	default:
		return VolatilityHigh
	}
}
