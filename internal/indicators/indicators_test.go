package indicators

import (
	"math"
	"testing"
)

func TestSMAInsufficientData(t *testing.T) {
	for _, period := range []int{1, 5, 50} {
		series := make([]float64, period-1)
		if got := SMA(series, period); !math.IsNaN(got) {
			t.Fatalf("SMA(len=%d, period=%d) = %v, want NaN", len(series), period, got)
		}
	}
}

func TestSMAFlatSeries(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10}
	if got := SMA(closes, 5); got != 10 {
		t.Fatalf("SMA = %v, want 10", got)
	}
	if vol := ReturnVolatility(closes); vol != 0 {
		t.Fatalf("volatility = %v, want 0", vol)
	}
	if lvl := CategorizeVolatility(0); lvl != VolatilityLow {
		t.Fatalf("category = %v, want LOW", lvl)
	}
}

func TestSMATrailingWindow(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	if got := SMA(closes, 3); got != 5 {
		t.Fatalf("SMA = %v, want 5 (average of last 3)", got)
	}
}

func TestEMAAlignment(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	ema := EMA(closes, 3)
	if len(ema) != len(closes) {
		t.Fatalf("EMA len = %d, want %d", len(ema), len(closes))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(ema[i]) {
			t.Fatalf("EMA[%d] = %v, want NaN before seed", i, ema[i])
		}
	}
	if ema[2] != 2 {
		t.Fatalf("EMA seed = %v, want SMA of first 3 = 2", ema[2])
	}
	// k = 2/4 = 0.5; ema[3] = 4*0.5 + 2*0.5 = 3
	if ema[3] != 3 {
		t.Fatalf("EMA[3] = %v, want 3", ema[3])
	}
}

func TestEMAInsufficientData(t *testing.T) {
	ema := EMA([]float64{1, 2}, 5)
	for i, v := range ema {
		if !math.IsNaN(v) {
			t.Fatalf("EMA[%d] = %v, want NaN", i, v)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	series := []float64{44, 44.3, 44.1, 44.5, 44.2, 44.6, 44.8, 44.7, 45.0,
		45.2, 45.1, 45.4, 45.3, 45.6, 45.5}
	rsi := RSI(series, RSIPeriod)
	if rsi < 0 || rsi > 100 {
		t.Fatalf("RSI = %v, out of [0,100]", rsi)
	}
}

func TestRSINoLosses(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := RSI(up, RSIPeriod); got != 100 {
		t.Fatalf("RSI = %v, want exactly 100 with no losses", got)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if got := RSI([]float64{1, 2, 3}, RSIPeriod); !math.IsNaN(got) {
		t.Fatalf("RSI = %v, want NaN", got)
	}
}

func TestMACDInsufficientData(t *testing.T) {
	macd, signal, hist := MACD([]float64{1, 2, 3}, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if macd != 0 || signal != 0 || hist != 0 {
		t.Fatalf("MACD on short series = (%v, %v, %v), want zeros", macd, signal, hist)
	}
}

func TestMACDUptrendPositiveHistogram(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*float64(i)*0.05 // accelerating uptrend
	}
	macd, _, hist := MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if macd <= 0 {
		t.Fatalf("MACD line = %v, want > 0 on accelerating uptrend", macd)
	}
	if hist <= 0 {
		t.Fatalf("histogram = %v, want > 0 on accelerating uptrend", hist)
	}
}

func TestBollingerBands(t *testing.T) {
	closes := make([]float64, BollingerPeriod)
	for i := range closes {
		closes[i] = 50
	}
	upper, middle, lower := BollingerBands(closes, BollingerPeriod, BollingerMultiplier)
	if middle != 50 || upper != 50 || lower != 50 {
		t.Fatalf("flat bands = (%v, %v, %v), want all 50", upper, middle, lower)
	}

	upper, middle, lower = BollingerBands([]float64{1, 2}, BollingerPeriod, BollingerMultiplier)
	if upper != 0 || middle != 0 || lower != 0 {
		t.Fatalf("insufficient data bands = (%v, %v, %v), want zeros", upper, middle, lower)
	}
}

func TestReturnVolatilityShortSeries(t *testing.T) {
	if got := ReturnVolatility([]float64{42}); got != 0 {
		t.Fatalf("volatility of 1 point = %v, want 0", got)
	}
	if got := ReturnVolatility(nil); got != 0 {
		t.Fatalf("volatility of nil = %v, want 0", got)
	}
}

func TestCategorizeVolatility(t *testing.T) {
	cases := []struct {
		stddev float64
		want   VolatilityLevel
	}{
		{0, VolatilityLow},
		{0.0009, VolatilityLow},
		{0.001, VolatilityMedium},
		{0.0029, VolatilityMedium},
		{0.003, VolatilityHigh},
		{0.5, VolatilityHigh},
	}
	for _, c := range cases {
		if got := CategorizeVolatility(c.stddev); got != c.want {
			t.Errorf("CategorizeVolatility(%v) = %v, want %v", c.stddev, got, c.want)
		}
	}
}
