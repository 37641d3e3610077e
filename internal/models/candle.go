package models

import "time"

// Candle — одна OHLCV-свеча фиксированного таймфрейма.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Closes возвращает цены закрытия в хронологическом порядке.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
