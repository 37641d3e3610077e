package models

import (
	"math"
	"strconv"
	"time"
)

// PortfolioSnapshot — последняя оценка портфеля в USDT.
type PortfolioSnapshot struct {
	TotalValueUSDT float64
	Timestamp      time.Time
}

// BalanceSnapshot — зафиксированный остаток актива с его USDT-оценкой.
type BalanceSnapshot struct {
	Asset     string
	Total     float64
	Free      float64
	USDTValue float64
	Timestamp time.Time
}

// TradeRecord — запись сделки в леджере.
type TradeRecord struct {
	Symbol    string
	Side      Side
	Price     float64
	Amount    float64
	Timestamp time.Time
}

type TradeEvent struct {
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     string    `json:"price"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

type BalanceEvent struct {
	Asset     string    `json:"asset"`
	Total     string    `json:"total"`
	Free      string    `json:"free"`
	Timestamp time.Time `json:"timestamp"`
}

type PortfolioEvent struct {
	TotalValueUSDT string    `json:"totalValueUSDT"`
	Timestamp      time.Time `json:"timestamp"`
}

// EightDecimals приводит денежное значение к фиксированным 8 знакам.
// Всё, что уходит в леджер и наружу, проходит через эту точку.
func EightDecimals(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v = math.Round(v*1e8) / 1e8
	return strconv.FormatFloat(v, 'f', 8, 64)
}
