package models

import (
	"strings"
	"time"
)

type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal — результат оценки одного символа за цикл.
// Strength — |fastMA - slowMA|, используется только для ранжирования.
type Signal struct {
	Symbol   string
	Side     Side
	Strength float64
}

// TradingMemory — состояние символа между циклами.
type TradingMemory struct {
	LastAction   Side
	LastActionAt time.Time
	PrevFastMA   float64
	HasPrevFast  bool
}

// MemoryStore — keyed-хранилище памяти по символам. Передаётся в
// evaluator/executor явно, никаких глобалов. Не потокобезопасно:
// циклы выполняются строго последовательно.
type MemoryStore map[string]*TradingMemory

func NewMemoryStore() MemoryStore {
	return MemoryStore{}
}

func (m MemoryStore) Get(symbol string) *TradingMemory {
	mem, ok := m[symbol]
	if !ok {
		mem = &TradingMemory{}
		m[symbol] = mem
	}
	return mem
}

// MarkAction фиксирует принятое действие. Таймстемп не двигаем назад.
func (m MemoryStore) MarkAction(symbol string, side Side, at time.Time) {
	mem := m.Get(symbol)
	mem.LastAction = side
	if at.After(mem.LastActionAt) {
		mem.LastActionAt = at
	}
}

// BaseAsset выделяет базовый актив из пары вида "BTC/USDT".
func BaseAsset(symbol string) string {
	if i := strings.IndexByte(symbol, '/'); i > 0 {
		return symbol[:i]
	}
	return symbol
}
