package models

// MarketConstraints — биржевые минимумы по символу.
type MarketConstraints struct {
	MinAmount float64 // минимальный размер ордера в базовом активе
	MinCost   float64 // минимальная стоимость ордера в котируемой валюте
}

// Valid — без обоих лимитов ордер не посчитать.
func (m MarketConstraints) Valid() bool {
	return m.MinAmount > 0 && m.MinCost > 0
}

// Balance — свободный и заблокированный остаток одного актива.
type Balance struct {
	Free   float64
	Locked float64
}

func (b Balance) Total() float64 { return b.Free + b.Locked }

// OrderResult — фактический результат рыночного ордера.
type OrderResult struct {
	Symbol string
	Side   Side
	Price  float64 // средняя цена исполнения
	Amount float64 // исполненный объём
	Cost   float64 // фактическая стоимость в котируемой валюте
}
