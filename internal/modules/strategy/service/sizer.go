package service

import "spot_trader/internal/models"

// SizeOrder переводит желаемый USD-номинал в исполнимый размер ордера.
// Порядок поправок важен: сначала минимальный размер, затем минимальная
// стоимость — поднятие до minAmount само может нарушить порог стоимости.
// Итоговый размер может превысить исходный номинал: биржевые минимумы
// приоритетнее дисциплины трат.
func SizeOrder(usd, price float64, limits models.MarketConstraints) float64 {
	if price <= 0 {
		return 0
	}
	amount := usd / price
	if amount < limits.MinAmount {
		amount = limits.MinAmount
	}
	if amount*price < limits.MinCost {
		amount = limits.MinCost / price
	}
	return amount
}
