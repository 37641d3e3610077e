package service

import (
	"testing"

	"spot_trader/internal/models"
)

func TestSizeOrderPassThrough(t *testing.T) {
	limits := models.MarketConstraints{MinAmount: 0.0001, MinCost: 5}
	got := SizeOrder(50, 30000, limits)
	if want := 50.0 / 30000; got != want {
		t.Fatalf("SizeOrder = %v, want %v", got, want)
	}
}

func TestSizeOrderRaisesToMinAmount(t *testing.T) {
	limits := models.MarketConstraints{MinAmount: 0.001, MinCost: 0}
	got := SizeOrder(1, 10000, limits) // 0.0001 < minAmount
	if got != 0.001 {
		t.Fatalf("SizeOrder = %v, want 0.001", got)
	}
}

func TestSizeOrderRaisesToMinCost(t *testing.T) {
	limits := models.MarketConstraints{MinAmount: 0.0001, MinCost: 10}
	got := SizeOrder(5, 100, limits) // 0.05, стоит 5 < minCost
	if got != 0.1 {
		t.Fatalf("SizeOrder = %v, want 0.1", got)
	}
}

func TestSizeOrderMinAmountThenMinCost(t *testing.T) {
	// поднятие до minAmount всё ещё ниже minCost, действует второй порог
	limits := models.MarketConstraints{MinAmount: 0.01, MinCost: 50}
	got := SizeOrder(1, 1000, limits)
	if got != 0.05 {
		t.Fatalf("SizeOrder = %v, want 0.05", got)
	}
}

func TestSizeOrderFloorsNeverShrink(t *testing.T) {
	limits := models.MarketConstraints{MinAmount: 0.001, MinCost: 5}
	for _, usd := range []float64{0.01, 1, 10, 100, 1000} {
		got := SizeOrder(usd, 200, limits)
		if got < limits.MinAmount {
			t.Fatalf("usd=%v: amount %v below min amount", usd, got)
		}
		if got*200 < limits.MinCost {
			t.Fatalf("usd=%v: cost %v below min cost", usd, got*200)
		}
	}
}

func TestSizeOrderZeroPrice(t *testing.T) {
	if got := SizeOrder(100, 0, models.MarketConstraints{MinAmount: 1, MinCost: 1}); got != 0 {
		t.Fatalf("SizeOrder with zero price = %v, want 0", got)
	}
}
