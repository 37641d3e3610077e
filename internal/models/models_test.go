package models

import (
	"math"
	"testing"
	"time"
)

func TestEightDecimals(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00000000"},
		{1.5, "1.50000000"},
		{0.123456789, "0.12345679"},
		{123456.000000001, "123456.00000000"},
		{math.NaN(), "0.00000000"},
		{math.Inf(1), "0.00000000"},
		{math.Inf(-1), "0.00000000"},
	}
	for _, c := range cases {
		if got := EightDecimals(c.in); got != c.want {
			t.Fatalf("EightDecimals(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBaseAsset(t *testing.T) {
	if got := BaseAsset("BTC/USDT"); got != "BTC" {
		t.Fatalf("BaseAsset = %q, want BTC", got)
	}
	if got := BaseAsset("USDT"); got != "USDT" {
		t.Fatalf("BaseAsset without separator = %q, want USDT", got)
	}
}

func TestMemoryStoreGetCreates(t *testing.T) {
	m := NewMemoryStore()
	mem := m.Get("BTC/USDT")
	if mem == nil {
		t.Fatal("Get must create memory on first access")
	}
	if mem.LastAction != SideNone || !mem.LastActionAt.IsZero() {
		t.Fatalf("fresh memory must be empty: %+v", mem)
	}
	if m.Get("BTC/USDT") != mem {
		t.Fatal("Get must return the same instance")
	}
}

func TestMemoryStoreMarkActionMonotonic(t *testing.T) {
	m := NewMemoryStore()
	later := time.Now()
	earlier := later.Add(-time.Minute)

	m.MarkAction("BTC/USDT", SideBuy, later)
	m.MarkAction("BTC/USDT", SideSell, earlier)

	mem := m.Get("BTC/USDT")
	if mem.LastAction != SideSell {
		t.Fatalf("last action = %q, want SELL", mem.LastAction)
	}
	if !mem.LastActionAt.Equal(later) {
		t.Fatal("timestamp must never move backwards")
	}
}

func TestBalanceTotal(t *testing.T) {
	b := Balance{Free: 1.5, Locked: 0.5}
	if b.Total() != 2 {
		t.Fatalf("Total = %v, want 2", b.Total())
	}
}
