package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"spot_trader/internal/models"
	"spot_trader/internal/modules/config"
	"spot_trader/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeBalances struct {
	balances map[string]models.Balance
	prices   map[string]float64
}

func (f *fakeBalances) GetBalance(ctx context.Context) (map[string]models.Balance, error) {
	return f.balances, nil
}

func (f *fakeBalances) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	p, ok := f.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return p, nil
}

type fakeStore struct {
	balances  []models.BalanceSnapshot
	portfolio []models.PortfolioSnapshot
}

func (f *fakeStore) SaveBalances(ctx context.Context, rows []models.BalanceSnapshot) error {
	f.balances = append(f.balances, rows...)
	return nil
}

func (f *fakeStore) SavePortfolio(ctx context.Context, snap models.PortfolioSnapshot) error {
	f.portfolio = append(f.portfolio, snap)
	return nil
}

type fakeEvents struct {
	balances   []models.BalanceEvent
	portfolios []models.PortfolioEvent
}

func (f *fakeEvents) EmitBalance(ev models.BalanceEvent)     { f.balances = append(f.balances, ev) }
func (f *fakeEvents) EmitPortfolio(ev models.PortfolioEvent) { f.portfolios = append(f.portfolios, ev) }

func recorderConfig() *config.Config {
	return &config.Config{AssetsToLog: []string{"BTC", "ETH", "USDT"}}
}

func TestRecorderValuesPortfolio(t *testing.T) {
	ex := &fakeBalances{
		balances: map[string]models.Balance{
			"BTC":  {Free: 0.5, Locked: 0.5},
			"USDT": {Free: 200},
		},
		prices: map[string]float64{"BTC/USDT": 10000},
	}
	store := &fakeStore{}
	events := &fakeEvents{}
	r := NewRecorder(recorderConfig(), ex, store, events)

	r.RecordNow(context.Background(), time.Now())

	// ETH отсутствует в балансе и не попадает в снимок
	if len(store.balances) != 2 {
		t.Fatalf("saved %d balance rows, want 2", len(store.balances))
	}
	if len(store.portfolio) != 1 {
		t.Fatalf("saved %d portfolio rows, want 1", len(store.portfolio))
	}
	// 1 BTC * 10000 + 200 USDT
	if got := store.portfolio[0].TotalValueUSDT; got != 10200 {
		t.Fatalf("portfolio total = %v, want 10200", got)
	}
	if len(events.balances) != 2 || len(events.portfolios) != 1 {
		t.Fatalf("events: %d balance, %d portfolio", len(events.balances), len(events.portfolios))
	}
}

func TestRecorderMissingPriceValuesZero(t *testing.T) {
	ex := &fakeBalances{
		balances: map[string]models.Balance{
			"BTC":  {Free: 1},
			"USDT": {Free: 100},
		},
		prices: map[string]float64{}, // котировки нет
	}
	store := &fakeStore{}
	r := NewRecorder(recorderConfig(), ex, store, &fakeEvents{})

	r.RecordNow(context.Background(), time.Now())

	if got := store.portfolio[0].TotalValueUSDT; got != 100 {
		t.Fatalf("portfolio total = %v, want 100 (BTC valued at 0)", got)
	}
	for _, row := range store.balances {
		if row.Asset == "BTC" && row.USDTValue != 0 {
			t.Fatalf("BTC without a quote valued at %v, want 0", row.USDTValue)
		}
	}
}

func TestRecorderUSDTValuedAtFace(t *testing.T) {
	ex := &fakeBalances{
		balances: map[string]models.Balance{"USDT": {Free: 70, Locked: 30}},
		prices:   map[string]float64{},
	}
	store := &fakeStore{}
	r := NewRecorder(recorderConfig(), ex, store, &fakeEvents{})

	r.RecordNow(context.Background(), time.Now())

	if got := store.portfolio[0].TotalValueUSDT; got != 100 {
		t.Fatalf("portfolio total = %v, want 100", got)
	}
}
