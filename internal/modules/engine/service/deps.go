package service

import (
	"context"
	"time"

	"spot_trader/internal/models"
)

// CycleRunner — один торговый цикл, возвращает число исполненных ордеров.
type CycleRunner interface {
	RunCycle(ctx context.Context, now time.Time) int
}

type BalanceSource interface {
	GetBalance(ctx context.Context) (map[string]models.Balance, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

type SnapshotStore interface {
	SaveBalances(ctx context.Context, rows []models.BalanceSnapshot) error
	SavePortfolio(ctx context.Context, snap models.PortfolioSnapshot) error
}

type EventSink interface {
	EmitBalance(models.BalanceEvent)
	EmitPortfolio(models.PortfolioEvent)
}
