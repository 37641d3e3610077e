package service

import (
	"context"
	"time"

	"spot_trader/internal/models"
)

// Контракты внешних коллабораторов. Ядро принимает интерфейсы,
// конкретные реализации живут в exchange/storage/gateway/notify.

type CandleSource interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

type Exchange interface {
	CandleSource
	GetMarkets(ctx context.Context) (map[string]models.MarketConstraints, error)
	GetBalance(ctx context.Context) (map[string]models.Balance, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	PlaceMarketBuy(ctx context.Context, symbol string, amount float64) (*models.OrderResult, error)
	PlaceMarketSell(ctx context.Context, symbol string, amount float64) (*models.OrderResult, error)
}

type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error)
	LatestAssetValue(ctx context.Context, asset string) (float64, error)
}

type TradeLedger interface {
	RecordTrade(ctx context.Context, side models.Side, symbol string, price, amount float64, ts time.Time) error
	LastBuy(ctx context.Context, symbol string) (*models.TradeRecord, error)
}

// SignalSource — оценка сигналов за цикл. Реализуется Evaluator.
type SignalSource interface {
	Evaluate(ctx context.Context, now time.Time, markets map[string]models.MarketConstraints, mem models.MemoryStore) map[string]models.Signal
}

// EventSink — fire-and-forget уведомления, подтверждений не ждём.
type EventSink interface {
	EmitTrade(models.TradeEvent)
	EmitBalance(models.BalanceEvent)
	EmitPortfolio(models.PortfolioEvent)
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}
