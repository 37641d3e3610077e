package service

import (
	"context"
	"time"

	"spot_trader/internal/models"
	"spot_trader/internal/modules/config"
	"spot_trader/pkg/logger"
)

// Recorder снимает и сохраняет балансы с USDT-оценкой портфеля.
// Снимки кормят и аллокационный гвард, и дашборд.
type Recorder struct {
	cfg    *config.Config
	ex     BalanceSource
	store  SnapshotStore
	events EventSink
}

func NewRecorder(cfg *config.Config, ex BalanceSource, store SnapshotStore, events EventSink) *Recorder {
	return &Recorder{cfg: cfg, ex: ex, store: store, events: events}
}

// RecordNow фиксирует текущее состояние. Актив без котировки оценивается
// в ноль, а не роняет снимок: частичная оценка полезнее отсутствующей.
func (r *Recorder) RecordNow(ctx context.Context, now time.Time) {
	balance, err := r.ex.GetBalance(ctx)
	if err != nil {
		logger.Error("snapshot skipped: balance fetch failed: %v", err)
		return
	}

	var (
		rows  []models.BalanceSnapshot
		total float64
	)
	for _, asset := range r.cfg.AssetsToLog {
		b, ok := balance[asset]
		if !ok {
			continue
		}

		value := b.Total()
		if asset != "USDT" {
			price, err := r.ex.GetCurrentPrice(ctx, asset+"/USDT")
			if err != nil {
				logger.Warn("[%s] price unavailable for snapshot, valuing at 0: %v", asset, err)
				price = 0
			}
			value = b.Total() * price
		}

		rows = append(rows, models.BalanceSnapshot{
			Asset:     asset,
			Total:     b.Total(),
			Free:      b.Free,
			USDTValue: value,
			Timestamp: now,
		})
		total += value
	}

	if err := r.store.SaveBalances(ctx, rows); err != nil {
		logger.Error("balance snapshot save failed: %v", err)
	}
	snap := models.PortfolioSnapshot{TotalValueUSDT: total, Timestamp: now}
	if err := r.store.SavePortfolio(ctx, snap); err != nil {
		logger.Error("portfolio snapshot save failed: %v", err)
	}

	for _, row := range rows {
		r.events.EmitBalance(models.BalanceEvent{
			Asset:     row.Asset,
			Total:     models.EightDecimals(row.Total),
			Free:      models.EightDecimals(row.Free),
			Timestamp: now,
		})
	}
	r.events.EmitPortfolio(models.PortfolioEvent{
		TotalValueUSDT: models.EightDecimals(total),
		Timestamp:      now,
	})

	logger.Info("portfolio snapshot: %.2f USDT across %d assets", total, len(rows))
}
