package service

import (
	"context"

	"spot_trader/internal/models"
	"spot_trader/internal/modules/config"
	"spot_trader/pkg/logger"
)

// AllocationGuard ограничивает долю актива в портфеле.
// Ограничивает только покупки: продажи долю лишь уменьшают.
type AllocationGuard struct {
	cfg       *config.Config
	snapshots SnapshotSource
}

func NewAllocationGuard(cfg *config.Config, snapshots SnapshotSource) *AllocationGuard {
	return &AllocationGuard{cfg: cfg, snapshots: snapshots}
}

// Approve решает, не выведет ли покупка на proposedUSD актив за потолок веса.
// До первого снимка портфеля — одобряем (cold start). Нулевая оценка
// портфеля — отказ: делить не на что, NaN в сайзинг не пропускаем.
func (g *AllocationGuard) Approve(ctx context.Context, symbol string, proposedUSD float64) bool {
	asset := models.BaseAsset(symbol)

	snap, err := g.snapshots.LatestSnapshot(ctx)
	if err != nil {
		logger.Error("[%s] allocation check failed: %v", asset, err)
		return false
	}
	if snap == nil {
		return true
	}
	if snap.TotalValueUSDT <= 0 {
		logger.Warn("[%s] allocation check: portfolio total is zero, rejecting", asset)
		return false
	}

	assetValue, err := g.snapshots.LatestAssetValue(ctx, asset)
	if err != nil {
		logger.Error("[%s] allocation check failed: %v", asset, err)
		return false
	}

	currentWeight := assetValue / snap.TotalValueUSDT * 100
	projectedWeight := (assetValue + proposedUSD) / snap.TotalValueUSDT * 100
	maxAllowed := g.cfg.MaxWeightFor(asset)

	logger.Info("[%s] current: %.2f%%, projected: %.2f%%, max: %.0f%%",
		asset, currentWeight, projectedWeight, maxAllowed)

	return projectedWeight <= maxAllowed
}
