package service

import (
	"context"
	"strconv"
	"time"

	"spot_trader/internal/models"
	"spot_trader/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Snapshots — снимки балансов и оценка портфеля.
type Snapshots struct {
	tm *db.PgTxManager
}

func NewSnapshots(tm *db.PgTxManager) *Snapshots {
	return &Snapshots{tm: tm}
}

// SaveBalances пишет пачку снимков балансов одной транзакцией.
func (s *Snapshots) SaveBalances(ctx context.Context, rows []models.BalanceSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.tm.Run(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		for _, r := range rows {
			_, err := tx.Exec(ctxTx,
				`INSERT INTO balance_snapshots (asset, total, free, usdt_value, ts)
				 VALUES ($1, $2, $3, $4, $5)`,
				r.Asset,
				models.EightDecimals(r.Total),
				models.EightDecimals(r.Free),
				models.EightDecimals(r.USDTValue),
				r.Timestamp,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "save balances")
}

func (s *Snapshots) SavePortfolio(ctx context.Context, snap models.PortfolioSnapshot) error {
	_, err := s.tm.Conn().Exec(ctx,
		`INSERT INTO portfolio_snapshots (total_value_usdt, ts) VALUES ($1, $2)`,
		models.EightDecimals(snap.TotalValueUSDT), snap.Timestamp,
	)
	return errors.Wrap(err, "save portfolio")
}

// LatestSnapshot — последняя оценка портфеля; (nil, nil) до первого снимка.
func (s *Snapshots) LatestSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	var (
		total string
		ts    time.Time
	)
	err := s.tm.Conn().QueryRow(ctx,
		`SELECT total_value_usdt::text, ts FROM portfolio_snapshots
		 ORDER BY ts DESC LIMIT 1`,
	).Scan(&total, &ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "latest portfolio snapshot")
	}

	v, _ := strconv.ParseFloat(total, 64)
	return &models.PortfolioSnapshot{TotalValueUSDT: v, Timestamp: ts}, nil
}

// LatestAssetValue — последняя USDT-оценка актива, 0 если снимков нет.
func (s *Snapshots) LatestAssetValue(ctx context.Context, asset string) (float64, error) {
	var value string
	err := s.tm.Conn().QueryRow(ctx,
		`SELECT usdt_value::text FROM balance_snapshots
		 WHERE asset = $1 ORDER BY ts DESC LIMIT 1`,
		asset,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "latest asset value %s", asset)
	}

	v, _ := strconv.ParseFloat(value, 64)
	return v, nil
}
