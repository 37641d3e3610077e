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

// Trades — леджер сделок.
type Trades struct {
	tm *db.PgTxManager
}

func NewTrades(tm *db.PgTxManager) *Trades {
	return &Trades{tm: tm}
}

func (t *Trades) RecordTrade(ctx context.Context, side models.Side, symbol string, price, amount float64, ts time.Time) error {
	_, err := t.tm.Conn().Exec(ctx,
		`INSERT INTO trades (symbol, side, price, amount, ts) VALUES ($1, $2, $3, $4, $5)`,
		symbol, string(side), models.EightDecimals(price), models.EightDecimals(amount), ts,
	)
	return errors.Wrapf(err, "record trade %s %s", side, symbol)
}

// LastBuy — последняя покупка по символу; (nil, nil) когда покупок не было.
func (t *Trades) LastBuy(ctx context.Context, symbol string) (*models.TradeRecord, error) {
	var (
		price  string
		amount string
		ts     time.Time
	)
	err := t.tm.Conn().QueryRow(ctx,
		`SELECT price::text, amount::text, ts FROM trades
		 WHERE symbol = $1 AND side = $2
		 ORDER BY ts DESC LIMIT 1`,
		symbol, string(models.SideBuy),
	).Scan(&price, &amount, &ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "last buy %s", symbol)
	}

	p, _ := strconv.ParseFloat(price, 64)
	a, _ := strconv.ParseFloat(amount, 64)
	return &models.TradeRecord{
		Symbol:    symbol,
		Side:      models.SideBuy,
		Price:     p,
		Amount:    a,
		Timestamp: ts,
	}, nil
}
