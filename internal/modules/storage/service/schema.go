package service

import (
	"context"

	"spot_trader/pkg/db"

	"github.com/pkg/errors"
)

// Денежные колонки — NUMERIC(28,8): всё, что пишется сюда, уже прошло
// округление до 8 знаков (models.EightDecimals).
const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT        NOT NULL,
	side       TEXT        NOT NULL,
	price      NUMERIC(28,8) NOT NULL,
	amount     NUMERIC(28,8) NOT NULL,
	ts         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS trades_symbol_side_ts ON trades (symbol, side, ts DESC);

CREATE TABLE IF NOT EXISTS balance_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	asset      TEXT        NOT NULL,
	total      NUMERIC(28,8) NOT NULL,
	free       NUMERIC(28,8) NOT NULL,
	usdt_value NUMERIC(28,8) NOT NULL,
	ts         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS balance_snapshots_asset_ts ON balance_snapshots (asset, ts DESC);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
	id               BIGSERIAL PRIMARY KEY,
	total_value_usdt NUMERIC(28,8) NOT NULL,
	ts               TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS portfolio_snapshots_ts ON portfolio_snapshots (ts DESC);
`

// EnsureSchema создаёт таблицы при старте. Отдельных миграций у сервиса нет.
func EnsureSchema(ctx context.Context, tm *db.PgTxManager) error {
	_, err := tm.Conn().Exec(ctx, schema)
	return errors.Wrap(err, "ensure schema")
}
