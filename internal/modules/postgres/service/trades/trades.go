package trades

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"rate_bot/internal/models"
)

const createTable = `
CREATE TABLE IF NOT EXISTS trade_journal (
	id         BIGSERIAL PRIMARY KEY,
	cycle_id   UUID        NOT NULL,
	account    TEXT        NOT NULL,
	market_id  TEXT        NOT NULL,
	future_id  TEXT        NOT NULL,
	direction  TEXT        NOT NULL,
	params     JSONB       NOT NULL,
	tx_hash    TEXT,
	attempts   INT         NOT NULL,
	status     TEXT        NOT NULL,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`

const insertTrade = `
INSERT INTO trade_journal
	(cycle_id, account, market_id, future_id, direction, params, tx_hash, attempts, status, error, created_at)
VALUES
	($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11)`

// Trades implement db store
type Trades struct{}

// New instance
func New() *Trades {
	return &Trades{}
}

func (t *Trades) CreateTable(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, createTable)
	return err
}

func (t *Trades) Insert(ctx context.Context, tx pgx.Tx, rec models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Trades.Insert: %w", err)
		}
	}()

	params, err := sonic.Marshal(rec.Params)
	if err != nil {
		return err
	}

	var hash string
	if rec.TxHash != (common.Hash{}) {
		hash = rec.TxHash.Hex()
	}

	_, err = tx.Exec(ctx, insertTrade,
		rec.CycleID,
		rec.Account.Hex(),
		rec.Params.MarketID,
		rec.Params.FutureID,
		rec.Params.Direction.String(),
		params,
		hash,
		rec.Attempts,
		rec.Status,
		rec.Error,
		rec.CreatedAt,
	)
	return err
}
