package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rate_bot/internal/models"
	"rate_bot/internal/modules/postgres/service/trades"
	"rate_bot/pkg/db"
)

// Journal is the write-only trade audit log.
type Journal struct {
	db     db.TxManager
	trades *trades.Trades
}

func NewJournal(txm db.TxManager) *Journal {
	return &Journal{
		db:     txm,
		trades: trades.New(),
	}
}

func (j *Journal) EnsureSchema(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.EnsureSchema: %w", err)
		}
	}()
	return j.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return j.trades.CreateTable(ctxTx, tx)
	})
}

// Record in db
func (j *Journal) Record(ctx context.Context, rec models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Record: %w", err)
		}
	}()
	return j.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return j.trades.Insert(ctxTx, tx, rec)
	})
}
