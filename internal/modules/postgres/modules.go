package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"rate_bot/internal/modules/config"
	"rate_bot/internal/modules/postgres/service"
	"rate_bot/internal/runner"
	"rate_bot/pkg/db"
)

const maxConns = 4

// Module provides the trade journal. Without DATABASE_DSN the journal is a
// no-op and no connection is opened.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (runner.Journal, error) {
				if cfg.DB == "" {
					log.Info("DATABASE_DSN not set, trade journal disabled")
					return runner.NopJournal(), nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN:      cfg.DB,
					MaxConns: maxConns,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					poolMaster.Close()
					return nil, err
				}

				txm := db.NewPgTxManager(poolMaster)
				journal := service.NewJournal(txm)
				if err := journal.EnsureSchema(ctx); err != nil {
					txm.Close()
					return nil, err
				}

				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						txm.Close()
						return nil
					},
				})
				return journal, nil
			},
		),
	)
}
