package telegram

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"rate_bot/internal/modules/config"
	health "rate_bot/internal/modules/health/service"
	"rate_bot/internal/modules/telegram_bot/service"
	"rate_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// Адаптер: Telegram или Stdout -> runner.Notifier
		fx.Provide(
			func(cfg *config.Config, state *health.State, log *zap.Logger) (runner.Notifier, *service.Telegram, error) {
				log = log.Named("telegram")
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					log.Info("telegram not configured, alerts go to log")
					return service.NewStdout(log), nil, nil
				}
				t, err := service.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, state, log)
				if err != nil {
					return nil, nil, err
				}
				return t, t, nil
			},
		),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, ctx context.Context) {
				if t == nil {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						t.Start(ctx)
						return nil
					},
					OnStop: func(context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
