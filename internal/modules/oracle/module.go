package oracle

import (
	"go.uber.org/fx"

	"rate_bot/internal/modules/config"
	"rate_bot/internal/modules/oracle/service"
)

func Module() fx.Option {
	return fx.Module("oracle",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(cfg.OracleURL, cfg.Venue.CallTimeout, cfg.Venue.RPS)
			},
		),
	)
}
