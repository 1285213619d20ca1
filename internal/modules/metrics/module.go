package metrics

import (
	"rate_bot/internal/modules/metrics/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			service.NewMetrics,
		),
	)
}
