package runner

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"rate_bot/internal/modules/config"
	health "rate_bot/internal/modules/health/service"
	metrics "rate_bot/internal/modules/metrics/service"
	oracle "rate_bot/internal/modules/oracle/service"
	venue "rate_bot/internal/modules/venue/service"
	"rate_bot/internal/strategy"
)

func NewTraders(
	cfg *config.Config,
	accs []*venue.Account,
	v Venue,
	rates RateSource,
	engine strategy.Engine,
	n Notifier,
	j Journal,
	m Metrics,
	st HealthState,
	log *zap.Logger,
) []*Trader {
	t := cfg.Trading
	fitter := NewQuoteFitter(v, SizingConfig{
		MaxTradeSize: t.MaxTradeSize,
		Attempts:     t.QuoteAttempts,
		Policy:       t.SizingExhaustedPolicy,
	}, log.Named("sizing"))
	exec := NewExecutor(v, m, n, j, ExecutorConfig{
		SubmitAttempts: t.SubmitAttempts,
		RetryBackoff:   t.RetryBackoff,
		GasMarginPct:   cfg.Gas.MarginPct,
		MaxGasLimit:    cfg.Gas.MaxGasLimit,
		MaxFeePerGas:   cfg.Gas.MaxFeePerGas,
	}, log.Named("executor"))

	traders := make([]*Trader, 0, len(accs))
	for _, a := range accs {
		traders = append(traders, NewTrader(a.Address, TraderDeps{
			Venue:    v,
			Rates:    rates,
			Engine:   engine,
			Fitter:   fitter,
			Guard:    NewMarginGuard(t.MaxMarginInUse),
			Executor: exec,
			Metrics:  m,
			State:    st,
			Notifier: n,
			Log:      log.Named("trader"),
			Deadline: t.Deadline,
		}))
	}
	return traders
}

func NewManagerFromConfig(cfg *config.Config, v Venue, traders []*Trader, m Metrics, st HealthState, log *zap.Logger) *Manager {
	t := cfg.Trading
	return NewManager(v, traders, ManagerConfig{
		Selection: Selection{
			MarketIDs: t.MarketIDs,
			FutureIDs: t.FutureIDs,
		},
		DiscoveryInterval:   t.DiscoveryInterval,
		AvgInterval:         t.EffectiveAvgInterval(),
		MaxConcurrentCycles: t.MaxConcurrentCycles,
	}, m, st, log.Named("manager"))
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *venue.Client) Venue { return c },
			func(c *oracle.Client) RateSource { return c },
			func(m *metrics.Metrics) Metrics { return m },
			func(s *health.State) HealthState { return s },
			NewTraders,
			NewManagerFromConfig,
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			m *Manager,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				// ctx из main живёт всё время работы процесса, в отличие от ctx хука
				OnStart: func(_ context.Context) error {
					return m.Start(ctx)
				},
				OnStop: func(stopCtx context.Context) error {
					return m.Stop(stopCtx)
				},
			})
		}),
	)
}
