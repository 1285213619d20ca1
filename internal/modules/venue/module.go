package venue

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"rate_bot/internal/modules/config"
	"rate_bot/internal/modules/venue/service"
)

func Module() fx.Option {
	return fx.Module("venue",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) ([]*service.Account, error) {
				accs, err := service.ParseAccounts(cfg.PrivateKeys)
				if err != nil {
					return nil, err
				}
				for _, a := range accs {
					log.Info("bot account", zap.String("address", a.Address.Hex()))
				}
				return accs, nil
			},
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*service.Chain, error) {
				dialCtx, cancel := context.WithTimeout(ctx, cfg.Venue.CallTimeout)
				defer cancel()
				chain, err := service.DialChain(dialCtx, cfg.RPCURL)
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						chain.Close()
						return nil
					},
				})
				return chain, nil
			},
			func(cfg *config.Config) *service.Gateway {
				return service.NewGateway(cfg.VenueURL, cfg.Venue.CallTimeout, cfg.Venue.RPS)
			},
			func(cfg *config.Config, gw *service.Gateway, chain *service.Chain, accs []*service.Account) *service.Client {
				return service.NewClient(gw, chain, common.HexToAddress(cfg.Router), accs, cfg.Venue.CallTimeout)
			},
		),
	)
}
