package strategy

import (
	"go.uber.org/zap"

	"rate_bot/internal/models"
	"rate_bot/internal/modules/config"
)

func ParamsFromConfig(cfg *config.Config) Params {
	t := cfg.Trading
	return Params{
		MaxRisk:   t.MaxRisk,
		RiskLevel: t.RiskLevel,
		XFactor:   BpsToFraction(t.XFactor),
		YFactor:   BpsToFraction(t.YFactor),
		ZFactor:   BpsToFraction(t.ZFactor),
		P1:        t.PX1,
		P2:        t.PX2,
	}
}

func NewEngine(cfg *config.Config, log *zap.Logger) Engine {
	st, ok := models.ParseStrategy(cfg.Strategy)
	if !ok {
		log.Warn("strategy from bot config not found, using default",
			zap.String("strategy", cfg.Strategy))
	}

	switch st {
	case models.StrategyDefault:
		fallthrough
	default:
		return NewDefault(ParamsFromConfig(cfg), log.Named("strategy"))
	}
}
