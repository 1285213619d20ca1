package strategy

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"rate_bot/internal/models"
)

// Default is the probabilistic risk-direction model.
type Default struct {
	params Params
	log    *zap.Logger

	now  func() time.Time
	draw func() float64
}

func NewDefault(p Params, log *zap.Logger) *Default {
	return &Default{
		params: p,
		log:    log,
		now:    time.Now,
		draw:   rand.Float64,
	}
}

func (d *Default) Name() string { return string(models.StrategyDefault) }

func (d *Default) Decide(market models.Market, future models.Future, state models.MarketState) Decision {
	in := Normalize(state, market.Descriptor.UnderlyingDecimals)
	th := ScaleThresholds(d.params, future.SecondsToExpiry(d.now()))

	d.log.Info("current market state",
		zap.String("future", future.ID),
		zap.Float64("dv01", in.DV01),
		zap.Float64("riskLevel", th.RiskLevel),
		zap.Float64("maxRisk", th.MaxRisk),
		zap.Float64("avgRate", in.AvgRate),
		zap.Float64("marketRate", in.MarketRate),
		zap.Stringer("direction", in.Direction),
	)

	pr, fired := Evaluate(in, th, d.params)
	dir := Choose(pr, d.draw())

	d.log.Info("trade probabilities",
		zap.String("future", future.ID),
		zap.Float64("pReceive", pr.Receive),
		zap.Float64("pPay", pr.Pay),
		zap.String("rule", fired),
		zap.Stringer("decision", dir),
	)

	return Decision{
		Direction:     dir,
		Probabilities: pr,
		Rule:          fired,
		Input:         in,
		Thresholds:    th,
	}
}
