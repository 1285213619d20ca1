package runner

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rate_bot/internal/models"
	"rate_bot/internal/strategy"
	"rate_bot/pkg/tracing"
)

// rateLimitSlippage is 0.001 (0.1%) in 18-decimal rate units.
var rateLimitSlippage = big.NewInt(1e15)

// Trader runs trade cycles for one account.
type Trader struct {
	account common.Address

	venue    Venue
	rates    RateSource
	engine   strategy.Engine
	fitter   *QuoteFitter
	guard    MarginGuard
	exec     *Executor
	metrics  Metrics
	state    HealthState
	notifier Notifier
	log      *zap.Logger

	deadline time.Duration
	now      func() time.Time
}

type TraderDeps struct {
	Venue    Venue
	Rates    RateSource
	Engine   strategy.Engine
	Fitter   *QuoteFitter
	Guard    MarginGuard
	Executor *Executor
	Metrics  Metrics
	State    HealthState
	Notifier Notifier
	Log      *zap.Logger
	Deadline time.Duration
}

func NewTrader(account common.Address, d TraderDeps) *Trader {
	return &Trader{
		account:  account,
		venue:    d.Venue,
		rates:    d.Rates,
		engine:   d.Engine,
		fitter:   d.Fitter,
		guard:    d.Guard,
		exec:     d.Executor,
		metrics:  d.Metrics,
		state:    d.State,
		notifier: d.Notifier,
		log:      d.Log.With(zap.String("account", account.Hex())),
		deadline: d.Deadline,
		now:      time.Now,
	}
}

func (t *Trader) Account() common.Address { return t.account }

// RunCycle makes at most one trade on the future. A nil error with no trade
// means the model decided to stay flat.
func (t *Trader) RunCycle(ctx context.Context, market models.Market, futureID string) (err error) {
	cycleID := uuid.NewString()
	log := t.log.With(
		zap.String("cycle", cycleID),
		zap.String("market", market.Name()),
		zap.String("future", futureID),
	)

	span, ctx := tracing.StartSpan(ctx, "trade_cycle", map[string]any{
		"cycle":   cycleID,
		"account": t.account.Hex(),
		"future":  futureID,
	})
	traded := false
	defer func() {
		tracing.FinishSpan(span, err)
		if IsPolicyAbort(err) && t.notifier != nil {
			t.notifier.Alert(ctx, "⚠️ %s %s: trade cycle aborted: %v", t.account.Hex(), futureID, err)
		}
		t.metrics.ObserveCycle(outcomeOf(err, traded))
		t.state.TouchCycle(t.now())
	}()

	future, ok := market.FindFuture(futureID)
	if !ok {
		return errors.Errorf("future %s not found in market %s", futureID, market.Descriptor.ID)
	}
	desc := market.Descriptor

	log.Info("trade cycle started")

	portfolio, err := t.venue.Portfolio(ctx, desc.ID, t.account)
	if err != nil {
		return errors.Wrap(err, "portfolio")
	}

	balance, err := t.venue.Balance(ctx, desc.Underlying, t.account)
	if err != nil {
		log.Warn("balance unknown, sizing without it", zap.Error(err))
		balance = nil
	}

	sizing, err := t.fitter.Fit(ctx, market, future, t.account, balance)
	if err != nil {
		return err
	}

	avgRate, err := t.rates.AverageRate(ctx, desc.ID, future.ID)
	if err != nil {
		return errors.Wrap(err, "average rate")
	}
	dv01, dir := portfolio.StateFor(future.ID)
	state := models.MarketState{
		DV01:       dv01,
		MarketRate: sizing.Quote.MarketRate(),
		AvgRate:    avgRate,
		Direction:  dir,
	}

	decision := t.engine.Decide(market, future, state)
	if decision.Direction == models.RiskDirectionNone {
		log.Info("no trade this cycle", zap.String("rule", decision.Rule))
		return nil
	}

	if err := t.guard.Check(portfolio, desc.UnderlyingDecimals); err != nil {
		return err
	}

	params := t.buildParams(desc.ID, future.ID, decision.Direction, sizing)
	log.Info("trade params",
		zap.Stringer("direction", params.Direction),
		zap.String("notional", params.Notional.String()),
		zap.String("rateLimit", params.FutureRateLimit.String()),
		zap.String("deposit", params.DepositAmount.String()),
		zap.Time("deadline", params.Deadline),
	)

	_, err = t.exec.Execute(ctx, Order{
		CycleID:    cycleID,
		Account:    t.account,
		Underlying: desc.Underlying,
		Decimals:   desc.UnderlyingDecimals,
		Params:     params,
	})
	if err != nil {
		return err
	}
	traded = true
	t.state.TouchTrade(t.now())
	return nil
}

func (t *Trader) buildParams(marketID, futureID string, dir models.RiskDirection, sizing SizingResult) models.TradeParams {
	side := sizing.Quote.Side(dir)

	limit := new(big.Int)
	if rate := side.TradeInfo.TradeRate; rate != nil {
		limit.Set(rate)
	}
	// receiver accepts a slightly lower rate, payer a slightly higher one
	if dir == models.RiskDirectionReceiver {
		limit.Sub(limit, rateLimitSlippage)
	} else {
		limit.Add(limit, rateLimitSlippage)
	}

	return models.TradeParams{
		MarketID:        marketID,
		FutureID:        futureID,
		Direction:       dir,
		Notional:        new(big.Int).Set(sizing.Notional),
		FutureRateLimit: limit,
		DepositAmount:   side.RequiredDeposit(),
		Deadline:        t.now().Add(t.deadline),
	}
}
