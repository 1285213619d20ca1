package strategy

import "rate_bot/internal/models"

// Decision is the strategy answer for one future.
type Decision struct {
	Direction     models.RiskDirection // None = skip this cycle
	Probabilities Probabilities
	Rule          string // last rule that fired, "" for the default
	Input         Input
	Thresholds    Thresholds
}

// Engine is what the Trader calls once per cycle.
type Engine interface {
	Decide(market models.Market, future models.Future, state models.MarketState) Decision
	Name() string
}
