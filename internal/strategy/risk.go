package strategy

import (
	"math/big"

	"github.com/shopspring/decimal"

	"rate_bot/internal/models"
)

const (
	RateDecimals  = 18
	SecondsInYear = 365 * 24 * 60 * 60
	basisPoint    = 0.0001
)

// Params are the configured knobs of the rule table.
type Params struct {
	MaxRisk   float64 // flat notional limits
	RiskLevel float64
	XFactor   float64 // fractions, 0.05 = 5%
	YFactor   float64
	ZFactor   float64
	P1        float64
	P2        float64
}

// Thresholds are MaxRisk/RiskLevel converted to dv01 for a given expiry.
type Thresholds struct {
	RiskLevel float64
	MaxRisk   float64
}

// Input is the risk state in decimal units.
type Input struct {
	DV01       float64
	MarketRate float64
	AvgRate    float64
	Direction  models.RiskDirection
}

// DV01FromNotional is the dv01 of a notional held for secondsToExpiry:
// notional * yearFraction * 1bp.
func DV01FromNotional(notional float64, secondsToExpiry int64) float64 {
	if secondsToExpiry <= 0 {
		return 0
	}
	return notional * float64(secondsToExpiry) / SecondsInYear * basisPoint
}

func ScaleThresholds(p Params, secondsToExpiry int64) Thresholds {
	return Thresholds{
		RiskLevel: DV01FromNotional(p.RiskLevel, secondsToExpiry),
		MaxRisk:   DV01FromNotional(p.MaxRisk, secondsToExpiry),
	}
}

// FromFixed converts a fixed-point integer to a float with the given
// precision. nil is zero.
func FromFixed(v *big.Int, decimals int32) float64 {
	if v == nil {
		return 0
	}
	return decimal.NewFromBigInt(v, -decimals).InexactFloat64()
}

// Normalize turns the venue's fixed-point state into decimals: dv01 uses
// the underlying precision, rates use 18 decimals.
func Normalize(state models.MarketState, underlyingDecimals uint8) Input {
	return Input{
		DV01:       FromFixed(state.DV01, int32(underlyingDecimals)),
		MarketRate: FromFixed(state.MarketRate, RateDecimals),
		AvgRate:    FromFixed(state.AvgRate, RateDecimals),
		Direction:  state.Direction,
	}
}

// BpsToFraction converts configured basis points (5 = 0.05%) to a fraction.
func BpsToFraction(bps float64) float64 {
	return bps / 10_000
}
