package models

import "math/big"

type ProfitAndLoss struct {
	NetFutureValue *big.Int `json:"netFutureValue"`
	AccruedLPFee   *big.Int `json:"accruedLPFee"`
	IncurredFee    *big.Int `json:"incurredFee"`
}

// Net is netFutureValue + accruedLPFee - incurredFee.
func (p ProfitAndLoss) Net() *big.Int {
	out := new(big.Int)
	out.Add(out, orZero(p.NetFutureValue))
	out.Add(out, orZero(p.AccruedLPFee))
	out.Sub(out, orZero(p.IncurredFee))
	return out
}

type Margin struct {
	Collateral    *big.Int      `json:"collateral"`
	ProfitAndLoss ProfitAndLoss `json:"profitAndLoss"`
}

// Total is collateral plus net P&L.
func (m Margin) Total() *big.Int {
	return new(big.Int).Add(orZero(m.Collateral), m.ProfitAndLoss.Net())
}

type MarginState struct {
	Margin                     Margin   `json:"margin"`
	InitialMarginThreshold     *big.Int `json:"initialMarginThreshold"`
	LiquidationMarginThreshold *big.Int `json:"liquidationMarginThreshold"`
	DV01                       *big.Int `json:"dv01"`
}

type TokensPair struct {
	FixedTokenAmount *big.Int `json:"fixedTokenAmount"`
	FloatTokenAmount *big.Int `json:"floatTokenAmount"`
}

type FutureOpenPosition struct {
	FutureID       string        `json:"futureId"`
	TokensPair     TokensPair    `json:"tokensPair"`
	Notional       *big.Int      `json:"notional"`
	ProfitAndLoss  ProfitAndLoss `json:"profitAndLoss"`
	RequiredMargin *big.Int      `json:"requiredMargin"`
	DV01           *big.Int      `json:"dv01"`
}

// Portfolio is the account's state in one market as reported by the venue.
type Portfolio struct {
	Descriptor          MarketDescriptor     `json:"descriptor"`
	MarginState         MarginState          `json:"marginState"`
	FutureOpenPositions []FutureOpenPosition `json:"futureOpenPositions"`
}

// MarketState is the fixed-point risk picture of one future, before
// normalization to decimals.
type MarketState struct {
	DV01       *big.Int
	MarketRate *big.Int
	AvgRate    *big.Int
	Direction  RiskDirection
}

// StateFor aggregates open positions of the future. dv01 is the absolute
// value of the net signed exposure. Net float balance > 0 means the account
// pays fixed (payer), < 0 receives fixed (receiver).
func (p Portfolio) StateFor(futureID string) (dv01 *big.Int, dir RiskDirection) {
	dv01 = new(big.Int)
	float := new(big.Int)
	for _, pos := range p.FutureOpenPositions {
		if pos.FutureID != futureID {
			continue
		}
		dv01.Add(dv01, orZero(pos.DV01))
		float.Add(float, orZero(pos.TokensPair.FloatTokenAmount))
	}
	dv01.Abs(dv01)
	switch float.Sign() {
	case 1:
		dir = RiskDirectionPayer
	case -1:
		dir = RiskDirectionReceiver
	}
	return dv01, dir
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
