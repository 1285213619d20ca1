package models

import "math/big"

type TradeInfo struct {
	Notional    *big.Int   `json:"notional"`
	TokensPair  TokensPair `json:"tokensPair"`
	MarketRate  *big.Int   `json:"marketRate"`
	TradeRate   *big.Int   `json:"tradeRate"`
	LPFee       *big.Int   `json:"lpFee"`
	ProtocolFee *big.Int   `json:"protocolFee"`
}

type OneDirectionTradeQuote struct {
	TradeInfo          TradeInfo `json:"tradeInfo"`
	NewMargin          Margin    `json:"newMargin"`
	NewMarginThreshold *big.Int  `json:"newMarginThreshold"`
	TradeNotionalDV01  *big.Int  `json:"tradeNotionalDv01"`
}

// RequiredDeposit is max(newMarginThreshold - newMargin, 0).
func (q OneDirectionTradeQuote) RequiredDeposit() *big.Int {
	d := new(big.Int).Sub(orZero(q.NewMarginThreshold), q.NewMargin.Total())
	if d.Sign() < 0 {
		return new(big.Int)
	}
	return d
}

// TradeQuote is the venue's two-sided projection for one notional.
type TradeQuote struct {
	Notional *big.Int `json:"-"`

	ExceededTradeRateImpactLimitForPayer     bool `json:"exceededTradeRateImpactLimitForPayer"`
	ExceededTradeRateImpactLimitForReceiver  bool `json:"exceededTradeRateImpactLimitForReceiver"`
	ExceededTradeNotionalLimitForPayer       bool `json:"exceededTradeNotionalLimitForPayer"`
	ExceededTradeNotionalLimitForReceiver    bool `json:"exceededTradeNotionalLimitForReceiver"`
	ExceededMarketRateImpactLimitForPayer    bool `json:"exceededMarketRateImpactLimitForPayer"`
	ExceededMarketRateImpactLimitForReceiver bool `json:"exceededMarketRateImpactLimitForReceiver"`

	PayerQuote    OneDirectionTradeQuote `json:"payerQuote"`
	ReceiverQuote OneDirectionTradeQuote `json:"receiverQuote"`
}

// Clear reports that none of the six limit flags is set.
func (q TradeQuote) Clear() bool {
	return !q.ExceededTradeRateImpactLimitForPayer &&
		!q.ExceededTradeRateImpactLimitForReceiver &&
		!q.ExceededTradeNotionalLimitForPayer &&
		!q.ExceededTradeNotionalLimitForReceiver &&
		!q.ExceededMarketRateImpactLimitForPayer &&
		!q.ExceededMarketRateImpactLimitForReceiver
}

func (q TradeQuote) Side(dir RiskDirection) OneDirectionTradeQuote {
	if dir == RiskDirectionReceiver {
		return q.ReceiverQuote
	}
	return q.PayerQuote
}

// MaxRequiredDeposit is the larger of the two sides' deposits.
func (q TradeQuote) MaxRequiredDeposit() *big.Int {
	r := q.ReceiverQuote.RequiredDeposit()
	p := q.PayerQuote.RequiredDeposit()
	if r.Cmp(p) >= 0 {
		return r
	}
	return p
}

// MarketRate prefers the receiver side and falls back to the payer side.
func (q TradeQuote) MarketRate() *big.Int {
	if r := q.ReceiverQuote.TradeInfo.MarketRate; r != nil {
		return r
	}
	return orZero(q.PayerQuote.TradeInfo.MarketRate)
}
