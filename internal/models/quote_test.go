package models

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeQuoteClear(t *testing.T) {
	assert.True(t, TradeQuote{}.Clear())

	flags := []func(q *TradeQuote){
		func(q *TradeQuote) { q.ExceededTradeRateImpactLimitForPayer = true },
		func(q *TradeQuote) { q.ExceededTradeRateImpactLimitForReceiver = true },
		func(q *TradeQuote) { q.ExceededTradeNotionalLimitForPayer = true },
		func(q *TradeQuote) { q.ExceededTradeNotionalLimitForReceiver = true },
		func(q *TradeQuote) { q.ExceededMarketRateImpactLimitForPayer = true },
		func(q *TradeQuote) { q.ExceededMarketRateImpactLimitForReceiver = true },
	}
	for i, set := range flags {
		var q TradeQuote
		set(&q)
		assert.False(t, q.Clear(), "flag %d", i)
	}
}

func TestRequiredDeposit(t *testing.T) {
	q := OneDirectionTradeQuote{
		NewMargin: Margin{
			Collateral:    big.NewInt(50),
			ProfitAndLoss: ProfitAndLoss{NetFutureValue: big.NewInt(-10)},
		},
		NewMarginThreshold: big.NewInt(120),
	}
	assert.Equal(t, big.NewInt(80), q.RequiredDeposit())

	q.NewMarginThreshold = big.NewInt(10)
	assert.Equal(t, 0, q.RequiredDeposit().Sign())

	assert.Equal(t, 0, OneDirectionTradeQuote{}.RequiredDeposit().Sign())
}

func TestTradeQuoteSides(t *testing.T) {
	q := TradeQuote{
		PayerQuote:    OneDirectionTradeQuote{NewMarginThreshold: big.NewInt(30)},
		ReceiverQuote: OneDirectionTradeQuote{NewMarginThreshold: big.NewInt(70)},
	}
	assert.Equal(t, big.NewInt(30), q.Side(RiskDirectionPayer).NewMarginThreshold)
	assert.Equal(t, big.NewInt(70), q.Side(RiskDirectionReceiver).NewMarginThreshold)
	assert.Equal(t, big.NewInt(70), q.MaxRequiredDeposit())
}

func TestTradeQuoteMarketRate(t *testing.T) {
	q := TradeQuote{PayerQuote: OneDirectionTradeQuote{TradeInfo: TradeInfo{MarketRate: big.NewInt(7)}}}
	assert.Equal(t, big.NewInt(7), q.MarketRate())

	q.ReceiverQuote.TradeInfo.MarketRate = big.NewInt(9)
	assert.Equal(t, big.NewInt(9), q.MarketRate())

	assert.Equal(t, 0, TradeQuote{}.MarketRate().Sign())
}
