package strategy

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"rate_bot/internal/models"
)

func newTestDefault(draw float64, now time.Time) *Default {
	d := NewDefault(Params{
		MaxRisk:   10000,
		RiskLevel: 1000,
		XFactor:   BpsToFraction(5),
		YFactor:   BpsToFraction(15),
		ZFactor:   BpsToFraction(10),
		P1:        0.6,
		P2:        0.75,
	}, zap.NewNop())
	d.draw = func() float64 { return draw }
	d.now = func() time.Time { return now }
	return d
}

func TestDefaultDecideFreshMarket(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	market := models.Market{Descriptor: models.MarketDescriptor{ID: "m1", UnderlyingDecimals: 6}}
	future := models.Future{ID: "f1", TermStart: now.Unix(), TermLength: SecondsInYear}

	d := newTestDefault(0.4, now)
	dec := d.Decide(market, future, models.MarketState{})

	assert.Equal(t, "fresh-market", dec.Rule)
	assert.Equal(t, models.RiskDirectionReceiver, dec.Direction)
	assert.InDelta(t, 0.1, dec.Thresholds.RiskLevel, 1e-12)

	d = newTestDefault(0.5, now)
	assert.Equal(t, models.RiskDirectionPayer, d.Decide(market, future, models.MarketState{}).Direction)
}

func TestDefaultDecideScalesByExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	market := models.Market{Descriptor: models.MarketDescriptor{ID: "m1", UnderlyingDecimals: 6}}
	future := models.Future{ID: "f1", TermStart: now.Unix(), TermLength: SecondsInYear}

	// dv01 = 2 asset units, maxRisk for one year = 1, so the payer is forced back
	state := models.MarketState{
		DV01:       big.NewInt(2_000_000),
		MarketRate: big.NewInt(5e16),
		AvgRate:    big.NewInt(5e16),
		Direction:  models.RiskDirectionPayer,
	}

	dec := newTestDefault(0.99, now).Decide(market, future, state)

	assert.Equal(t, "6:max-risk/payer", dec.Rule)
	assert.Equal(t, models.RiskDirectionReceiver, dec.Direction)
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "default", newTestDefault(0, time.Now()).Name())
}
