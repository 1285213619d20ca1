package runner

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rate_bot/internal/models"
)

func portfolioWithMargin(collateral int64) models.Portfolio {
	return models.Portfolio{
		MarginState: models.MarginState{
			Margin: models.Margin{Collateral: big.NewInt(collateral)},
		},
	}
}

func TestMarginGuard(t *testing.T) {
	g := NewMarginGuard(100)
	require.True(t, g.Enabled())

	err := g.Check(portfolioWithMargin(120), 0)
	require.ErrorIs(t, err, ErrMarginCeiling)
	assert.True(t, IsPolicyAbort(err))

	assert.NoError(t, g.Check(portfolioWithMargin(100), 0))
	// ceiling is scaled to the token precision
	assert.NoError(t, g.Check(portfolioWithMargin(9_999), 2))
	assert.ErrorIs(t, g.Check(portfolioWithMargin(10_001), 2), ErrMarginCeiling)
}

func TestMarginGuardDisabled(t *testing.T) {
	g := NewMarginGuard(0)
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Check(portfolioWithMargin(1_000_000), 6))
}

func TestMarginGuardCountsProfitAndLoss(t *testing.T) {
	p := portfolioWithMargin(90)
	p.MarginState.Margin.ProfitAndLoss = models.ProfitAndLoss{
		NetFutureValue: big.NewInt(20),
		IncurredFee:    big.NewInt(5),
	}
	assert.ErrorIs(t, NewMarginGuard(100).Check(p, 0), ErrMarginCeiling)
}
