package runner

import (
	"github.com/pkg/errors"

	"rate_bot/internal/models"
)

// MarginGuard caps the margin an account may keep in one market.
type MarginGuard struct {
	maxUnits int64 // asset units, 0 = disabled
}

func NewMarginGuard(maxMarginInUse int64) MarginGuard {
	return MarginGuard{maxUnits: maxMarginInUse}
}

func (g MarginGuard) Enabled() bool { return g.maxUnits > 0 }

func (g MarginGuard) Check(p models.Portfolio, decimals uint8) error {
	if !g.Enabled() {
		return nil
	}
	ceiling := models.ToFixed(g.maxUnits, decimals)
	total := p.MarginState.Margin.Total()
	if total.Cmp(ceiling) > 0 {
		return errors.Wrapf(ErrMarginCeiling, "margin %s > %s", total, ceiling)
	}
	return nil
}
