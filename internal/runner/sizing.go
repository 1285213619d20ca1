package runner

import (
	"context"
	"math/big"
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rate_bot/internal/models"
	"rate_bot/internal/modules/config"
)

// shrinkPct is how much of the notional is cut after an unusable quote.
const shrinkPct = 30

type SizingConfig struct {
	MaxTradeSize int64 // asset units
	Attempts     int
	Policy       string // config.SizingProceed | config.SizingAbort
}

type SizingResult struct {
	Notional *big.Int
	Quote    models.TradeQuote
	Clear    bool
	Attempts int
}

// QuoteFitter searches for the largest notional the venue quotes without
// tripping a limit.
type QuoteFitter struct {
	venue Venue
	cfg   SizingConfig
	log   *zap.Logger

	pick func(grid []int64) int64
}

func NewQuoteFitter(v Venue, cfg SizingConfig, log *zap.Logger) *QuoteFitter {
	return &QuoteFitter{
		venue: v,
		cfg:   cfg,
		log:   log,
		pick: func(grid []int64) int64 {
			return grid[rand.IntN(len(grid))]
		},
	}
}

// StartGrid lists candidate start sizes from max/10 to max, step
// min(100, max/100).
func StartGrid(maxSize int64) []int64 {
	step := min(int64(100), maxSize/100)
	if step < 1 {
		step = 1
	}
	lo := maxSize / 10
	if lo < 1 {
		lo = 1
	}
	grid := make([]int64, 0, (maxSize-lo)/step+1)
	for v := lo; v <= maxSize; v += step {
		grid = append(grid, v)
	}
	return grid
}

// Fit quotes a shrinking notional until the quote is clear and, when the
// balance is known, both sides' deposits fit into it.
func (f *QuoteFitter) Fit(
	ctx context.Context,
	market models.Market,
	future models.Future,
	account common.Address,
	balance *big.Int,
) (SizingResult, error) {
	start := f.pick(StartGrid(f.cfg.MaxTradeSize))
	notional := models.ToFixed(start, market.Descriptor.UnderlyingDecimals)

	var res SizingResult
	for i := 1; i <= f.cfg.Attempts; i++ {
		q, err := f.venue.Quote(ctx, market.Descriptor.ID, future.ID, notional, account)
		if err != nil {
			return SizingResult{}, errors.Wrap(err, "quote")
		}
		res = SizingResult{Notional: notional, Quote: q, Attempts: i}

		fits := balance == nil || q.MaxRequiredDeposit().Cmp(balance) <= 0
		if q.Clear() && fits {
			res.Clear = true
			return res, nil
		}

		f.log.Debug("quote not usable, shrinking notional",
			zap.Int("attempt", i),
			zap.String("notional", notional.String()),
			zap.Bool("limitsClear", q.Clear()),
			zap.Bool("depositFits", fits),
		)

		cut := new(big.Int).Mul(notional, big.NewInt(shrinkPct))
		cut.Quo(cut, big.NewInt(100))
		notional = new(big.Int).Sub(notional, cut)
	}

	if f.cfg.Policy == config.SizingAbort {
		return res, errors.Wrapf(ErrSizingExhausted, "after %d attempts", res.Attempts)
	}
	f.log.Warn("sizing attempts exhausted, proceeding with last quote",
		zap.String("notional", res.Notional.String()),
		zap.Int("attempts", res.Attempts),
	)
	return res, nil
}
