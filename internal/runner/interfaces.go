package runner

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"rate_bot/internal/models"
)

// Venue is the part of the venue client the trading loop depends on.
type Venue interface {
	ActiveMarkets(ctx context.Context) ([]models.Market, error)
	Portfolio(ctx context.Context, marketID string, account common.Address) (models.Portfolio, error)
	Quote(ctx context.Context, marketID, futureID string, notional *big.Int, account common.Address) (models.TradeQuote, error)

	Balance(ctx context.Context, token, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, owner, token, spender common.Address, amount *big.Int, gasMarginPct int64) (models.Receipt, error)

	EstimateGas(ctx context.Context, account common.Address, params models.TradeParams) (uint64, error)
	SubmitTrade(ctx context.Context, account common.Address, params models.TradeParams, opts models.TxOptions) (models.Receipt, error)
	WithNonce(ctx context.Context, account common.Address, fn func(nonce uint64) error) error
	WaitMined(ctx context.Context, hash common.Hash) (models.Receipt, error)

	RouterAddress() common.Address
}

type RateSource interface {
	AverageRate(ctx context.Context, marketID, futureID string) (*big.Int, error)
}

type Metrics interface {
	IncTrades()
	IncSubmitAttempts()
	ObserveCycle(outcome string)
	SetScheduled(n int)
}

type HealthState interface {
	SetReady(v bool)
	SetScheduled(n int)
	TouchCycle(t time.Time)
	TouchTrade(t time.Time)
}

// Notifier delivers operator alerts. Implementations must not block the
// cycle for long.
type Notifier interface {
	Alert(ctx context.Context, format string, args ...any)
}

// Journal is the write-only audit trail of submitted trades.
type Journal interface {
	Record(ctx context.Context, rec models.TradeRecord) error
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, models.TradeRecord) error { return nil }

// NopJournal is used when no database is configured.
func NopJournal() Journal { return nopJournal{} }
