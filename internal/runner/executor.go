package runner

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rate_bot/internal/models"
)

// approvalUnits is the allowance granted to the router per approval, in
// asset units.
const approvalUnits = 1_000_000

const (
	journalConfirmed   = "confirmed"
	journalReverted    = "reverted"
	journalUnconfirmed = "unconfirmed"
	journalFailed      = "failed"
)

type ExecutorConfig struct {
	SubmitAttempts int
	RetryBackoff   time.Duration
	GasMarginPct   int64
	MaxGasLimit    uint64   // 0 = no cap
	MaxFeePerGas   *big.Int // nil = venue suggestion
}

// Order is what the executor needs besides the trade params.
type Order struct {
	CycleID    string
	Account    common.Address
	Underlying common.Address
	Decimals   uint8
	Params     models.TradeParams
}

// Executor turns trade params into a mined transaction: allowance, gas,
// nonce-sequenced submission with retries.
type Executor struct {
	venue    Venue
	metrics  Metrics
	notifier Notifier
	journal  Journal
	cfg      ExecutorConfig
	log      *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(v Venue, m Metrics, n Notifier, j Journal, cfg ExecutorConfig, log *zap.Logger) *Executor {
	if j == nil {
		j = NopJournal()
	}
	return &Executor{
		venue:    v,
		metrics:  m,
		notifier: n,
		journal:  j,
		cfg:      cfg,
		log:      log,
		sleep:    sleepCtx,
	}
}

func (e *Executor) Execute(ctx context.Context, o Order) (models.Receipt, error) {
	log := e.log.With(
		zap.String("cycle", o.CycleID),
		zap.String("future", o.Params.FutureID),
		zap.String("account", o.Account.Hex()),
	)

	if err := e.ensureAllowance(ctx, o, log); err != nil {
		return models.Receipt{}, err
	}

	gas, err := e.gasLimit(ctx, o)
	if err != nil {
		return models.Receipt{}, err
	}

	sent, attempts, err := e.submit(ctx, o, gas, log)
	if err != nil {
		e.record(ctx, o, models.Receipt{}, attempts, journalFailed, err, log)
		e.notifier.Alert(ctx, "❗️ %s %s: trade not submitted after %d attempts: %v",
			o.Account.Hex(), o.Params.FutureID, attempts, err)
		return models.Receipt{}, errors.Wrapf(ErrRetriesExhausted, "after %d attempts: %v", attempts, err)
	}
	log.Info("trade submitted",
		zap.String("tx", sent.Hash.Hex()),
		zap.Stringer("direction", o.Params.Direction),
		zap.String("notional", o.Params.Notional.String()),
		zap.Int("attempts", attempts),
	)

	mined, err := e.venue.WaitMined(ctx, sent.Hash)
	if err != nil {
		log.Warn("trade receipt not received", zap.String("tx", sent.Hash.Hex()), zap.Error(err))
		e.record(ctx, o, sent, attempts, journalUnconfirmed, err, log)
		return sent, errors.Wrapf(err, "wait receipt %s", sent.Hash.Hex())
	}
	if !mined.Succeeded() {
		log.Warn("trade reverted", zap.String("tx", mined.Hash.Hex()))
		e.record(ctx, o, mined, attempts, journalReverted, ErrTradeReverted, log)
		e.notifier.Alert(ctx, "❗️ %s %s: trade %s reverted",
			o.Account.Hex(), o.Params.FutureID, mined.Hash.Hex())
		return mined, errors.Wrapf(ErrTradeReverted, "tx %s", mined.Hash.Hex())
	}

	// only a mined, successful trade counts
	e.metrics.IncTrades()
	e.record(ctx, o, mined, attempts, journalConfirmed, nil, log)
	return mined, nil
}

func (e *Executor) ensureAllowance(ctx context.Context, o Order, log *zap.Logger) error {
	deposit := o.Params.DepositAmount
	if deposit == nil || deposit.Sign() <= 0 {
		return nil
	}
	router := e.venue.RouterAddress()

	allowance, err := e.venue.Allowance(ctx, o.Underlying, o.Account, router)
	if err != nil {
		return errors.Wrapf(ErrApproval, "read allowance: %v", err)
	}
	if allowance.Cmp(deposit) >= 0 {
		return nil
	}

	amount := models.ToFixed(approvalUnits, o.Decimals)
	log.Info("approving router",
		zap.String("token", o.Underlying.Hex()),
		zap.String("allowance", allowance.String()),
		zap.String("deposit", deposit.String()),
		zap.String("amount", amount.String()),
	)
	r, err := e.venue.Approve(ctx, o.Account, o.Underlying, router, amount, e.cfg.GasMarginPct)
	if err != nil {
		return errors.Wrapf(ErrApproval, "%v", err)
	}
	if !r.Succeeded() {
		return errors.Wrapf(ErrApproval, "approval tx %s reverted", r.Hash.Hex())
	}
	log.Info("router approved", zap.String("tx", r.Hash.Hex()))
	return nil
}

func (e *Executor) gasLimit(ctx context.Context, o Order) (uint64, error) {
	est, err := e.venue.EstimateGas(ctx, o.Account, o.Params)
	if err != nil {
		return 0, errors.Wrap(err, "estimate trade gas")
	}
	padded := est + est*uint64(e.cfg.GasMarginPct)/100
	if e.cfg.MaxGasLimit > 0 && padded > e.cfg.MaxGasLimit {
		return 0, errors.Wrapf(ErrGasCap, "%d > %d", padded, e.cfg.MaxGasLimit)
	}
	return padded, nil
}

// submit sends the same params up to SubmitAttempts times. Every attempt
// takes a fresh nonce under the account's sequencer.
func (e *Executor) submit(ctx context.Context, o Order, gas uint64, log *zap.Logger) (models.Receipt, int, error) {
	var (
		receipt models.Receipt
		lastErr error
	)
	for attempt := 1; attempt <= e.cfg.SubmitAttempts; attempt++ {
		e.metrics.IncSubmitAttempts()
		lastErr = e.venue.WithNonce(ctx, o.Account, func(nonce uint64) error {
			var err error
			receipt, err = e.venue.SubmitTrade(ctx, o.Account, o.Params, models.TxOptions{
				Nonce:        nonce,
				GasLimit:     gas,
				MaxFeePerGas: e.cfg.MaxFeePerGas,
			})
			return err
		})
		if lastErr == nil {
			return receipt, attempt, nil
		}

		log.Warn("trade submission failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt == e.cfg.SubmitAttempts {
			return models.Receipt{}, attempt, lastErr
		}
		if err := e.sleep(ctx, e.cfg.RetryBackoff); err != nil {
			return models.Receipt{}, attempt, errors.Wrap(err, lastErr.Error())
		}
	}
	return models.Receipt{}, 0, errors.New("no submit attempts configured")
}

func (e *Executor) record(ctx context.Context, o Order, r models.Receipt, attempts int, status string, cause error, log *zap.Logger) {
	rec := models.TradeRecord{
		CycleID:   o.CycleID,
		Account:   o.Account,
		Params:    o.Params,
		TxHash:    r.Hash,
		Attempts:  attempts,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := e.journal.Record(ctx, rec); err != nil {
		log.Warn("journal write failed", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
