package runner

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"rate_bot/internal/models"
	"rate_bot/internal/strategy"
)

// fakeVenue records every call in order. Behaviour is configured through
// its function fields; nil fields fall back to harmless defaults.
type fakeVenue struct {
	mu    sync.Mutex
	calls []string

	markets   []models.Market
	portfolio models.Portfolio
	balance   *big.Int
	allowance *big.Int
	gas       uint64
	router    common.Address

	quoteFn   func(notional *big.Int) models.TradeQuote
	approveFn func() (models.Receipt, error)
	submitFn  func(attempt int) error
	waitFn    func(hash common.Hash) (models.Receipt, error)

	quoted    []*big.Int
	submitted []models.TradeParams
	txOpts    []models.TxOptions
	nonce     uint64
}

func (f *fakeVenue) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeVenue) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeVenue) ActiveMarkets(context.Context) ([]models.Market, error) {
	f.record("markets")
	return f.markets, nil
}

func (f *fakeVenue) Portfolio(context.Context, string, common.Address) (models.Portfolio, error) {
	f.record("portfolio")
	return f.portfolio, nil
}

func (f *fakeVenue) Quote(_ context.Context, _, _ string, notional *big.Int, _ common.Address) (models.TradeQuote, error) {
	f.record("quote")
	f.mu.Lock()
	f.quoted = append(f.quoted, new(big.Int).Set(notional))
	f.mu.Unlock()
	if f.quoteFn != nil {
		return f.quoteFn(notional), nil
	}
	return clearQuote(notional), nil
}

func (f *fakeVenue) Balance(context.Context, common.Address, common.Address) (*big.Int, error) {
	f.record("balance")
	if f.balance == nil {
		return nil, fmt.Errorf("balance unavailable")
	}
	return f.balance, nil
}

func (f *fakeVenue) Allowance(context.Context, common.Address, common.Address, common.Address) (*big.Int, error) {
	f.record("allowance")
	if f.allowance == nil {
		return new(big.Int), nil
	}
	return f.allowance, nil
}

func (f *fakeVenue) Approve(context.Context, common.Address, common.Address, common.Address, *big.Int, int64) (models.Receipt, error) {
	f.record("approve")
	if f.approveFn != nil {
		return f.approveFn()
	}
	return models.Receipt{Hash: common.HexToHash("0xa1"), Status: 1}, nil
}

func (f *fakeVenue) EstimateGas(context.Context, common.Address, models.TradeParams) (uint64, error) {
	f.record("estimate")
	if f.gas == 0 {
		return 100_000, nil
	}
	return f.gas, nil
}

func (f *fakeVenue) SubmitTrade(_ context.Context, _ common.Address, p models.TradeParams, opts models.TxOptions) (models.Receipt, error) {
	f.record("submit")
	f.mu.Lock()
	f.submitted = append(f.submitted, p)
	f.txOpts = append(f.txOpts, opts)
	attempt := len(f.submitted)
	f.mu.Unlock()
	if f.submitFn != nil {
		if err := f.submitFn(attempt); err != nil {
			return models.Receipt{}, err
		}
	}
	return models.Receipt{Hash: common.HexToHash("0xb2")}, nil
}

func (f *fakeVenue) WithNonce(_ context.Context, _ common.Address, fn func(nonce uint64) error) error {
	f.mu.Lock()
	n := f.nonce
	f.nonce++
	f.mu.Unlock()
	return fn(n)
}

func (f *fakeVenue) WaitMined(_ context.Context, hash common.Hash) (models.Receipt, error) {
	f.record("wait")
	if f.waitFn != nil {
		return f.waitFn(hash)
	}
	return models.Receipt{Hash: hash, Status: 1, BlockNumber: 10}, nil
}

func (f *fakeVenue) RouterAddress() common.Address { return f.router }

func clearQuote(notional *big.Int) models.TradeQuote {
	side := models.OneDirectionTradeQuote{
		TradeInfo: models.TradeInfo{
			Notional:   notional,
			MarketRate: big.NewInt(5e16),
			TradeRate:  big.NewInt(5e16),
		},
		NewMargin:          models.Margin{Collateral: big.NewInt(100)},
		NewMarginThreshold: big.NewInt(180),
	}
	return models.TradeQuote{Notional: notional, PayerQuote: side, ReceiverQuote: side}
}

type fakeRates struct{ rate *big.Int }

func (f fakeRates) AverageRate(context.Context, string, string) (*big.Int, error) {
	if f.rate == nil {
		return big.NewInt(5e16), nil
	}
	return f.rate, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	trades    int
	attempts  int
	outcomes  []string
	scheduled int
}

func (m *fakeMetrics) IncTrades() {
	m.mu.Lock()
	m.trades++
	m.mu.Unlock()
}

func (m *fakeMetrics) IncSubmitAttempts() {
	m.mu.Lock()
	m.attempts++
	m.mu.Unlock()
}

func (m *fakeMetrics) ObserveCycle(o string) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, o)
	m.mu.Unlock()
}

func (m *fakeMetrics) SetScheduled(n int) {
	m.mu.Lock()
	m.scheduled = n
	m.mu.Unlock()
}

type fakeState struct {
	mu        sync.Mutex
	ready     bool
	scheduled int
	cycles    int
	trades    int
}

func (s *fakeState) SetReady(v bool) {
	s.mu.Lock()
	s.ready = v
	s.mu.Unlock()
}

func (s *fakeState) SetScheduled(n int) {
	s.mu.Lock()
	s.scheduled = n
	s.mu.Unlock()
}

func (s *fakeState) TouchCycle(_ time.Time) {
	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
}

func (s *fakeState) TouchTrade(_ time.Time) {
	s.mu.Lock()
	s.trades++
	s.mu.Unlock()
}

func (s *fakeState) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) Alert(_ context.Context, format string, args ...any) {
	n.mu.Lock()
	n.alerts = append(n.alerts, fmt.Sprintf(format, args...))
	n.mu.Unlock()
}

type fakeJournal struct {
	mu      sync.Mutex
	records []models.TradeRecord
}

func (j *fakeJournal) Record(_ context.Context, rec models.TradeRecord) error {
	j.mu.Lock()
	j.records = append(j.records, rec)
	j.mu.Unlock()
	return nil
}

// fixedEngine always answers with the same direction.
type fixedEngine struct {
	dir    models.RiskDirection
	called bool
	state  models.MarketState
}

func (e *fixedEngine) Name() string { return "fixed" }

func (e *fixedEngine) Decide(_ models.Market, _ models.Future, st models.MarketState) strategy.Decision {
	e.called = true
	e.state = st
	return strategy.Decision{Direction: e.dir, Rule: "fixed"}
}

func testMarket() models.Market {
	return models.Market{
		Descriptor: models.MarketDescriptor{
			ID:                 "m1",
			SourceName:         "Src",
			InstrumentName:     "USDC",
			Underlying:         common.HexToAddress("0x01"),
			UnderlyingDecimals: 2,
		},
		Futures: []models.Future{
			{ID: "f1", MarketID: "m1", TermStart: time.Now().Unix(), TermLength: 90 * 24 * 3600},
		},
	}
}
