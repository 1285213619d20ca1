package service

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"rate_bot/internal/models"
)

// Receipts can take several blocks; they get a longer budget than plain calls.
const receiptTimeoutFactor = 10

// Client is the venue as the trading engine sees it.
type Client struct {
	gw       *Gateway
	chain    *Chain
	seq      *Sequencer
	router   common.Address
	accounts map[common.Address]*Account
	timeout  time.Duration
}

func NewClient(gw *Gateway, chain *Chain, router common.Address, accs []*Account, timeout time.Duration) *Client {
	byAddr := make(map[common.Address]*Account, len(accs))
	for _, a := range accs {
		byAddr[a.Address] = a
	}
	return &Client{
		gw:       gw,
		chain:    chain,
		seq:      NewSequencer(chain),
		router:   router,
		accounts: byAddr,
		timeout:  timeout,
	}
}

func (c *Client) RouterAddress() common.Address { return c.router }

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) account(addr common.Address) (*Account, error) {
	acc, ok := c.accounts[addr]
	if !ok {
		return nil, errors.Errorf("unknown account %s", addr.Hex())
	}
	return acc, nil
}

func (c *Client) ActiveMarkets(ctx context.Context) ([]models.Market, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.gw.ActiveMarkets(ctx)
}

func (c *Client) Portfolio(ctx context.Context, marketID string, account common.Address) (models.Portfolio, error) {
	acc, err := c.account(account)
	if err != nil {
		return models.Portfolio{}, err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.gw.Portfolio(ctx, acc, marketID)
}

func (c *Client) Quote(ctx context.Context, marketID, futureID string, notional *big.Int, account common.Address) (models.TradeQuote, error) {
	acc, err := c.account(account)
	if err != nil {
		return models.TradeQuote{}, err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.gw.Quote(ctx, acc, marketID, futureID, notional)
}

func (c *Client) Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.chain.TokenBalance(ctx, token, account)
}

func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	return c.chain.Allowance(ctx, token, owner, spender)
}

// Approve sends an ERC20 approval and waits for it to be mined.
func (c *Client) Approve(ctx context.Context, owner, token, spender common.Address, amount *big.Int, gasMarginPct int64) (models.Receipt, error) {
	acc, err := c.account(owner)
	if err != nil {
		return models.Receipt{}, err
	}
	data, err := packApprove(spender, amount)
	if err != nil {
		return models.Receipt{}, errors.Wrap(err, "pack approve")
	}

	var hash common.Hash
	err = c.WithNonce(ctx, owner, func(nonce uint64) error {
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()

		gas, err := c.chain.Estimate(callCtx, owner, token, data)
		if err != nil {
			return err
		}
		gas += gas * uint64(gasMarginPct) / 100
		hash, err = c.chain.Send(callCtx, acc.key, token, data, models.TxOptions{Nonce: nonce, GasLimit: gas})
		return err
	})
	if err != nil {
		return models.Receipt{}, errors.Wrap(err, "approve")
	}
	return c.WaitMined(ctx, hash)
}

func (c *Client) EstimateGas(ctx context.Context, account common.Address, params models.TradeParams) (uint64, error) {
	acc, err := c.account(account)
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	to, data, err := c.gw.TradeCalldata(ctx, acc, params)
	if err != nil {
		return 0, err
	}
	return c.chain.Estimate(ctx, account, to, data)
}

// SubmitTrade signs and broadcasts the trade; opts.Nonce must come from
// WithNonce.
func (c *Client) SubmitTrade(ctx context.Context, account common.Address, params models.TradeParams, opts models.TxOptions) (models.Receipt, error) {
	acc, err := c.account(account)
	if err != nil {
		return models.Receipt{}, err
	}
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	to, data, err := c.gw.TradeCalldata(ctx, acc, params)
	if err != nil {
		return models.Receipt{}, err
	}
	hash, err := c.chain.Send(ctx, acc.key, to, data, opts)
	if err != nil {
		return models.Receipt{}, err
	}
	return models.Receipt{Hash: hash}, nil
}

func (c *Client) WithNonce(ctx context.Context, account common.Address, fn func(nonce uint64) error) error {
	return c.seq.WithNonce(ctx, account, fn)
}

func (c *Client) WaitMined(ctx context.Context, hash common.Hash) (models.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout*receiptTimeoutFactor)
	defer cancel()
	return c.chain.WaitMined(ctx, hash)
}
