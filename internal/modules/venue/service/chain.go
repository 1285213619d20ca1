package service

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"rate_bot/internal/models"
)

const receiptPollInterval = 2 * time.Second

// Chain is the JSON-RPC side of the venue: token reads, gas, nonces,
// signing and receipts.
type Chain struct {
	eth     *ethclient.Client
	chainID *big.Int
}

func DialChain(ctx context.Context, rpcURL string) (*Chain, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial rpc")
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, errors.Wrap(err, "get chain id")
	}
	return &Chain{eth: eth, chainID: chainID}, nil
}

func (c *Chain) Close() { c.eth.Close() }

func (c *Chain) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

func (c *Chain) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, account)
}

func (c *Chain) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	data, err := packBalanceOf(owner)
	if err != nil {
		return nil, err
	}
	return c.callUint256(ctx, token, "balanceOf", data)
}

func (c *Chain) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := packAllowance(owner, spender)
	if err != nil {
		return nil, err
	}
	return c.callUint256(ctx, token, "allowance", data)
}

func (c *Chain) callUint256(ctx context.Context, to common.Address, method string, data []byte) (*big.Int, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	return unpackUint256(method, out)
}

func (c *Chain) Estimate(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return 0, errors.Wrap(err, "estimate gas")
	}
	return gas, nil
}

// Send signs an EIP-1559 transaction with the given nonce and gas limit.
func (c *Chain) Send(
	ctx context.Context,
	key *ecdsa.PrivateKey,
	to common.Address,
	data []byte,
	opts models.TxOptions,
) (common.Hash, error) {
	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "suggest tip")
	}

	feeCap := opts.MaxFeePerGas
	if feeCap == nil {
		head, err := c.eth.HeaderByNumber(ctx, nil)
		if err != nil {
			return common.Hash{}, errors.Wrap(err, "latest header")
		}
		if head.BaseFee != nil {
			feeCap = new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
		} else if feeCap, err = c.eth.SuggestGasPrice(ctx); err != nil {
			return common.Hash{}, errors.Wrap(err, "suggest gas price")
		}
	}
	if tip.Cmp(feeCap) > 0 {
		tip = new(big.Int).Set(feeCap)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     opts.Nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       opts.GasLimit,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), key)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign tx")
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, errors.Wrap(err, "send tx")
	}
	return signed.Hash(), nil
}

// WaitMined polls for the receipt until it appears or ctx ends.
func (c *Chain) WaitMined(ctx context.Context, hash common.Hash) (models.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		r, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			out := models.Receipt{
				Hash:    hash,
				Status:  r.Status,
				GasUsed: r.GasUsed,
			}
			if r.BlockNumber != nil {
				out.BlockNumber = r.BlockNumber.Uint64()
			}
			return out, nil
		case !errors.Is(err, ethereum.NotFound):
			return models.Receipt{}, errors.Wrap(err, "get receipt")
		}

		select {
		case <-ctx.Done():
			return models.Receipt{}, errors.Wrapf(ctx.Err(), "wait receipt %s", hash.Hex())
		case <-ticker.C:
		}
	}
}
