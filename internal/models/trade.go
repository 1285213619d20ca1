package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TradeParams is built once per decision and reused as-is on every retry.
type TradeParams struct {
	MarketID        string        `json:"marketId"`
	FutureID        string        `json:"futureId"`
	Direction       RiskDirection `json:"-"`
	Notional        *big.Int      `json:"notional"`
	FutureRateLimit *big.Int      `json:"futureRateLimit"`
	DepositAmount   *big.Int      `json:"depositAmount"`
	Deadline        time.Time     `json:"-"`
}

type TxOptions struct {
	Nonce        uint64
	GasLimit     uint64
	MaxFeePerGas *big.Int
}

type Receipt struct {
	Hash        common.Hash
	Status      uint64
	BlockNumber uint64
	GasUsed     uint64
}

func (r Receipt) Succeeded() bool { return r.Status == 1 }

// TradeRecord is one row of the trade journal.
type TradeRecord struct {
	CycleID   string
	Account   common.Address
	Params    TradeParams
	TxHash    common.Hash
	Attempts  int
	Status    string
	Error     string
	CreatedAt time.Time
}
