package models

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type MarketDescriptor struct {
	ID                 string         `json:"id"`
	SourceName         string         `json:"sourceName"`
	InstrumentName     string         `json:"instrumentName"`
	Tag                string         `json:"tag"`
	Underlying         common.Address `json:"underlying"`
	UnderlyingName     string         `json:"underlyingName"`
	UnderlyingDecimals uint8          `json:"underlyingDecimals"`
}

// Future is a single term contract inside a market.
type Future struct {
	ID           string   `json:"id"`
	MarketID     string   `json:"marketId"`
	TermStart    int64    `json:"termStart"`
	TermLength   int64    `json:"termLength"`
	OpenInterest *big.Int `json:"openInterest,omitempty"`
}

func (f Future) Maturity() time.Time {
	return time.Unix(f.TermStart+f.TermLength, 0)
}

// SecondsToExpiry may be negative for matured futures.
func (f Future) SecondsToExpiry(now time.Time) int64 {
	return f.TermStart + f.TermLength - now.Unix()
}

type Market struct {
	Descriptor MarketDescriptor `json:"descriptor"`
	Futures    []Future         `json:"futures"`
}

func (m Market) Name() string {
	return m.Descriptor.SourceName + " " + m.Descriptor.InstrumentName
}

// FindFuture matches ids case-insensitively.
func (m Market) FindFuture(id string) (Future, bool) {
	for _, f := range m.Futures {
		if strings.EqualFold(f.ID, id) {
			return f, true
		}
	}
	return Future{}, false
}

// Pow10 returns 10^decimals as a big integer.
func Pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// ToFixed scales an integral asset amount to the token's fixed point.
func ToFixed(units int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), Pow10(decimals))
}
