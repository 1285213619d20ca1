package service

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Account is a trading wallet the bot signs for.
type Account struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

func NewAccount(privateKeyHex string) (*Account, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return &Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}, nil
}

// ParseAccounts keeps the configured order and drops duplicates.
func ParseAccounts(keys []string) ([]*Account, error) {
	seen := make(map[common.Address]bool, len(keys))
	out := make([]*Account, 0, len(keys))
	for i, k := range keys {
		acc, err := NewAccount(k)
		if err != nil {
			return nil, errors.Wrapf(err, "private key #%d", i)
		}
		if seen[acc.Address] {
			continue
		}
		seen[acc.Address] = true
		out = append(out, acc)
	}
	if len(out) == 0 {
		return nil, errors.New("no accounts configured")
	}
	return out, nil
}

// SignMessage produces an EIP-191 personal signature of msg.
func (a *Account) SignMessage(msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), a.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign message")
	}
	return sig, nil
}
