package service

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

type NonceSource interface {
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
}

// Sequencer serializes "take nonce, send tx" per account. The nonce is read
// fresh from the chain every time and never cached between calls.
type Sequencer struct {
	src NonceSource

	mu    sync.Mutex
	slots map[common.Address]chan struct{}
}

func NewSequencer(src NonceSource) *Sequencer {
	return &Sequencer{
		src:   src,
		slots: make(map[common.Address]chan struct{}),
	}
}

func (s *Sequencer) slot(account common.Address) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.slots[account]
	if !ok {
		ch = make(chan struct{}, 1)
		s.slots[account] = ch
	}
	return ch
}

// WithNonce runs fn with the account's next nonce while holding the
// account's slot.
func (s *Sequencer) WithNonce(ctx context.Context, account common.Address, fn func(nonce uint64) error) error {
	ch := s.slot(account)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait nonce slot")
	}
	defer func() { <-ch }()

	nonce, err := s.src.PendingNonce(ctx, account)
	if err != nil {
		return errors.Wrap(err, "get nonce")
	}
	return fn(nonce)
}
