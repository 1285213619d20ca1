package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	scheduled     atomic.Int64
	lastCycleUnix atomic.Int64 // unix seconds
	lastTradeUnix atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetScheduled(n int) { s.scheduled.Store(int64(n)) }
func (s *State) Scheduled() int     { return int(s.scheduled.Load()) }

func (s *State) TouchCycle(t time.Time) { s.lastCycleUnix.Store(t.Unix()) }
func (s *State) LastCycle() time.Time  { return fromUnix(s.lastCycleUnix.Load()) }

func (s *State) TouchTrade(t time.Time) { s.lastTradeUnix.Store(t.Unix()) }
func (s *State) LastTrade() time.Time  { return fromUnix(s.lastTradeUnix.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func fromUnix(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
