package runner

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Selection limits trading to configured ids. Empty lists allow everything.
type Selection struct {
	MarketIDs []string
	FutureIDs []string
}

func (s Selection) market(id string) bool { return allowed(s.MarketIDs, id) }
func (s Selection) future(id string) bool { return allowed(s.FutureIDs, id) }

func allowed(list []string, id string) bool {
	return len(list) == 0 || slices.Contains(list, strings.ToLower(id))
}

// Manager owns one trader and one scheduler per account and keeps the set of
// scheduled futures in sync with the venue.
type Manager struct {
	venue     Venue
	traders   []*Trader
	selection Selection
	interval  time.Duration
	avg       time.Duration
	sem       chan struct{}
	metrics   Metrics
	state     HealthState
	log       *zap.Logger

	mu         sync.Mutex
	schedulers map[common.Address]*Scheduler
	counts     map[common.Address]int
	cancel     context.CancelFunc
	done       chan struct{}
}

type ManagerConfig struct {
	Selection           Selection
	DiscoveryInterval   time.Duration
	AvgInterval         time.Duration
	MaxConcurrentCycles int
}

func NewManager(v Venue, traders []*Trader, cfg ManagerConfig, m Metrics, st HealthState, log *zap.Logger) *Manager {
	n := cfg.MaxConcurrentCycles
	if n <= 0 {
		n = 1
	}
	return &Manager{
		venue:      v,
		traders:    traders,
		selection:  cfg.Selection,
		interval:   cfg.DiscoveryInterval,
		avg:        cfg.AvgInterval,
		sem:        make(chan struct{}, n),
		metrics:    m,
		state:      st,
		log:        log,
		schedulers: make(map[common.Address]*Scheduler),
		counts:     make(map[common.Address]int),
	}
}

// Start runs the first discovery pass synchronously: no matching futures is
// a startup error. Later passes run in the background.
func (m *Manager) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	m.mu.Lock()
	for _, t := range m.traders {
		acc := t.Account()
		s := NewScheduler(ctx, t.RunCycle, m.avg, m.sem, m.log.With(zap.String("account", acc.Hex())))
		s.OnChange(func(n int) { m.setCount(acc, n) })
		m.schedulers[acc] = s
	}
	m.mu.Unlock()

	n, err := m.Discover(ctx)
	if err != nil {
		cancel()
		return errors.Wrap(err, "initial discovery")
	}
	if n == 0 {
		cancel()
		return errors.New("no futures match MARKET_IDS/FUTURE_IDS among active markets")
	}
	m.state.SetReady(true)

	m.mu.Lock()
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()
	go m.discoveryLoop(ctx, m.done)
	return nil
}

func (m *Manager) discoveryLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	if m.interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Discover(ctx); err != nil {
				m.log.Error("market discovery failed", zap.Error(err))
			}
		}
	}
}

// Discover schedules every selected future that is not tracked yet and
// returns how many selected futures the venue currently lists.
func (m *Manager) Discover(ctx context.Context) (int, error) {
	markets, err := m.venue.ActiveMarkets(ctx)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	scheds := make([]*Scheduler, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		scheds = append(scheds, s)
	}
	m.mu.Unlock()

	found, added := 0, 0
	for _, mk := range markets {
		if !m.selection.market(mk.Descriptor.ID) {
			continue
		}
		for _, f := range mk.Futures {
			if !m.selection.future(f.ID) {
				continue
			}
			found++
			for _, s := range scheds {
				if s.Tracked(f.ID) {
					continue
				}
				s.Schedule(mk, f)
				added++
			}
			m.log.Debug("future selected",
				zap.String("market", mk.Name()),
				zap.String("future", f.ID),
				zap.Time("maturity", f.Maturity()),
			)
		}
	}

	m.log.Info("markets discovered",
		zap.Int("markets", len(markets)),
		zap.Int("futures", found),
		zap.Int("newTasks", added),
	)
	return found, nil
}

func (m *Manager) setCount(acc common.Address, n int) {
	m.mu.Lock()
	m.counts[acc] = n
	total := 0
	for _, c := range m.counts {
		total += c
	}
	m.mu.Unlock()

	m.metrics.SetScheduled(total)
	m.state.SetScheduled(total)
}

// Stop halts discovery and all schedulers. Running cycles get until ctx
// ends to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	scheds := make([]*Scheduler, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		scheds = append(scheds, s)
	}
	m.mu.Unlock()

	m.state.SetReady(false)

	var firstErr error
	for _, s := range scheds {
		if err := s.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if cancel != nil {
		cancel()
		<-done
	}
	return firstErr
}
