package runner

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rate_bot/internal/models"
)

func discoveryMarkets() []models.Market {
	return []models.Market{
		{
			Descriptor: models.MarketDescriptor{ID: "M1"},
			Futures:    []models.Future{{ID: "f1"}, {ID: "f2"}},
		},
		{
			Descriptor: models.MarketDescriptor{ID: "m2"},
			Futures:    []models.Future{{ID: "f3"}},
		},
	}
}

func newTestManager(v Venue, sel Selection, accounts ...string) (*Manager, *fakeMetrics, *fakeState) {
	traders := make([]*Trader, 0, len(accounts))
	for _, a := range accounts {
		traders = append(traders, NewTrader(common.HexToAddress(a), TraderDeps{Log: zap.NewNop()}))
	}
	m, st := &fakeMetrics{}, &fakeState{}
	mgr := NewManager(v, traders, ManagerConfig{
		Selection:           sel,
		AvgInterval:         time.Hour,
		MaxConcurrentCycles: 2,
	}, m, st, zap.NewNop())
	return mgr, m, st
}

func TestManagerStartSchedulesSelectedFutures(t *testing.T) {
	v := &fakeVenue{markets: discoveryMarkets()}
	mgr, metrics, state := newTestManager(v, Selection{MarketIDs: []string{"m1"}}, "0xaa", "0xbb")

	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Stop(context.Background()) })

	assert.True(t, state.Ready())
	assert.Equal(t, 4, metrics.scheduled)
	for _, s := range mgr.schedulers {
		assert.True(t, s.Tracked("f1"))
		assert.True(t, s.Tracked("f2"))
		assert.False(t, s.Tracked("f3"))
	}

	// a second pass adds nothing new
	n, err := mgr.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, metrics.scheduled)
}

func TestManagerFutureFilter(t *testing.T) {
	v := &fakeVenue{markets: discoveryMarkets()}
	mgr, metrics, _ := newTestManager(v, Selection{FutureIDs: []string{"f3"}}, "0xaa")

	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Stop(context.Background()) })

	assert.Equal(t, 1, metrics.scheduled)
}

func TestManagerStartFailsWithoutFutures(t *testing.T) {
	v := &fakeVenue{markets: discoveryMarkets()}
	mgr, _, state := newTestManager(v, Selection{FutureIDs: []string{"unknown"}}, "0xaa")

	err := mgr.Start(context.Background())
	require.Error(t, err)
	assert.False(t, state.Ready())
}

func TestManagerStopClearsReadiness(t *testing.T) {
	v := &fakeVenue{markets: discoveryMarkets()}
	mgr, _, state := newTestManager(v, Selection{}, "0xaa")

	require.NoError(t, mgr.Start(context.Background()))
	require.NoError(t, mgr.Stop(context.Background()))
	assert.False(t, state.Ready())
}

func TestSelection(t *testing.T) {
	sel := Selection{MarketIDs: []string{"m1"}}
	assert.True(t, sel.market("M1"))
	assert.False(t, sel.market("m2"))
	assert.True(t, sel.future("anything"))
}
