package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

const testRouter = "0x00000000000000000000000000000000000000cc"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PRIVATE_KEY", "0xabc, 0xdef")
	t.Setenv("RPC_URL", "http://localhost:8545")
	t.Setenv("VENUE_URL", "http://venue/")
	t.Setenv("ORACLE_URL", "http://oracle")
	t.Setenv("ROUTER_ADDRESS", testRouter)
	t.Setenv("CONFIG_FILE", "")
}

func TestNewConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"0xabc", "0xdef"}, cfg.PrivateKeys)
	assert.Equal(t, "http://venue", cfg.VenueURL)
	assert.Equal(t, NetworkTestnet, cfg.NetworkType)
	assert.Equal(t, int64(5), cfg.Gas.MarginPct)
	assert.Nil(t, cfg.Gas.MaxFeePerGas)

	tr := cfg.Trading
	assert.Equal(t, 3000*time.Second, tr.AvgInterval)
	assert.Equal(t, 30*time.Second, tr.MinInterval)
	assert.Equal(t, 30*time.Minute, tr.DiscoveryInterval)
	assert.Equal(t, 10000.0, tr.MaxRisk)
	assert.Equal(t, 1000.0, tr.RiskLevel)
	assert.Equal(t, int64(1000), tr.MaxTradeSize)
	assert.Equal(t, 5.0, tr.XFactor)
	assert.Equal(t, 15.0, tr.YFactor)
	assert.Equal(t, 10.0, tr.ZFactor)
	assert.Equal(t, 0.6, tr.PX1)
	assert.Equal(t, 0.75, tr.PX2)
	assert.Equal(t, 10, tr.QuoteAttempts)
	assert.Equal(t, SizingProceed, tr.SizingExhaustedPolicy)
	assert.Equal(t, 3, tr.SubmitAttempts)
	assert.Equal(t, 5*time.Second, tr.RetryBackoff)
	assert.Equal(t, 3*time.Minute, tr.Deadline)
	assert.Equal(t, 30*time.Second, cfg.Venue.CallTimeout)
}

func TestNewConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("NETWORK_TYPE", "MAINNET")
	t.Setenv("MARKET_IDS", " M1 ,m2,")
	t.Setenv("FUTURE_IDS", "F1")
	t.Setenv("TRADE_AVERAGE_INTERVAL", "10")
	t.Setenv("TRADE_SIZING_EXHAUSTED_POLICY", "Abort")
	t.Setenv("MAX_FEE_PER_GAS", "1.5")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(10), cfg.Gas.MarginPct)
	assert.Equal(t, []string{"m1", "m2"}, cfg.Trading.MarketIDs)
	assert.Equal(t, []string{"f1"}, cfg.Trading.FutureIDs)
	assert.Equal(t, SizingAbort, cfg.Trading.SizingExhaustedPolicy)
	assert.Equal(t, big.NewInt(1_500_000_000), cfg.Gas.MaxFeePerGas)
	// 10s average is below the 30s floor
	assert.Equal(t, 30*time.Second, cfg.Trading.EffectiveAvgInterval())
}

func TestNewConfigFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("TRADE_MAX_SIZE: 5000\ntrade_px_1: 0.7\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cfg.Trading.MaxTradeSize)
	assert.Equal(t, 0.7, cfg.Trading.PX1)
}

func TestNewConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no private key", env: map[string]string{"PRIVATE_KEY": ""}},
		{name: "no rpc", env: map[string]string{"RPC_URL": ""}},
		{name: "bad router", env: map[string]string{"ROUTER_ADDRESS": "router"}},
		{name: "unknown network", env: map[string]string{"NETWORK_TYPE": "devnet"}},
		{name: "probability out of range", env: map[string]string{"TRADE_PX_2": "1.5"}},
		{name: "unknown sizing policy", env: map[string]string{"TRADE_SIZING_EXHAUSTED_POLICY": "retry"}},
		{name: "risk level above max risk", env: map[string]string{"TRADE_RISK_LEVEL": "20000"}},
		{name: "zero trade size", env: map[string]string{"TRADE_MAX_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestModuleProvidesConfig(t *testing.T) {
	setRequired(t)

	var cfg *Config
	app := fxtest.New(t, Module(), fx.Populate(&cfg))
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://oracle", cfg.OracleURL)
}
