package config

import (
	"math"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"

	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"

	SizingProceed = "proceed"
	SizingAbort   = "abort"
)

// Config ...
type Config struct {
	Strategy    string
	NetworkType string
	RPCURL      string
	VenueURL    string
	OracleURL   string
	Router      string
	PrivateKeys []string
	LogLevel    string
	DB          string

	Service struct {
		HTTPAddr string
	}
	Telegram struct {
		Token  string
		ChatID int64
	}
	Jaeger struct {
		Host string
		Port int
	}

	Trading TradingConfig
	Gas     GasConfig
	Venue   VenueConfig
}

type TradingConfig struct {
	MarketIDs []string
	FutureIDs []string

	// Average pause between two trade attempts of one future.
	AvgInterval       time.Duration
	MinInterval       time.Duration
	DiscoveryInterval time.Duration

	// Flat limits in asset units, scaled by time to expiry at decision time.
	MaxRisk   float64
	RiskLevel float64
	// Max notional [asset units]
	MaxTradeSize   int64
	MaxMarginInUse int64

	// Rate deviation factors, basis points.
	XFactor float64
	YFactor float64
	ZFactor float64

	PX1 float64
	PX2 float64

	QuoteAttempts         int
	SizingExhaustedPolicy string
	SubmitAttempts        int
	RetryBackoff          time.Duration
	Deadline              time.Duration
	MaxConcurrentCycles   int
}

type GasConfig struct {
	MaxGasLimit  uint64
	MaxFeePerGas *big.Int // wei, nil = venue suggestion
	MarginPct    int64
}

type VenueConfig struct {
	CallTimeout time.Duration
	RPS         float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strategy_type", "default")
	v.SetDefault("network_type", NetworkTestnet)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("jaeger_port", 6831)

	v.SetDefault("trade_average_interval", 3000)
	v.SetDefault("trade_min_interval", 30)
	v.SetDefault("trade_discovery_interval", "30m")
	v.SetDefault("trade_max_risk", 10000)
	v.SetDefault("trade_max_size", 1000)
	v.SetDefault("trade_max_margin_in_use", 0)
	v.SetDefault("trade_risk_level", 1000)
	v.SetDefault("trade_x_factor", 5)
	v.SetDefault("trade_y_factor", 15)
	v.SetDefault("trade_z_factor", 10)
	v.SetDefault("trade_px_1", 0.6)
	v.SetDefault("trade_px_2", 0.75)
	v.SetDefault("trade_quote_attempts", 10)
	v.SetDefault("trade_sizing_exhausted_policy", SizingProceed)
	v.SetDefault("trade_submit_attempts", 3)
	v.SetDefault("trade_retry_backoff", "5s")
	v.SetDefault("trade_deadline", "3m")
	v.SetDefault("trade_max_concurrent_cycles", 4)

	v.SetDefault("venue_call_timeout", "30s")
	v.SetDefault("venue_rps", 5)
	v.SetDefault("max_gas_limit", 0)
	v.SetDefault("max_fee_per_gas", 0)
	v.SetDefault("gas_margin_pct", 0)
}

// NewConfig reads .env, the optional YAML file from CONFIG_FILE and the
// environment, in increasing priority.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv(configFilePathENV); path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, errors.Wrap(err, "merge config file")
		}
	}

	return fromViper(v)
}

func readFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrapf(err, "decode config file %s", path)
	}
	out := make(map[string]any, len(values))
	for k, val := range values {
		out[strings.ToLower(k)] = val
	}
	return out, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Strategy:    v.GetString("strategy_type"),
		NetworkType: strings.ToLower(v.GetString("network_type")),
		RPCURL:      v.GetString("rpc_url"),
		VenueURL:    strings.TrimRight(v.GetString("venue_url"), "/"),
		OracleURL:   strings.TrimRight(v.GetString("oracle_url"), "/"),
		Router:      v.GetString("router_address"),
		PrivateKeys: parseStringArray(v.GetString("private_key")),
		LogLevel:    v.GetString("log_level"),
		DB:          v.GetString("database_dsn"),
	}
	cfg.Service.HTTPAddr = v.GetString("http_addr")
	cfg.Telegram.Token = v.GetString("telegram_token")
	cfg.Telegram.ChatID = v.GetInt64("telegram_chat_id")
	cfg.Jaeger.Host = v.GetString("jaeger_host")
	cfg.Jaeger.Port = v.GetInt("jaeger_port")

	cfg.Trading = TradingConfig{
		MarketIDs:             parseStringArray(v.GetString("market_ids")),
		FutureIDs:             parseStringArray(v.GetString("future_ids")),
		AvgInterval:           time.Duration(v.GetInt64("trade_average_interval")) * time.Second,
		MinInterval:           time.Duration(v.GetInt64("trade_min_interval")) * time.Second,
		DiscoveryInterval:     v.GetDuration("trade_discovery_interval"),
		MaxRisk:               v.GetFloat64("trade_max_risk"),
		RiskLevel:             v.GetFloat64("trade_risk_level"),
		MaxTradeSize:          v.GetInt64("trade_max_size"),
		MaxMarginInUse:        v.GetInt64("trade_max_margin_in_use"),
		XFactor:               v.GetFloat64("trade_x_factor"),
		YFactor:               v.GetFloat64("trade_y_factor"),
		ZFactor:               v.GetFloat64("trade_z_factor"),
		PX1:                   v.GetFloat64("trade_px_1"),
		PX2:                   v.GetFloat64("trade_px_2"),
		QuoteAttempts:         v.GetInt("trade_quote_attempts"),
		SizingExhaustedPolicy: strings.ToLower(v.GetString("trade_sizing_exhausted_policy")),
		SubmitAttempts:        v.GetInt("trade_submit_attempts"),
		RetryBackoff:          v.GetDuration("trade_retry_backoff"),
		Deadline:              v.GetDuration("trade_deadline"),
		MaxConcurrentCycles:   v.GetInt("trade_max_concurrent_cycles"),
	}

	cfg.Gas = GasConfig{
		MaxGasLimit: v.GetUint64("max_gas_limit"),
		MarginPct:   v.GetInt64("gas_margin_pct"),
	}
	if gwei := v.GetFloat64("max_fee_per_gas"); gwei > 0 {
		wei, _ := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1e9)).Int(nil)
		cfg.Gas.MaxFeePerGas = wei
	}
	if cfg.Gas.MarginPct <= 0 {
		cfg.Gas.MarginPct = 10
		if cfg.NetworkType == NetworkTestnet {
			cfg.Gas.MarginPct = 5
		}
	}

	cfg.Venue = VenueConfig{
		CallTimeout: v.GetDuration("venue_call_timeout"),
		RPS:         v.GetFloat64("venue_rps"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the bot cannot start with.
func (c *Config) Validate() error {
	if len(c.PrivateKeys) == 0 {
		return errors.New("no private key provided, set PRIVATE_KEY")
	}
	if c.RPCURL == "" {
		return errors.New("RPC_URL is required")
	}
	if c.VenueURL == "" {
		return errors.New("VENUE_URL is required")
	}
	if c.OracleURL == "" {
		return errors.New("ORACLE_URL is required")
	}
	if c.Venue.CallTimeout <= 0 {
		return errors.New("VENUE_CALL_TIMEOUT must be > 0")
	}
	if !common.IsHexAddress(c.Router) {
		return errors.Errorf("ROUTER_ADDRESS %q is not an address", c.Router)
	}
	if c.NetworkType != NetworkTestnet && c.NetworkType != NetworkMainnet {
		return errors.Errorf("unknown NETWORK_TYPE %q", c.NetworkType)
	}

	t := c.Trading
	if t.MaxTradeSize <= 0 {
		return errors.New("TRADE_MAX_SIZE must be > 0")
	}
	if t.MinInterval <= 0 {
		return errors.New("TRADE_MIN_INTERVAL must be > 0")
	}
	if t.PX1 < 0 || t.PX1 > 1 || t.PX2 < 0 || t.PX2 > 1 {
		return errors.New("TRADE_PX_1 and TRADE_PX_2 must be within [0, 1]")
	}
	if t.QuoteAttempts <= 0 || t.SubmitAttempts <= 0 {
		return errors.New("TRADE_QUOTE_ATTEMPTS and TRADE_SUBMIT_ATTEMPTS must be > 0")
	}
	if t.SizingExhaustedPolicy != SizingProceed && t.SizingExhaustedPolicy != SizingAbort {
		return errors.Errorf("unknown TRADE_SIZING_EXHAUSTED_POLICY %q", t.SizingExhaustedPolicy)
	}
	if t.MaxConcurrentCycles <= 0 {
		return errors.New("TRADE_MAX_CONCURRENT_CYCLES must be > 0")
	}
	if math.IsNaN(t.MaxRisk) || t.MaxRisk < t.RiskLevel {
		return errors.New("TRADE_MAX_RISK must be >= TRADE_RISK_LEVEL")
	}
	return nil
}

// EffectiveAvgInterval clamps the average interval to the configured floor.
func (t TradingConfig) EffectiveAvgInterval() time.Duration {
	if t.AvgInterval < t.MinInterval {
		return t.MinInterval
	}
	return t.AvgInterval
}

func parseStringArray(value string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
