// Package config defines all configuration for the XEMM bot.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// sensitive fields overridable via XEMM_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	DryRun      bool              `mapstructure:"dry_run"`
	Symbol      string            `mapstructure:"symbol"`
	Strategy    StrategyConfig    `mapstructure:"strategy"`
	Pacifica    PacificaConfig    `mapstructure:"pacifica"`
	Hyperliquid HyperliquidConfig `mapstructure:"hyperliquid"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Observer    ObserverConfig    `mapstructure:"observer"`
	AuditDir    string            `mapstructure:"audit_dir"`
}

// StrategyConfig tunes the fee-aware XEMM opportunity evaluator.
//
//   - OrderNotionalUSD: target notional size of each resting maker order.
//   - PacificaMakerFeeBps / HyperliquidTakerFeeBps: fee schedule on each venue.
//   - ProfitRateBps: target profit baked into the ideal quote price.
//   - ProfitCancelThresholdBps: cancel the resting order once its recomputed
//     profit has drifted, in either direction, from the profit recorded at
//     placement time by more than this many bps.
//   - OrderRefreshIntervalSecs: cancel-and-requote an order once it has aged
//     past this, regardless of profit.
//   - PacificaRestPollIntervalSecs: cadence of the REST fill-detection backup
//     and position-delta tertiary channel.
//   - HyperliquidSlippage: max slippage (as a fraction, e.g. 0.003 = 0.3%)
//     tolerated on the hedge IOC order.
//   - AggLevel: Pacifica order-book aggregation level subscribed to on the WS feed.
//   - CancelGracePeriodSecs: minimum time after a cancel before a new order
//     may be placed, to avoid cancel/replace thrash.
//   - ReconcileCooldownSecs: minimum time after a hedge-failure reconciliation
//     before the evaluation loop resumes quoting.
type StrategyConfig struct {
	OrderNotionalUSD             float64       `mapstructure:"order_notional_usd"`
	PacificaMakerFeeBps          float64       `mapstructure:"pacifica_maker_fee_bps"`
	HyperliquidTakerFeeBps       float64       `mapstructure:"hyperliquid_taker_fee_bps"`
	ProfitRateBps                float64       `mapstructure:"profit_rate_bps"`
	ProfitCancelThresholdBps     float64       `mapstructure:"profit_cancel_threshold_bps"`
	OrderRefreshIntervalSecs     int           `mapstructure:"order_refresh_interval_secs"`
	PacificaRestPollIntervalSecs int           `mapstructure:"pacifica_rest_poll_interval_secs"`
	HyperliquidSlippage          float64       `mapstructure:"hyperliquid_slippage"`
	AggLevel                     int           `mapstructure:"agg_level"`
	CancelGracePeriodSecs        int           `mapstructure:"cancel_grace_period_secs"`
	MinHedgeNotionalUSD          float64       `mapstructure:"min_hedge_notional_usd"`
	ReconcileCooldownSecs        int           `mapstructure:"reconcile_cooldown_secs"`
	RefreshInterval              time.Duration `mapstructure:"-"` // derived from OrderRefreshIntervalSecs
	ReconcileCooldown            time.Duration `mapstructure:"-"` // derived from ReconcileCooldownSecs
}

// PacificaConfig holds the maker venue's connection and credential fields.
// ApiKey/Secret/Account are always loaded from environment, never from YAML.
type PacificaConfig struct {
	RestBaseURL string `mapstructure:"rest_base_url"`
	WSMarketURL string `mapstructure:"ws_market_url"`
	WSUserURL   string `mapstructure:"ws_user_url"`
	ApiKey      string `mapstructure:"-"`
	Secret      string `mapstructure:"-"`
	Account     string `mapstructure:"-"`
}

// HyperliquidConfig holds the hedge venue's connection and credential fields.
// PrivateKey/Account are always loaded from environment, never from YAML.
type HyperliquidConfig struct {
	RestBaseURL string `mapstructure:"rest_base_url"`
	WSURL       string `mapstructure:"ws_url"`
	Coin        string `mapstructure:"coin"`
	ChainID     int64  `mapstructure:"chain_id"`
	PrivateKey  string `mapstructure:"-"`
	Account     string `mapstructure:"-"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObserverConfig controls the read-only status HTTP surface: no dashboard UI,
// just /health and /status.
type ObserverConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads config from a YAML file with env var overrides.
// Credentials are never read from YAML: XEMM_PACIFICA_API_KEY,
// XEMM_PACIFICA_SECRET, XEMM_PACIFICA_ACCOUNT, XEMM_HYPERLIQUID_PRIVATE_KEY,
// XEMM_HYPERLIQUID_ACCOUNT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("XEMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Pacifica.ApiKey = os.Getenv("XEMM_PACIFICA_API_KEY")
	cfg.Pacifica.Secret = os.Getenv("XEMM_PACIFICA_SECRET")
	cfg.Pacifica.Account = os.Getenv("XEMM_PACIFICA_ACCOUNT")
	cfg.Hyperliquid.PrivateKey = os.Getenv("XEMM_HYPERLIQUID_PRIVATE_KEY")
	cfg.Hyperliquid.Account = os.Getenv("XEMM_HYPERLIQUID_ACCOUNT")

	if os.Getenv("XEMM_DRY_RUN") == "true" || os.Getenv("XEMM_DRY_RUN") == "1" {
		cfg.DryRun = true
	}

	cfg.Strategy.RefreshInterval = time.Duration(cfg.Strategy.OrderRefreshIntervalSecs) * time.Second
	if cfg.Strategy.ReconcileCooldownSecs == 0 {
		cfg.Strategy.ReconcileCooldownSecs = 30
	}
	cfg.Strategy.ReconcileCooldown = time.Duration(cfg.Strategy.ReconcileCooldownSecs) * time.Second
	if cfg.Hyperliquid.ChainID == 0 {
		cfg.Hyperliquid.ChainID = 42161 // Arbitrum, Hyperliquid's settlement chain
	}
	if cfg.Hyperliquid.Coin == "" {
		cfg.Hyperliquid.Coin = cfg.Symbol
	}
	if cfg.AuditDir == "" {
		cfg.AuditDir = "data/audit"
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Strategy.OrderNotionalUSD <= 0 {
		return fmt.Errorf("strategy.order_notional_usd must be > 0")
	}
	if c.Strategy.PacificaMakerFeeBps < 0 {
		return fmt.Errorf("strategy.pacifica_maker_fee_bps must be >= 0")
	}
	if c.Strategy.HyperliquidTakerFeeBps < 0 {
		return fmt.Errorf("strategy.hyperliquid_taker_fee_bps must be >= 0")
	}
	if c.Strategy.ProfitRateBps <= 0 {
		return fmt.Errorf("strategy.profit_rate_bps must be > 0")
	}
	if c.Strategy.ProfitCancelThresholdBps <= 0 {
		return fmt.Errorf("strategy.profit_cancel_threshold_bps must be > 0")
	}
	if c.Strategy.OrderRefreshIntervalSecs <= 0 {
		return fmt.Errorf("strategy.order_refresh_interval_secs must be > 0")
	}
	if c.Strategy.PacificaRestPollIntervalSecs <= 0 {
		return fmt.Errorf("strategy.pacifica_rest_poll_interval_secs must be > 0")
	}
	if c.Strategy.HyperliquidSlippage <= 0 || c.Strategy.HyperliquidSlippage >= 1 {
		return fmt.Errorf("strategy.hyperliquid_slippage must be in (0, 1)")
	}
	if c.Strategy.CancelGracePeriodSecs < 0 {
		return fmt.Errorf("strategy.cancel_grace_period_secs must be >= 0")
	}
	if c.Pacifica.RestBaseURL == "" {
		return fmt.Errorf("pacifica.rest_base_url is required")
	}
	if c.Hyperliquid.RestBaseURL == "" {
		return fmt.Errorf("hyperliquid.rest_base_url is required")
	}
	if c.Pacifica.ApiKey == "" || c.Pacifica.Secret == "" || c.Pacifica.Account == "" {
		return fmt.Errorf("pacifica credentials are required (set XEMM_PACIFICA_API_KEY, XEMM_PACIFICA_SECRET, XEMM_PACIFICA_ACCOUNT)")
	}
	if c.Hyperliquid.PrivateKey == "" || c.Hyperliquid.Account == "" {
		return fmt.Errorf("hyperliquid credentials are required (set XEMM_HYPERLIQUID_PRIVATE_KEY, XEMM_HYPERLIQUID_ACCOUNT)")
	}
	return nil
}
