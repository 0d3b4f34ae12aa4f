// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trading TradingConfig `mapstructure:"trading"`
	Fusion  FusionConfig  `mapstructure:"fusion"`
	Market  MarketConfig  `mapstructure:"market"`
	News    NewsConfig    `mapstructure:"news"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TradingConfig holds ledger-related configuration.
type TradingConfig struct {
	StartingCash   float64 `mapstructure:"starting_cash"`
	CommissionRate float64 `mapstructure:"commission_rate"`
	SimulationMode bool    `mapstructure:"simulation_mode"` // force tradability regardless of exchange hours
}

// FusionConfig holds signal fusion configuration. The cut points and deltas
// are deliberately config values rather than literals at call sites.
type FusionConfig struct {
	Policy              string  `mapstructure:"policy"` // "threshold_delta", "confidence_threshold"
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds"`
	RSIOversold         float64 `mapstructure:"rsi_oversold"`
	RSIOverbought       float64 `mapstructure:"rsi_overbought"`
	RSIDelta            float64 `mapstructure:"rsi_delta"`
	MACDDelta           float64 `mapstructure:"macd_delta"`
	SentimentBullish    float64 `mapstructure:"sentiment_bullish"`
	SentimentBearish    float64 `mapstructure:"sentiment_bearish"`
	SentimentDelta      float64 `mapstructure:"sentiment_delta"`
	StrongBuyCutoff     float64 `mapstructure:"strong_buy_cutoff"`
	BuyCutoff           float64 `mapstructure:"buy_cutoff"`
	SellCutoff          float64 `mapstructure:"sell_cutoff"`
	StrongSellCutoff    float64 `mapstructure:"strong_sell_cutoff"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"` // confidence_threshold policy only
}

// MarketConfig holds exchange session configuration.
type MarketConfig struct {
	Timezone    string `mapstructure:"timezone"`
	OpenHour    int    `mapstructure:"open_hour"`
	OpenMinute  int    `mapstructure:"open_minute"`
	CloseHour   int    `mapstructure:"close_hour"`
	CloseMinute int    `mapstructure:"close_minute"`
}

// NewsConfig holds sentiment input configuration.
type NewsConfig struct {
	MaxHeadlines int `mapstructure:"max_headlines"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/inversor"
	}
	return filepath.Join(home, ".config", "inversor")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// Missing config is fine, defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading.starting_cash", 10000.0)
	v.SetDefault("trading.commission_rate", 0.0015)
	v.SetDefault("trading.simulation_mode", false)

	v.SetDefault("fusion.policy", "threshold_delta")
	v.SetDefault("fusion.cache_ttl_seconds", 60)
	v.SetDefault("fusion.rsi_oversold", 30.0)
	v.SetDefault("fusion.rsi_overbought", 70.0)
	v.SetDefault("fusion.rsi_delta", 20.0)
	v.SetDefault("fusion.macd_delta", 10.0)
	v.SetDefault("fusion.sentiment_bullish", 60.0)
	v.SetDefault("fusion.sentiment_bearish", 40.0)
	v.SetDefault("fusion.sentiment_delta", 15.0)
	v.SetDefault("fusion.strong_buy_cutoff", 70.0)
	v.SetDefault("fusion.buy_cutoff", 55.0)
	v.SetDefault("fusion.sell_cutoff", 45.0)
	v.SetDefault("fusion.strong_sell_cutoff", 30.0)
	v.SetDefault("fusion.confidence_threshold", 0.80)

	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.open_hour", 9)
	v.SetDefault("market.open_minute", 30)
	v.SetDefault("market.close_hour", 16)
	v.SetDefault("market.close_minute", 0)

	v.SetDefault("news.max_headlines", 8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INVERSOR_STARTING_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.StartingCash = f
		}
	}
	if v := os.Getenv("INVERSOR_COMMISSION_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.CommissionRate = f
		}
	}
	if v := os.Getenv("INVERSOR_SIMULATION_MODE"); v != "" {
		cfg.Trading.SimulationMode = v == "1" || v == "true"
	}
	if v := os.Getenv("INVERSOR_FUSION_POLICY"); v != "" {
		cfg.Fusion.Policy = v
	}
	if v := os.Getenv("INVERSOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.StartingCash <= 0 {
		return fmt.Errorf("starting_cash must be positive")
	}
	if c.Trading.CommissionRate < 0 || c.Trading.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1)")
	}
	if c.Fusion.Policy != "threshold_delta" && c.Fusion.Policy != "confidence_threshold" {
		return fmt.Errorf("invalid fusion policy: %s", c.Fusion.Policy)
	}
	if c.Fusion.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must be non-negative")
	}
	if c.Fusion.ConfidenceThreshold <= 0.5 || c.Fusion.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in (0.5, 1]")
	}
	if c.News.MaxHeadlines <= 0 {
		return fmt.Errorf("max_headlines must be positive")
	}
	if c.Market.OpenHour*60+c.Market.OpenMinute >= c.Market.CloseHour*60+c.Market.CloseMinute {
		return fmt.Errorf("market open must precede market close")
	}
	return nil
}
