package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// CollateralConfig wires one approved collateral asset. Exactly one price
// source must be set: FeedURL for a polled HTTP feed, or Price for a fixed
// operator-supplied quote (development networks).
type CollateralConfig struct {
	Symbol  string `toml:"Symbol"`
	FeedURL string `toml:"FeedURL"`
	Price   string `toml:"Price"`
}

// Config is the daemon configuration. Protocol constants are intentionally
// absent: they are fixed in code, not tunable per deployment.
type Config struct {
	ListenAddress         string             `toml:"ListenAddress"`
	DataDir               string             `toml:"DataDir"`
	StableSymbol          string             `toml:"StableSymbol"`
	LogFile               string             `toml:"LogFile"`
	LogMaxSizeMB          int                `toml:"LogMaxSizeMB"`
	LogMaxBackups         int                `toml:"LogMaxBackups"`
	OracleMaxAgeSeconds   uint64             `toml:"OracleMaxAgeSeconds"`
	OracleCacheTTLSeconds uint64             `toml:"OracleCacheTTLSeconds"`
	RateLimitPerSecond    int                `toml:"RateLimitPerSecond"`
	Collateral            []CollateralConfig `toml:"Collateral"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ListenAddress:         ":8546",
		DataDir:               "./data",
		StableSymbol:          "SCU",
		OracleMaxAgeSeconds:   3600,
		OracleCacheTTLSeconds: 15,
		RateLimitPerSecond:    50,
	}
}

// Load loads the configuration from the given path, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a working daemon.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required")
	}
	if strings.TrimSpace(c.StableSymbol) == "" {
		return fmt.Errorf("config: StableSymbol required")
	}
	if len(c.Collateral) == 0 {
		return fmt.Errorf("config: at least one collateral asset required")
	}
	seen := make(map[string]struct{}, len(c.Collateral))
	for i, asset := range c.Collateral {
		symbol := strings.ToUpper(strings.TrimSpace(asset.Symbol))
		if symbol == "" {
			return fmt.Errorf("config: collateral %d missing symbol", i)
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("config: duplicate collateral symbol %s", symbol)
		}
		seen[symbol] = struct{}{}
		feed := strings.TrimSpace(asset.FeedURL)
		price := strings.TrimSpace(asset.Price)
		if feed == "" && price == "" {
			return fmt.Errorf("config: collateral %s needs FeedURL or Price", symbol)
		}
		if feed != "" && price != "" {
			return fmt.Errorf("config: collateral %s has both FeedURL and Price", symbol)
		}
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("config: RateLimitPerSecond must not be negative")
	}
	return nil
}
