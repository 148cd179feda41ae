package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Collateral = []CollateralConfig{{Symbol: "WETH", Price: "2000"}}
	return cfg
}

func TestValidateAcceptsDefaultWithCollateral(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingCollateral(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateSymbols(t *testing.T) {
	cfg := validConfig()
	cfg.Collateral = append(cfg.Collateral, CollateralConfig{Symbol: "weth", Price: "1999"})
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsAmbiguousPriceSource(t *testing.T) {
	cfg := validConfig()
	cfg.Collateral[0].FeedURL = "https://prices.example.com/spot"
	require.Error(t, cfg.Validate())

	cfg.Collateral[0].FeedURL = ""
	cfg.Collateral[0].Price = ""
	require.Error(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().ListenAddress, cfg.ListenAddress)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
ListenAddress = ":9000"
DataDir = "/var/lib/stablecore"
StableSymbol = "SCU"

[[Collateral]]
Symbol = "WETH"
FeedURL = "https://prices.example.com/spot"

[[Collateral]]
Symbol = "WBTC"
Price = "64000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Len(t, cfg.Collateral, 2)
	require.Equal(t, "WETH", cfg.Collateral[0].Symbol)
}
