package stable

import "math/big"

const moduleName = "stable"

const (
	// LiquidationThresholdPct is the percentage of collateral value counted
	// toward solvency.
	LiquidationThresholdPct = 50
	// LiquidationPrecision is the divisor applied to percentage constants.
	LiquidationPrecision = 100
	// LiquidationBonusPct is the flat percentage bonus a liquidator receives
	// on seized collateral, relative to the covered debt's collateral value.
	LiquidationBonusPct = 10
)

var (
	// precision is the fixed-point scale shared by all monetary amounts.
	precision = big.NewInt(1_000_000_000_000_000_000)
	// oracleScaleAdjust lifts 1e8-scaled oracle prices to the 1e18 scale.
	oracleScaleAdjust = big.NewInt(10_000_000_000)
	// minHealthFactor is the pass/fail solvency boundary: a factor of exactly
	// 1.0 in fixed point passes.
	minHealthFactor = new(big.Int).Set(precision)
	// maxHealthFactor is reported for positions with no debt.
	maxHealthFactor = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	liquidationThreshold = big.NewInt(LiquidationThresholdPct)
	liquidationPrecision = big.NewInt(LiquidationPrecision)
	liquidationBonus     = big.NewInt(LiquidationBonusPct)
)

// Params exposes the fixed protocol constants over the query surface.
type Params struct {
	LiquidationThresholdPct uint64
	LiquidationPrecision    uint64
	LiquidationBonusPct     uint64
	MinHealthFactor         *big.Int
	Precision               *big.Int
	OracleScaleAdjust       *big.Int
}

// DefaultParams returns a copy of the protocol constants.
func DefaultParams() Params {
	return Params{
		LiquidationThresholdPct: LiquidationThresholdPct,
		LiquidationPrecision:    LiquidationPrecision,
		LiquidationBonusPct:     LiquidationBonusPct,
		MinHealthFactor:         new(big.Int).Set(minHealthFactor),
		Precision:               new(big.Int).Set(precision),
		OracleScaleAdjust:       new(big.Int).Set(oracleScaleAdjust),
	}
}
