package stable

import "math/big"

// usdValue converts a token amount into its 1e18-scaled USD value using a
// 1e8-scaled oracle price.
func usdValue(price, amount *big.Int) *big.Int {
	value := new(big.Int).Mul(price, oracleScaleAdjust)
	value.Mul(value, amount)
	return value.Quo(value, precision)
}

// tokenAmountFromUsd is the algebraic inverse of usdValue: it converts a
// 1e18-scaled USD amount into token units at the given 1e8-scaled price.
func tokenAmountFromUsd(price, usd *big.Int) *big.Int {
	amount := new(big.Int).Mul(usd, precision)
	return amount.Quo(amount, new(big.Int).Mul(price, oracleScaleAdjust))
}

// healthFactor expresses a position's solvency margin in 1e18 fixed point.
// Zero debt reports the maximum representable factor: no debt cannot be
// broken, regardless of collateral. The liquidation threshold percentage is
// applied twice, so the effective minimum collateralization for a factor of
// 1.0 is (LiquidationPrecision/LiquidationThresholdPct)^2.
func healthFactor(totalDebt, collateralValueUSD *big.Int) *big.Int {
	if totalDebt == nil || totalDebt.Sign() == 0 {
		return new(big.Int).Set(maxHealthFactor)
	}
	adjusted := new(big.Int).Mul(collateralValueUSD, liquidationThreshold)
	adjusted.Quo(adjusted, liquidationPrecision)
	adjusted.Mul(adjusted, liquidationThreshold)
	adjusted.Quo(adjusted, liquidationPrecision)
	factor := adjusted.Mul(adjusted, precision)
	return factor.Quo(factor, totalDebt)
}

// liquidationBonusAmount returns the flat bonus collateral granted on top of
// the covered-debt token amount.
func liquidationBonusAmount(tokenAmount *big.Int) *big.Int {
	bonus := new(big.Int).Mul(tokenAmount, liquidationBonus)
	return bonus.Quo(bonus, liquidationPrecision)
}
