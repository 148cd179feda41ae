package stable

import (
	"math/big"

	"stablecore/crypto"
)

// CollateralBalance returns the caller's recorded balance for the registered
// asset. Looking up an unregistered symbol fails distinctly from a zero
// balance.
func (e *Engine) CollateralBalance(addr crypto.Address, symbol string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	asset, err := e.collateral(symbol)
	if err != nil {
		return nil, err
	}
	position, err := e.position(addr)
	if err != nil {
		return nil, err
	}
	return position.CollateralAmount(asset.Symbol), nil
}

// TotalDebt returns the stable units minted against the account. Accounts
// that never interacted with the engine report zero.
func (e *Engine) TotalDebt(addr crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	position, err := e.position(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(position.DebtMinted), nil
}

// CollateralValueUSD values the account's full collateral basket in
// 1e18-scaled USD using the registered price feeds.
func (e *Engine) CollateralValueUSD(addr crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	position, err := e.position(addr)
	if err != nil {
		return nil, err
	}
	return e.positionCollateralValue(position)
}

// HealthFactor reports the account's solvency margin. Zero-debt accounts
// report the maximum representable factor without consulting any feed.
func (e *Engine) HealthFactor(addr crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	position, err := e.position(addr)
	if err != nil {
		return nil, err
	}
	if position.DebtMinted.Sign() == 0 {
		return new(big.Int).Set(maxHealthFactor), nil
	}
	collateralValue, err := e.positionCollateralValue(position)
	if err != nil {
		return nil, err
	}
	return healthFactor(position.DebtMinted, collateralValue), nil
}

// CollateralAssets lists the registered collateral symbols in construction
// order.
func (e *Engine) CollateralAssets() []string {
	if e == nil {
		return nil
	}
	symbols := make([]string, 0, len(e.assets))
	for _, asset := range e.assets {
		symbols = append(symbols, asset.Symbol)
	}
	return symbols
}

// Params returns the fixed protocol constants.
func (e *Engine) Params() Params {
	return DefaultParams()
}
