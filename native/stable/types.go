package stable

import (
	"math/big"

	"stablecore/crypto"
	"stablecore/oracle"
)

// Asset is the transfer surface the engine requires from collateral tokens
// and the stable unit. A false return means no balance moved.
type Asset interface {
	TransferFrom(from, to crypto.Address, amount *big.Int) bool
}

// StableAuthority is the mint/burn capability the engine holds over the
// pegged asset. Both operations are expected to verify the caller identity.
type StableAuthority interface {
	Asset
	Mint(caller, to crypto.Address, amount *big.Int) error
	Burn(caller crypto.Address, amount *big.Int) error
}

// CollateralAsset binds a registered collateral symbol to its transfer handle
// and price feed. The registry is fixed at engine construction.
type CollateralAsset struct {
	Symbol string
	Token  Asset
	Feed   oracle.Feed
}

// Position maintains the collateral and debt balances for a single account.
// Balances spring into existence at zero on first reference; a fully repaid,
// fully withdrawn position is indistinguishable from one that never existed.
type Position struct {
	// Address is the unique account identifier the position belongs to.
	Address crypto.Address
	// Collateral records the deposited balance per registered asset symbol.
	Collateral map[string]*big.Int
	// DebtMinted stores the total stable units created against the position.
	DebtMinted *big.Int
}

// CollateralAmount returns the recorded balance for the symbol, defaulting to
// zero for assets the position never touched.
func (p *Position) CollateralAmount(symbol string) *big.Int {
	if p == nil || p.Collateral == nil {
		return big.NewInt(0)
	}
	if amount, ok := p.Collateral[symbol]; ok && amount != nil {
		return new(big.Int).Set(amount)
	}
	return big.NewInt(0)
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{Address: p.Address, Collateral: make(map[string]*big.Int, len(p.Collateral))}
	for symbol, amount := range p.Collateral {
		if amount != nil {
			clone.Collateral[symbol] = new(big.Int).Set(amount)
		}
	}
	if p.DebtMinted != nil {
		clone.DebtMinted = new(big.Int).Set(p.DebtMinted)
	}
	return clone
}
