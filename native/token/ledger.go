package token

import (
	"math/big"
	"strings"
	"sync"

	"stablecore/crypto"
)

// Ledger is an in-process fungible asset ledger. It implements the transfer
// surface the stable engine consumes: moves either happen in full or not at
// all, signalled by the boolean return.
type Ledger struct {
	mu          sync.RWMutex
	symbol      string
	balances    map[string]*big.Int
	totalSupply *big.Int
}

// NewLedger constructs an empty ledger for the provided asset symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:      strings.ToUpper(strings.TrimSpace(symbol)),
		balances:    make(map[string]*big.Int),
		totalSupply: big.NewInt(0),
	}
}

// Symbol returns the asset symbol the ledger tracks.
func (l *Ledger) Symbol() string {
	if l == nil {
		return ""
	}
	return l.symbol
}

// BalanceOf returns the holder's current balance. Unknown holders report zero.
func (l *Ledger) BalanceOf(addr crypto.Address) *big.Int {
	if l == nil {
		return big.NewInt(0)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if balance, ok := l.balances[string(addr.Bytes())]; ok {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

// TotalSupply returns the aggregate issued amount.
func (l *Ledger) TotalSupply() *big.Int {
	if l == nil {
		return big.NewInt(0)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupply)
}

// TransferFrom moves amount from one holder to another. A false return means
// no balance changed: nil or non-positive amounts, a null recipient, and
// insufficient balances are all rejected.
func (l *Ledger) TransferFrom(from, to crypto.Address, amount *big.Int) bool {
	if l == nil || amount == nil || amount.Sign() <= 0 || to.IsZero() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// move assumes the lock is held.
func (l *Ledger) move(from, to crypto.Address, amount *big.Int) bool {
	fromKey := string(from.Bytes())
	balance, ok := l.balances[fromKey]
	if !ok || balance.Cmp(amount) < 0 {
		return false
	}
	l.balances[fromKey] = new(big.Int).Sub(balance, amount)
	l.creditLocked(to, amount)
	return true
}

// Issue credits newly created units to the holder and grows total supply.
// Collateral ledgers use it to mirror balances bridged in at bootstrap.
func (l *Ledger) Issue(to crypto.Address, amount *big.Int) error {
	if l == nil {
		return errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if to.IsZero() {
		return errNilRecipient
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditLocked(to, amount)
	l.totalSupply = new(big.Int).Add(l.totalSupply, amount)
	return nil
}

// creditLocked assumes the lock is held.
func (l *Ledger) creditLocked(to crypto.Address, amount *big.Int) {
	toKey := string(to.Bytes())
	current, ok := l.balances[toKey]
	if !ok {
		current = big.NewInt(0)
	}
	l.balances[toKey] = new(big.Int).Add(current, amount)
}
