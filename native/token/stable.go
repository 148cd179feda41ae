package token

import (
	"errors"
	"math/big"

	"stablecore/core/events"
	"stablecore/crypto"
)

var (
	errNilLedger     = errors.New("token: ledger not configured")
	errInvalidAmount = errors.New("token: amount must be positive")
	errNilRecipient  = errors.New("token: recipient is the null identity")
	errNotOwner      = errors.New("token: caller is not the authorized minter")
	errOwnerSet      = errors.New("token: ownership already established")
	errNoOwner       = errors.New("token: ownership not established")
	errBurnExceeds   = errors.New("token: burn amount exceeds balance")
)

// StableUnit is the pegged asset's ledger. Mint and burn are gated to a single
// owner identity, handed over once at bootstrap; the owner is expected to be
// the collateral/debt engine.
type StableUnit struct {
	*Ledger
	owner    crypto.Address
	ownerSet bool
	emitter  events.Emitter
}

// NewStableUnit constructs the stable-unit ledger. Ownership starts
// unassigned; every mint or burn fails until TransferOwnership is called.
func NewStableUnit(symbol string, emitter events.Emitter) *StableUnit {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &StableUnit{Ledger: NewLedger(symbol), emitter: emitter}
}

// TransferOwnership establishes the single authorized minter. It can be
// performed exactly once and rejects the null identity.
func (s *StableUnit) TransferOwnership(owner crypto.Address) error {
	if s == nil {
		return errNilLedger
	}
	if owner.IsZero() {
		return errNilRecipient
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerSet {
		return errOwnerSet
	}
	s.owner = owner
	s.ownerSet = true
	return nil
}

// Owner returns the authorized minter identity.
func (s *StableUnit) Owner() crypto.Address {
	if s == nil {
		return crypto.Address{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Mint creates amount units for the recipient. Only the established owner may
// mint; the null identity can never receive.
func (s *StableUnit) Mint(caller, to crypto.Address, amount *big.Int) error {
	if s == nil {
		return errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if to.IsZero() {
		return errNilRecipient
	}
	s.mu.Lock()
	if err := s.requireOwnerLocked(caller); err != nil {
		s.mu.Unlock()
		return err
	}
	s.creditLocked(to, amount)
	s.totalSupply = new(big.Int).Add(s.totalSupply, amount)
	total := new(big.Int).Set(s.totalSupply)
	s.mu.Unlock()

	s.emitter.Emit(events.TokenSupply{
		Token:  s.symbol,
		Total:  total,
		Delta:  new(big.Int).Set(amount),
		Reason: events.SupplyReasonMint,
	})
	return nil
}

// Burn destroys amount units from the caller's own balance. Only the
// established owner may burn; because the engine pulls units into its own
// custody before burning, the owner is always burning its own holdings.
func (s *StableUnit) Burn(caller crypto.Address, amount *big.Int) error {
	if s == nil {
		return errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	s.mu.Lock()
	if err := s.requireOwnerLocked(caller); err != nil {
		s.mu.Unlock()
		return err
	}
	key := string(caller.Bytes())
	balance, ok := s.balances[key]
	if !ok || balance.Cmp(amount) < 0 {
		s.mu.Unlock()
		return errBurnExceeds
	}
	s.balances[key] = new(big.Int).Sub(balance, amount)
	s.totalSupply = new(big.Int).Sub(s.totalSupply, amount)
	total := new(big.Int).Set(s.totalSupply)
	s.mu.Unlock()

	s.emitter.Emit(events.TokenSupply{
		Token:  s.symbol,
		Total:  total,
		Delta:  new(big.Int).Neg(amount),
		Reason: events.SupplyReasonBurn,
	})
	return nil
}

// requireOwnerLocked assumes the lock is held.
func (s *StableUnit) requireOwnerLocked(caller crypto.Address) error {
	if !s.ownerSet {
		return errNoOwner
	}
	if !caller.Equal(s.owner) {
		return errNotOwner
	}
	return nil
}
