package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"stablecore/crypto"
	"stablecore/native/stable"
	"stablecore/storage"
)

var errNilDatabase = errors.New("state: database not configured")

var positionPrefix = []byte("stable/position/")

// storedPosition is the persisted JSON layout for a position. Addresses are
// stored as bech32 strings so records remain inspectable with plain tooling.
type storedPosition struct {
	Address    string              `json:"address"`
	Collateral map[string]*big.Int `json:"collateral,omitempty"`
	DebtMinted *big.Int            `json:"debtMinted"`
}

// PositionStore persists engine positions in a key-value database. It
// implements the persistence surface the stable engine consumes.
type PositionStore struct {
	db storage.Database
}

// NewPositionStore wraps the provided database.
func NewPositionStore(db storage.Database) (*PositionStore, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	return &PositionStore{db: db}, nil
}

func positionKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), positionPrefix...), addr.Bytes()...)
}

// GetPosition loads the stored position for the address. Unknown addresses
// return nil so the engine can materialize a zero position.
func (s *PositionStore) GetPosition(addr crypto.Address) (*stable.Position, error) {
	if s == nil || s.db == nil {
		return nil, errNilDatabase
	}
	raw, err := s.db.Get(positionKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedPosition
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode position: %w", err)
	}
	decoded, err := crypto.DecodeAddress(stored.Address)
	if err != nil {
		return nil, fmt.Errorf("state: decode position address: %w", err)
	}
	position := &stable.Position{
		Address:    decoded,
		Collateral: stored.Collateral,
		DebtMinted: stored.DebtMinted,
	}
	if position.Collateral == nil {
		position.Collateral = make(map[string]*big.Int)
	}
	if position.DebtMinted == nil {
		position.DebtMinted = big.NewInt(0)
	}
	return position, nil
}

// PutPosition persists the position keyed by its address bytes.
func (s *PositionStore) PutPosition(position *stable.Position) error {
	if s == nil || s.db == nil {
		return errNilDatabase
	}
	if position == nil {
		return errors.New("state: nil position")
	}
	stored := storedPosition{
		Address:    position.Address.String(),
		Collateral: position.Collateral,
		DebtMinted: position.DebtMinted,
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("state: encode position: %w", err)
	}
	return s.db.Put(positionKey(position.Address), raw)
}
