package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"stablecore/crypto"
	"stablecore/native/stable"
	"stablecore/storage"
)

func testAddress(t *testing.T, fill byte) crypto.Address {
	t.Helper()
	raw := make([]byte, crypto.AddressLength)
	for i := range raw {
		raw[i] = fill
	}
	return crypto.MustNewAddress(raw)
}

func TestPositionStoreRoundTrip(t *testing.T) {
	store, err := NewPositionStore(storage.NewMemDB())
	require.NoError(t, err)

	addr := testAddress(t, 0x42)
	position := &stable.Position{
		Address: addr,
		Collateral: map[string]*big.Int{
			"WETH": big.NewInt(5_000),
			"WBTC": big.NewInt(7),
		},
		DebtMinted: big.NewInt(1_200),
	}
	require.NoError(t, store.PutPosition(position))

	loaded, err := store.GetPosition(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.Address.Equal(addr))
	require.Equal(t, 0, loaded.DebtMinted.Cmp(big.NewInt(1_200)))
	require.Equal(t, 0, loaded.CollateralAmount("WETH").Cmp(big.NewInt(5_000)))
	require.Equal(t, 0, loaded.CollateralAmount("WBTC").Cmp(big.NewInt(7)))
}

func TestPositionStoreMissingAddress(t *testing.T) {
	store, err := NewPositionStore(storage.NewMemDB())
	require.NoError(t, err)

	loaded, err := store.GetPosition(testAddress(t, 0x01))
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestNewPositionStoreRequiresDatabase(t *testing.T) {
	_, err := NewPositionStore(nil)
	require.Error(t, err)
}
