package stable

import (
	"math/big"
	"testing"
)

func price(usd int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(usd), big.NewInt(100_000_000))
}

func TestUsdValue(t *testing.T) {
	cases := []struct {
		name   string
		price  *big.Int
		amount *big.Int
		want   *big.Int
	}{
		{"one token at 2000", price(2000), units(1), units(2000)},
		{"fractional amount", price(2000), mustInt(t, "100000000000000000"), units(200)},
		{"zero amount", price(2000), big.NewInt(0), big.NewInt(0)},
		{"cheap asset", price(1), units(15), units(15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usdValue(tc.price, tc.amount); got.Cmp(tc.want) != 0 {
				t.Fatalf("usdValue(%s, %s) = %s, want %s", tc.price, tc.amount, got, tc.want)
			}
		})
	}
}

func TestTokenAmountFromUsd(t *testing.T) {
	// Covering 100 USD-units at a 2000 USD price buys 0.05 of the token.
	got := tokenAmountFromUsd(price(2000), units(100))
	if want := mustInt(t, "50000000000000000"); got.Cmp(want) != 0 {
		t.Fatalf("tokenAmountFromUsd = %s, want %s", got, want)
	}
}

func TestTokenAmountRoundTrip(t *testing.T) {
	amount := mustInt(t, "1234500000000000000")
	value := usdValue(price(1850), amount)
	back := tokenAmountFromUsd(price(1850), value)
	if back.Cmp(amount) != 0 {
		t.Fatalf("round trip drifted: %s -> %s -> %s", amount, value, back)
	}
}

func TestLiquidationBonusAmount(t *testing.T) {
	got := liquidationBonusAmount(mustInt(t, "50000000000000000"))
	if want := mustInt(t, "5000000000000000"); got.Cmp(want) != 0 {
		t.Fatalf("bonus = %s, want %s", got, want)
	}
}

func TestHealthFactor(t *testing.T) {
	cases := []struct {
		name       string
		debt       *big.Int
		collateral *big.Int
		want       *big.Int
	}{
		{"zero debt", big.NewInt(0), units(1000), maxHealthFactor},
		{"nil debt", nil, units(1000), maxHealthFactor},
		{"exactly at minimum", units(100), units(400), units(1)},
		{"healthy", units(500), units(8000), units(4)},
		{"unhealthy", units(100), units(200), mustInt(t, "500000000000000000")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := healthFactor(tc.debt, tc.collateral)
			if got.Cmp(tc.want) != 0 {
				t.Fatalf("healthFactor(%s, %s) = %s, want %s", tc.debt, tc.collateral, got, tc.want)
			}
		})
	}
}
