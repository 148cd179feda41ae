package token

import (
	"math/big"
	"testing"

	"stablecore/crypto"
)

func testAddr(b byte) crypto.Address {
	raw := make([]byte, crypto.AddressLength)
	raw[crypto.AddressLength-1] = b
	return crypto.MustNewAddress(raw)
}

func TestLedgerIssueAndBalance(t *testing.T) {
	ledger := NewLedger("weth")
	holder := testAddr(0x01)

	if got := ledger.Symbol(); got != "WETH" {
		t.Fatalf("expected normalized symbol WETH, got %q", got)
	}
	if err := ledger.Issue(holder, big.NewInt(100)); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := ledger.BalanceOf(holder); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected balance 100, got %s", got)
	}
	if got := ledger.TotalSupply(); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected supply 100, got %s", got)
	}
}

func TestLedgerIssueValidation(t *testing.T) {
	ledger := NewLedger("WETH")
	holder := testAddr(0x01)

	if err := ledger.Issue(holder, nil); err == nil {
		t.Fatal("expected nil amount rejected")
	}
	if err := ledger.Issue(holder, big.NewInt(0)); err == nil {
		t.Fatal("expected zero amount rejected")
	}
	if err := ledger.Issue(crypto.Address{}, big.NewInt(1)); err == nil {
		t.Fatal("expected null recipient rejected")
	}
}

func TestLedgerTransferFrom(t *testing.T) {
	ledger := NewLedger("WETH")
	from := testAddr(0x01)
	to := testAddr(0x02)
	if err := ledger.Issue(from, big.NewInt(100)); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !ledger.TransferFrom(from, to, big.NewInt(40)) {
		t.Fatal("expected transfer to succeed")
	}
	if got := ledger.BalanceOf(from); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected sender balance 60, got %s", got)
	}
	if got := ledger.BalanceOf(to); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("expected recipient balance 40, got %s", got)
	}

	if ledger.TransferFrom(from, to, big.NewInt(1000)) {
		t.Fatal("expected insufficient balance rejected")
	}
	if ledger.TransferFrom(from, crypto.Address{}, big.NewInt(1)) {
		t.Fatal("expected null recipient rejected")
	}
	if ledger.TransferFrom(from, to, nil) {
		t.Fatal("expected nil amount rejected")
	}
	if ledger.TransferFrom(from, to, big.NewInt(-1)) {
		t.Fatal("expected negative amount rejected")
	}
	// Failed moves must not disturb balances.
	if got := ledger.BalanceOf(from); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected sender balance unchanged, got %s", got)
	}
}

func TestLedgerBalanceCopies(t *testing.T) {
	ledger := NewLedger("WETH")
	holder := testAddr(0x01)
	if err := ledger.Issue(holder, big.NewInt(100)); err != nil {
		t.Fatalf("issue: %v", err)
	}
	balance := ledger.BalanceOf(holder)
	balance.SetInt64(0)
	if got := ledger.BalanceOf(holder); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected internal balance isolated from caller copy, got %s", got)
	}
}
