package token

import (
	"errors"
	"math/big"
	"testing"

	"stablecore/core/events"
	"stablecore/crypto"
)

type recordingEmitter struct {
	seen []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) {
	r.seen = append(r.seen, evt)
}

func TestStableUnitOwnership(t *testing.T) {
	unit := NewStableUnit("SCU", nil)
	engine := testAddr(0x01)
	intruder := testAddr(0x02)

	if err := unit.TransferOwnership(crypto.Address{}); !errors.Is(err, errNilRecipient) {
		t.Fatalf("expected null owner rejected, got %v", err)
	}
	if err := unit.TransferOwnership(engine); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if !unit.Owner().Equal(engine) {
		t.Fatalf("expected owner %s, got %s", engine, unit.Owner())
	}
	if err := unit.TransferOwnership(intruder); !errors.Is(err, errOwnerSet) {
		t.Fatalf("expected second transfer rejected, got %v", err)
	}
}

func TestStableUnitMintGating(t *testing.T) {
	unit := NewStableUnit("SCU", nil)
	engine := testAddr(0x01)
	intruder := testAddr(0x02)
	holder := testAddr(0x03)

	if err := unit.Mint(engine, holder, big.NewInt(100)); !errors.Is(err, errNoOwner) {
		t.Fatalf("expected mint before ownership rejected, got %v", err)
	}
	if err := unit.TransferOwnership(engine); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := unit.Mint(intruder, holder, big.NewInt(100)); !errors.Is(err, errNotOwner) {
		t.Fatalf("expected non-owner mint rejected, got %v", err)
	}
	if err := unit.Mint(engine, crypto.Address{}, big.NewInt(100)); !errors.Is(err, errNilRecipient) {
		t.Fatalf("expected null recipient rejected, got %v", err)
	}
	if err := unit.Mint(engine, holder, big.NewInt(0)); !errors.Is(err, errInvalidAmount) {
		t.Fatalf("expected zero amount rejected, got %v", err)
	}

	if err := unit.Mint(engine, holder, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := unit.BalanceOf(holder); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected balance 100, got %s", got)
	}
	if got := unit.TotalSupply(); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected supply 100, got %s", got)
	}
}

func TestStableUnitBurn(t *testing.T) {
	unit := NewStableUnit("SCU", nil)
	engine := testAddr(0x01)
	intruder := testAddr(0x02)
	if err := unit.TransferOwnership(engine); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := unit.Mint(engine, engine, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := unit.Burn(intruder, big.NewInt(10)); !errors.Is(err, errNotOwner) {
		t.Fatalf("expected non-owner burn rejected, got %v", err)
	}
	if err := unit.Burn(engine, big.NewInt(200)); !errors.Is(err, errBurnExceeds) {
		t.Fatalf("expected over-burn rejected, got %v", err)
	}
	if err := unit.Burn(engine, big.NewInt(40)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := unit.BalanceOf(engine); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected balance 60, got %s", got)
	}
	if got := unit.TotalSupply(); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected supply 60, got %s", got)
	}
}

func TestStableUnitSupplyEvents(t *testing.T) {
	emitter := &recordingEmitter{}
	unit := NewStableUnit("SCU", emitter)
	engine := testAddr(0x01)
	if err := unit.TransferOwnership(engine); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := unit.Mint(engine, engine, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := unit.Burn(engine, big.NewInt(30)); err != nil {
		t.Fatalf("burn: %v", err)
	}

	if len(emitter.seen) != 2 {
		t.Fatalf("expected 2 supply events, got %d", len(emitter.seen))
	}
	mintEvt, ok := emitter.seen[0].(events.TokenSupply)
	if !ok {
		t.Fatalf("expected TokenSupply event, got %T", emitter.seen[0])
	}
	if mintEvt.Reason != events.SupplyReasonMint || mintEvt.Delta.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected mint event: %+v", mintEvt)
	}
	burnEvt, ok := emitter.seen[1].(events.TokenSupply)
	if !ok {
		t.Fatalf("expected TokenSupply event, got %T", emitter.seen[1])
	}
	if burnEvt.Reason != events.SupplyReasonBurn || burnEvt.Delta.Cmp(big.NewInt(-30)) != 0 {
		t.Fatalf("unexpected burn event: %+v", burnEvt)
	}
	if burnEvt.Total.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("expected supply 70 after burn, got %s", burnEvt.Total)
	}
}
