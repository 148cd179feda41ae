package events

import (
	"math/big"
	"strings"

	"stablecore/core/types"
	"stablecore/crypto"
)

const (
	// TypeCollateralDeposited is emitted when collateral enters engine custody.
	TypeCollateralDeposited = "stable.collateral_deposited"
	// TypeCollateralRedeemed is emitted when collateral leaves engine custody.
	TypeCollateralRedeemed = "stable.collateral_redeemed"
	// TypeStableMinted is emitted when new stable units are created against a position.
	TypeStableMinted = "stable.minted"
	// TypeStableBurned is emitted when stable units are destroyed to reduce a position's debt.
	TypeStableBurned = "stable.burned"
	// TypePositionLiquidated is emitted when a third party covers an unhealthy position's debt.
	TypePositionLiquidated = "stable.position_liquidated"
)

func normalizeAsset(asset string) string {
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed)
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// CollateralDeposited captures a successful collateral deposit.
type CollateralDeposited struct {
	Account crypto.Address
	Asset   string
	Amount  *big.Int
}

func (CollateralDeposited) EventType() string { return TypeCollateralDeposited }

// Event renders the structured deposit event for downstream consumers.
func (e CollateralDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeCollateralDeposited,
		Attributes: map[string]string{
			"account": e.Account.String(),
			"asset":   normalizeAsset(e.Asset),
			"amount":  amountString(e.Amount),
		},
	}
}

// CollateralRedeemed captures collateral returned to an account.
type CollateralRedeemed struct {
	Account crypto.Address
	Asset   string
	Amount  *big.Int
}

func (CollateralRedeemed) EventType() string { return TypeCollateralRedeemed }

func (e CollateralRedeemed) Event() *types.Event {
	return &types.Event{
		Type: TypeCollateralRedeemed,
		Attributes: map[string]string{
			"account": e.Account.String(),
			"asset":   normalizeAsset(e.Asset),
			"amount":  amountString(e.Amount),
		},
	}
}

// StableMinted captures stable units minted against a position.
type StableMinted struct {
	Account crypto.Address
	Amount  *big.Int
}

func (StableMinted) EventType() string { return TypeStableMinted }

func (e StableMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeStableMinted,
		Attributes: map[string]string{
			"account": e.Account.String(),
			"amount":  amountString(e.Amount),
		},
	}
}

// StableBurned captures stable units destroyed to reduce a position's debt.
type StableBurned struct {
	Account crypto.Address
	Amount  *big.Int
}

func (StableBurned) EventType() string { return TypeStableBurned }

func (e StableBurned) Event() *types.Event {
	return &types.Event{
		Type: TypeStableBurned,
		Attributes: map[string]string{
			"account": e.Account.String(),
			"amount":  amountString(e.Amount),
		},
	}
}

// PositionLiquidated captures a third-party liquidation of an unhealthy position.
type PositionLiquidated struct {
	Liquidator       crypto.Address
	Victim           crypto.Address
	Asset            string
	DebtCovered      *big.Int
	CollateralSeized *big.Int
}

func (PositionLiquidated) EventType() string { return TypePositionLiquidated }

func (e PositionLiquidated) Event() *types.Event {
	return &types.Event{
		Type: TypePositionLiquidated,
		Attributes: map[string]string{
			"liquidator":       e.Liquidator.String(),
			"victim":           e.Victim.String(),
			"asset":            normalizeAsset(e.Asset),
			"debtCovered":      amountString(e.DebtCovered),
			"collateralSeized": amountString(e.CollateralSeized),
		},
	}
}
