package stable

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"stablecore/core/events"
	"stablecore/crypto"
	nativecommon "stablecore/native/common"
	"stablecore/oracle"
)

var (
	errNilState               = errors.New("stable engine: state not configured")
	errInvalidConfig          = errors.New("stable engine: collateral symbols, tokens and feeds must align")
	errInvalidAmount          = errors.New("stable engine: amount must be positive")
	errAssetNotSupported      = errors.New("stable engine: collateral asset not registered")
	errInsufficientCollateral = errors.New("stable engine: insufficient recorded collateral")
	errInsufficientDebt       = errors.New("stable engine: amount exceeds recorded debt")
	errTransferFailed         = errors.New("stable engine: asset transfer failed")
	errMintFailed             = errors.New("stable engine: stable unit mint declined")
	errBurnFailed             = errors.New("stable engine: stable unit burn declined")
	errStalePrice             = errors.New("stable engine: stale or invalid oracle price")
	errPositionHealthy        = errors.New("stable engine: position not eligible for liquidation")
	errReentrantCall          = errors.New("stable engine: reentrant call rejected")
)

// HealthFactorError reports a solvency violation together with the computed
// factor, so callers can diagnose how far below the minimum the position sat.
type HealthFactorError struct {
	Factor *big.Int
}

func (e *HealthFactorError) Error() string {
	factor := "0"
	if e != nil && e.Factor != nil {
		factor = e.Factor.String()
	}
	return fmt.Sprintf("stable engine: health factor %s below minimum", factor)
}

// engineState is the persistence surface the engine requires for positions.
type engineState interface {
	GetPosition(addr crypto.Address) (*Position, error)
	PutPosition(position *Position) error
}

// Engine owns all collateral and debt accounting for the stable unit. It is
// the sole authority allowed to mint and burn the pegged asset, and the only
// component that decides whether an operation is solvency-safe.
type Engine struct {
	state      engineState
	engineAddr crypto.Address
	stable     StableAuthority
	assets     []CollateralAsset
	index      map[string]int
	emitter    events.Emitter
	pauses     nativecommon.PauseView
	busy       atomic.Bool
}

// NewEngine constructs the engine over a fixed collateral registry. The three
// slices are parallel: symbols[i] is priced by feeds[i] and moved through
// tokens[i]. Construction fails on any length mismatch, duplicate or empty
// symbol, or missing handle, and no engine value is produced.
func NewEngine(engineAddr crypto.Address, authority StableAuthority, symbols []string, tokens []Asset, feeds []oracle.Feed) (*Engine, error) {
	if engineAddr.IsZero() {
		return nil, fmt.Errorf("%w: engine address required", errInvalidConfig)
	}
	if authority == nil {
		return nil, fmt.Errorf("%w: stable authority required", errInvalidConfig)
	}
	if len(symbols) == 0 || len(symbols) != len(tokens) || len(symbols) != len(feeds) {
		return nil, errInvalidConfig
	}
	assets := make([]CollateralAsset, 0, len(symbols))
	index := make(map[string]int, len(symbols))
	for i, raw := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" {
			return nil, fmt.Errorf("%w: empty collateral symbol", errInvalidConfig)
		}
		if _, exists := index[symbol]; exists {
			return nil, fmt.Errorf("%w: duplicate collateral symbol %s", errInvalidConfig, symbol)
		}
		if tokens[i] == nil {
			return nil, fmt.Errorf("%w: missing token handle for %s", errInvalidConfig, symbol)
		}
		if feeds[i] == nil {
			return nil, fmt.Errorf("%w: missing price feed for %s", errInvalidConfig, symbol)
		}
		index[symbol] = len(assets)
		assets = append(assets, CollateralAsset{Symbol: symbol, Token: tokens[i], Feed: feeds[i]})
	}
	return &Engine{
		engineAddr: engineAddr,
		stable:     authority,
		assets:     assets,
		index:      index,
		emitter:    events.NoopEmitter{},
	}, nil
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event sink used for successful state changes.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// SetPauses wires the module circuit breaker consulted on every mutating call.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// Address returns the engine's custody account.
func (e *Engine) Address() crypto.Address {
	if e == nil {
		return crypto.Address{}
	}
	return e.engineAddr
}

// enter claims the engine's single call frame. Mutating entry points reject
// nested invocations while an outer call is in flight; queries bypass this.
func (e *Engine) enter() error {
	if !e.busy.CompareAndSwap(false, true) {
		return errReentrantCall
	}
	return nil
}

func (e *Engine) exit() { e.busy.Store(false) }

// DepositCollateral moves amount of the registered asset from the caller into
// engine custody and records it against the caller's position.
func (e *Engine) DepositCollateral(caller crypto.Address, symbol string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.depositCollateral(caller, symbol, amount)
}

// DepositAndMint composes a collateral deposit with a mint in one indivisible
// call; the mint's solvency check covers the post-deposit state. A failed mint
// leg unwinds the deposit, so the operation commits fully or not at all.
func (e *Engine) DepositAndMint(caller crypto.Address, symbol string, amount, mintAmount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.depositCollateral(caller, symbol, amount); err != nil {
		return err
	}
	if err := e.mint(caller, mintAmount); err != nil {
		if unwindErr := e.unwindDeposit(caller, symbol, amount); unwindErr != nil {
			return fmt.Errorf("%w (deposit unwind: %v)", err, unwindErr)
		}
		return err
	}
	return nil
}

// Mint creates mintAmount stable units for the caller, provided the caller's
// position stays at or above the minimum health factor with the new debt.
func (e *Engine) Mint(caller crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.mint(caller, amount)
}

// RedeemCollateral returns amount of the registered asset to the caller,
// provided the position stays healthy afterwards. A no-debt position always
// passes the check.
func (e *Engine) RedeemCollateral(caller crypto.Address, symbol string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.redeemCollateral(caller, symbol, amount)
}

// RedeemCollateralForStable burns debtAmount of the caller's debt and then
// redeems collateralAmount of the asset in one indivisible call.
func (e *Engine) RedeemCollateralForStable(caller crypto.Address, symbol string, collateralAmount, debtAmount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.burn(caller, debtAmount); err != nil {
		return err
	}
	return e.redeemCollateral(caller, symbol, collateralAmount)
}

// Burn destroys amount of the caller's stable units and reduces their
// recorded debt, pulling the units into engine custody first.
func (e *Engine) Burn(caller crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.burn(caller, amount)
}

// Liquidate lets a third party cover debtToCover of an unhealthy victim's
// debt in exchange for a bonus-adjusted amount of the chosen collateral. The
// victim's factor is not re-checked afterwards: a partial liquidation of a
// severely undercollateralized position may leave it unhealthy.
func (e *Engine) Liquidate(liquidator crypto.Address, symbol string, victim crypto.Address, debtToCover *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.liquidate(liquidator, symbol, victim, debtToCover)
}

func (e *Engine) depositCollateral(caller crypto.Address, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	asset, err := e.collateral(symbol)
	if err != nil {
		return err
	}
	position, err := e.position(caller)
	if err != nil {
		return err
	}
	updated := new(big.Int).Add(position.CollateralAmount(asset.Symbol), amount)
	if !asset.Token.TransferFrom(caller, e.engineAddr, amount) {
		return errTransferFailed
	}
	position.Collateral[asset.Symbol] = updated
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	e.emitter.Emit(events.CollateralDeposited{Account: caller, Asset: asset.Symbol, Amount: new(big.Int).Set(amount)})
	return nil
}

// unwindDeposit reverses a deposit made earlier in the same operation:
// collateral returns to the caller and the recorded balance drops back to its
// prior value.
func (e *Engine) unwindDeposit(caller crypto.Address, symbol string, amount *big.Int) error {
	asset, err := e.collateral(symbol)
	if err != nil {
		return err
	}
	position, err := e.position(caller)
	if err != nil {
		return err
	}
	held := position.CollateralAmount(asset.Symbol)
	if held.Cmp(amount) < 0 {
		return errInsufficientCollateral
	}
	if !asset.Token.TransferFrom(e.engineAddr, caller, amount) {
		return errTransferFailed
	}
	position.Collateral[asset.Symbol] = new(big.Int).Sub(held, amount)
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	e.emitter.Emit(events.CollateralRedeemed{Account: caller, Asset: asset.Symbol, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) mint(caller crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	position, err := e.position(caller)
	if err != nil {
		return err
	}
	previousDebt := new(big.Int).Set(position.DebtMinted)
	newDebt := new(big.Int).Add(previousDebt, amount)

	collateralValue, err := e.positionCollateralValue(position)
	if err != nil {
		return err
	}
	factor := healthFactor(newDebt, collateralValue)
	if factor.Cmp(minHealthFactor) < 0 {
		return &HealthFactorError{Factor: factor}
	}

	position.DebtMinted = newDebt
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.stable.Mint(e.engineAddr, caller, amount); err != nil {
		position.DebtMinted = previousDebt
		if putErr := e.state.PutPosition(position); putErr != nil {
			return putErr
		}
		return fmt.Errorf("%w: %v", errMintFailed, err)
	}
	e.emitter.Emit(events.StableMinted{Account: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) redeemCollateral(caller crypto.Address, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	asset, err := e.collateral(symbol)
	if err != nil {
		return err
	}
	position, err := e.position(caller)
	if err != nil {
		return err
	}
	held := position.CollateralAmount(asset.Symbol)
	if held.Cmp(amount) < 0 {
		return errInsufficientCollateral
	}
	remaining := new(big.Int).Sub(held, amount)

	if position.DebtMinted.Sign() > 0 {
		projected := position.Clone()
		projected.Collateral[asset.Symbol] = remaining
		collateralValue, err := e.positionCollateralValue(projected)
		if err != nil {
			return err
		}
		factor := healthFactor(position.DebtMinted, collateralValue)
		if factor.Cmp(minHealthFactor) < 0 {
			return &HealthFactorError{Factor: factor}
		}
	}

	if !asset.Token.TransferFrom(e.engineAddr, caller, amount) {
		return errTransferFailed
	}
	position.Collateral[asset.Symbol] = remaining
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	e.emitter.Emit(events.CollateralRedeemed{Account: caller, Asset: asset.Symbol, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) burn(caller crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	position, err := e.position(caller)
	if err != nil {
		return err
	}
	if position.DebtMinted.Cmp(amount) < 0 {
		return errInsufficientDebt
	}
	newDebt := new(big.Int).Sub(position.DebtMinted, amount)

	// Debt only decreased, so this re-check should always pass; it is kept so
	// a pricing or accounting fault surfaces here instead of persisting.
	if newDebt.Sign() > 0 {
		collateralValue, err := e.positionCollateralValue(position)
		if err != nil {
			return err
		}
		factor := healthFactor(newDebt, collateralValue)
		if factor.Cmp(minHealthFactor) < 0 {
			return &HealthFactorError{Factor: factor}
		}
	}

	if !e.stable.TransferFrom(caller, e.engineAddr, amount) {
		return errTransferFailed
	}
	if err := e.stable.Burn(e.engineAddr, amount); err != nil {
		if !e.stable.TransferFrom(e.engineAddr, caller, amount) {
			return fmt.Errorf("%w: %v (refund failed)", errBurnFailed, err)
		}
		return fmt.Errorf("%w: %v", errBurnFailed, err)
	}
	position.DebtMinted = newDebt
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	e.emitter.Emit(events.StableBurned{Account: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) liquidate(liquidator crypto.Address, symbol string, victim crypto.Address, debtToCover *big.Int) error {
	if debtToCover == nil || debtToCover.Sign() <= 0 {
		return errInvalidAmount
	}
	asset, err := e.collateral(symbol)
	if err != nil {
		return err
	}
	position, err := e.position(victim)
	if err != nil {
		return err
	}
	collateralValue, err := e.positionCollateralValue(position)
	if err != nil {
		return err
	}
	factor := healthFactor(position.DebtMinted, collateralValue)
	if factor.Cmp(minHealthFactor) >= 0 {
		return errPositionHealthy
	}
	if position.DebtMinted.Cmp(debtToCover) < 0 {
		return errInsufficientDebt
	}

	price, err := e.freshPrice(asset)
	if err != nil {
		return err
	}
	tokenAmount := tokenAmountFromUsd(price, debtToCover)
	seized := new(big.Int).Add(tokenAmount, liquidationBonusAmount(tokenAmount))

	held := position.CollateralAmount(asset.Symbol)
	if held.Cmp(seized) < 0 {
		return errInsufficientCollateral
	}

	if !e.stable.TransferFrom(liquidator, e.engineAddr, debtToCover) {
		return errTransferFailed
	}
	if !asset.Token.TransferFrom(e.engineAddr, liquidator, seized) {
		if !e.stable.TransferFrom(e.engineAddr, liquidator, debtToCover) {
			return fmt.Errorf("%w (refund failed)", errTransferFailed)
		}
		return errTransferFailed
	}
	if err := e.stable.Burn(e.engineAddr, debtToCover); err != nil {
		collateralBack := asset.Token.TransferFrom(liquidator, e.engineAddr, seized)
		stableBack := e.stable.TransferFrom(e.engineAddr, liquidator, debtToCover)
		if !collateralBack || !stableBack {
			return fmt.Errorf("%w: %v (compensation incomplete)", errBurnFailed, err)
		}
		return fmt.Errorf("%w: %v", errBurnFailed, err)
	}

	position.Collateral[asset.Symbol] = new(big.Int).Sub(held, seized)
	position.DebtMinted = new(big.Int).Sub(position.DebtMinted, debtToCover)
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	e.emitter.Emit(events.PositionLiquidated{
		Liquidator:       liquidator,
		Victim:           victim,
		Asset:            asset.Symbol,
		DebtCovered:      new(big.Int).Set(debtToCover),
		CollateralSeized: seized,
	})
	return nil
}

func (e *Engine) collateral(symbol string) (CollateralAsset, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	idx, ok := e.index[normalized]
	if !ok {
		return CollateralAsset{}, errAssetNotSupported
	}
	return e.assets[idx], nil
}

func (e *Engine) position(addr crypto.Address) (*Position, error) {
	position, err := e.state.GetPosition(addr)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = &Position{Address: addr}
	}
	if position.Collateral == nil {
		position.Collateral = make(map[string]*big.Int)
	}
	if position.DebtMinted == nil {
		position.DebtMinted = big.NewInt(0)
	}
	return position, nil
}

func (e *Engine) positionCollateralValue(position *Position) (*big.Int, error) {
	total := big.NewInt(0)
	for _, asset := range e.assets {
		amount := position.CollateralAmount(asset.Symbol)
		if amount.Sign() == 0 {
			continue
		}
		price, err := e.freshPrice(asset)
		if err != nil {
			return nil, err
		}
		total.Add(total, usdValue(price, amount))
	}
	return total, nil
}

func (e *Engine) freshPrice(asset CollateralAsset) (*big.Int, error) {
	quote, err := asset.Feed.Latest()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStalePrice, err)
	}
	if !quote.Fresh() {
		return nil, errStalePrice
	}
	return quote.Price, nil
}
