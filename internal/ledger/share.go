package ledger

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/openvault-labs/tvm/internal/auth"
	"github.com/openvault-labs/tvm/internal/logger"
	"github.com/openvault-labs/tvm/internal/treasury"
)

const (
	// BpsDenominator is the basis-point scale: 10000 bps = 100%.
	BpsDenominator = 10_000

	// MaxDepositFeeBps is the ceiling for the deposit fee rate.
	MaxDepositFeeBps = 1_000
	// MaxWithdrawalFeeBps is the ceiling for the withdrawal fee rate.
	MaxWithdrawalFeeBps = 1_000
	// MaxPerformanceFeeBps is the ceiling for the performance fee rate.
	MaxPerformanceFeeBps = 3_000
)

// ShareLedger owns the conversion between custodied assets and ownership
// shares: deposit/withdraw/redeem accounting, fee application, and the
// liquidity precondition for outbound fund routing.
//
// Custodied assets are never stored redundantly; the ledger reads them from
// its transfer collaborator's balance view on demand. Authorization and
// transfers are injected collaborators: the ledger consults the capability
// predicate before guarded mutations and treats every transfer as atomic.
type ShareLedger struct {
	vaultAccount string
	owner        string

	totalShares  sdkmath.Int
	holderShares map[string]sdkmath.Int
	allowances   map[string]map[string]sdkmath.Int

	depositFeeBps       uint64
	withdrawalFeeBps    uint64
	performanceFeeBps   uint64
	feeRecipient        string
	minLiquidityReserve sdkmath.Int

	treasury treasury.Transferor
	auth     auth.Authorizer

	guard  guard
	logger zerolog.Logger
}

// ShareLedgerConfig holds the dependencies and initial parameters for a
// ShareLedger instance.
type ShareLedgerConfig struct {
	// VaultAccount is the custodial identity whose balance is the vault's
	// total assets held.
	VaultAccount string
	// Owner is the initial administrative owner of the vault.
	Owner string

	Treasury   treasury.Transferor
	Authorizer auth.Authorizer

	DepositFeeBps       uint64
	WithdrawalFeeBps    uint64
	PerformanceFeeBps   uint64
	FeeRecipient        string
	MinLiquidityReserve sdkmath.Int
}

// NewShareLedger creates a share ledger with zero shares outstanding.
func NewShareLedger(cfg ShareLedgerConfig) (*ShareLedger, error) {
	if err := validateShareLedgerConfig(cfg); err != nil {
		return nil, fmt.Errorf("share ledger configuration validation failed: %w", err)
	}

	reserve := cfg.MinLiquidityReserve
	if reserve.IsNil() {
		reserve = sdkmath.ZeroInt()
	}

	sl := &ShareLedger{
		vaultAccount:        cfg.VaultAccount,
		owner:               cfg.Owner,
		totalShares:         sdkmath.ZeroInt(),
		holderShares:        make(map[string]sdkmath.Int),
		allowances:          make(map[string]map[string]sdkmath.Int),
		depositFeeBps:       cfg.DepositFeeBps,
		withdrawalFeeBps:    cfg.WithdrawalFeeBps,
		performanceFeeBps:   cfg.PerformanceFeeBps,
		feeRecipient:        cfg.FeeRecipient,
		minLiquidityReserve: reserve,
		treasury:            cfg.Treasury,
		auth:                cfg.Authorizer,
		logger:              logger.GetForComponent("share_ledger"),
	}

	sl.logger.Info().
		Str("vaultAccount", sl.vaultAccount).
		Str("owner", sl.owner).
		Uint64("depositFeeBps", sl.depositFeeBps).
		Uint64("withdrawalFeeBps", sl.withdrawalFeeBps).
		Uint64("performanceFeeBps", sl.performanceFeeBps).
		Msg("ShareLedger initialized")

	return sl, nil
}

func validateShareLedgerConfig(cfg ShareLedgerConfig) error {
	if cfg.VaultAccount == "" {
		return errors.Join(ErrZeroAddress, errors.New("vault account cannot be empty"))
	}
	if cfg.Owner == "" {
		return errors.Join(ErrZeroAddress, errors.New("owner cannot be empty"))
	}
	if cfg.Treasury == nil {
		return errors.New("transfer collaborator cannot be nil")
	}
	if cfg.Authorizer == nil {
		return errors.New("authorization collaborator cannot be nil")
	}
	if cfg.DepositFeeBps > MaxDepositFeeBps {
		return fmt.Errorf("%w: deposit fee %d bps exceeds %d", ErrFeeTooHigh, cfg.DepositFeeBps, MaxDepositFeeBps)
	}
	if cfg.WithdrawalFeeBps > MaxWithdrawalFeeBps {
		return fmt.Errorf("%w: withdrawal fee %d bps exceeds %d", ErrFeeTooHigh, cfg.WithdrawalFeeBps, MaxWithdrawalFeeBps)
	}
	if cfg.PerformanceFeeBps > MaxPerformanceFeeBps {
		return fmt.Errorf("%w: performance fee %d bps exceeds %d", ErrFeeTooHigh, cfg.PerformanceFeeBps, MaxPerformanceFeeBps)
	}
	if !cfg.MinLiquidityReserve.IsNil() && cfg.MinLiquidityReserve.IsNegative() {
		return fmt.Errorf("minimum liquidity reserve cannot be negative: %s", cfg.MinLiquidityReserve)
	}
	return nil
}

// TotalShares returns the number of shares outstanding.
func (sl *ShareLedger) TotalShares() sdkmath.Int {
	return sl.totalShares
}

// SharesOf returns the share balance of a holder.
func (sl *ShareLedger) SharesOf(holder string) sdkmath.Int {
	if bal, ok := sl.holderShares[holder]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

// Holders returns a copy of the per-holder share balances.
func (sl *ShareLedger) Holders() map[string]sdkmath.Int {
	out := make(map[string]sdkmath.Int, len(sl.holderShares))
	for holder, bal := range sl.holderShares {
		out[holder] = bal
	}
	return out
}

// TotalAssets returns the quantity of the underlying asset currently
// custodied, read from the transfer collaborator's balance view.
func (sl *ShareLedger) TotalAssets() (sdkmath.Int, error) {
	return sl.treasury.BalanceOf(sl.vaultAccount)
}

// Owner returns the current administrative owner.
func (sl *ShareLedger) Owner() string { return sl.owner }

// FeeRecipient returns the configured fee recipient identity.
func (sl *ShareLedger) FeeRecipient() string { return sl.feeRecipient }

// DepositFeeBps returns the deposit fee rate.
func (sl *ShareLedger) DepositFeeBps() uint64 { return sl.depositFeeBps }

// WithdrawalFeeBps returns the withdrawal fee rate.
func (sl *ShareLedger) WithdrawalFeeBps() uint64 { return sl.withdrawalFeeBps }

// PerformanceFeeBps returns the performance fee rate.
func (sl *ShareLedger) PerformanceFeeBps() uint64 { return sl.performanceFeeBps }

// MinLiquidityReserve returns the minimum asset quantity that must remain
// available after any outbound routing operation.
func (sl *ShareLedger) MinLiquidityReserve() sdkmath.Int { return sl.minLiquidityReserve }

// PreviewDeposit computes the shares mintable for a given asset amount at
// the current share price without mutating state.
//
// With zero shares outstanding the vault prices 1:1. In the degenerate
// state (shares outstanding but zero custodied assets, e.g. after a full
// drain) pricing resets to 1:1 as well, so the vault stays usable instead
// of bricking on an unpriceable division.
func (sl *ShareLedger) PreviewDeposit(assets sdkmath.Int) (sdkmath.Int, error) {
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}

	return sl.sharesForDeposit(assets, totalAssets), nil
}

// sharesForDeposit implements the deposit pricing rule against a caller
// supplied asset total, so Deposit can price before pulling funds in.
func (sl *ShareLedger) sharesForDeposit(assets, totalAssets sdkmath.Int) sdkmath.Int {
	if sl.totalShares.IsZero() || totalAssets.IsZero() {
		return assets
	}
	return assets.Mul(sl.totalShares).Quo(totalAssets)
}

// PreviewWithdraw computes the shares that must be burned to withdraw the
// given gross asset amount. Rounds up, so a withdrawer can never extract
// more value than the burned shares represent.
func (sl *ShareLedger) PreviewWithdraw(assets sdkmath.Int) (sdkmath.Int, error) {
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}
	if assets.GT(totalAssets) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: requested %s, custodied %s", ErrInsufficientFunds, assets, totalAssets)
	}

	return sl.sharesForWithdraw(assets, totalAssets), nil
}

// sharesForWithdraw is ceiling division of assets*totalShares/totalAssets.
// Callers guarantee 0 < assets <= totalAssets.
func (sl *ShareLedger) sharesForWithdraw(assets, totalAssets sdkmath.Int) sdkmath.Int {
	num := assets.Mul(sl.totalShares)
	shares := num.Quo(totalAssets)
	if !num.Mod(totalAssets).IsZero() {
		shares = shares.AddRaw(1)
	}
	return shares
}

// Deposit pulls assets from the caller, applies the deposit fee, and mints
// shares for the post-fee net amount to the receiver. The fee contributes
// zero shares to any holder.
func (sl *ShareLedger) Deposit(caller, receiver string, assets sdkmath.Int) (sdkmath.Int, error) {
	release, err := sl.guard.enter()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if caller == "" || receiver == "" {
		return sdkmath.ZeroInt(), ErrZeroAddress
	}
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	fee := assets.MulRaw(int64(sl.depositFeeBps)).QuoRaw(BpsDenominator)
	netAssets := assets.Sub(fee)

	// Price against the pre-transfer balance: the incoming assets must not
	// influence their own share price.
	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}
	shares := sl.sharesForDeposit(netAssets, totalAssets)

	if err := sl.treasury.Pull(caller, assets); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("deposit pull failed: %w", err)
	}

	if fee.IsPositive() && sl.feeRecipient != "" {
		if err := sl.treasury.Push(sl.feeRecipient, fee); err != nil {
			// Refund the pulled assets so the failed operation leaves no
			// partial state behind.
			if refundErr := sl.treasury.Push(caller, assets); refundErr != nil {
				return sdkmath.ZeroInt(), errors.Join(err, refundErr)
			}
			return sdkmath.ZeroInt(), fmt.Errorf("deposit fee routing failed: %w", err)
		}
	}

	sl.holderShares[receiver] = sl.SharesOf(receiver).Add(shares)
	sl.totalShares = sl.totalShares.Add(shares)

	sl.logger.Debug().
		Str("caller", caller).
		Str("receiver", receiver).
		Str("assets", assets.String()).
		Str("fee", fee.String()).
		Str("shares", shares.String()).
		Msg("Deposit completed")

	return shares, nil
}

// Withdraw burns the shares corresponding to the requested gross asset
// amount from owner and transfers the post-fee net assets to receiver.
// Callers other than the owner must hold a sufficient share allowance.
// Returns the shares burned.
func (sl *ShareLedger) Withdraw(caller, receiver, owner string, assets sdkmath.Int) (sdkmath.Int, error) {
	release, err := sl.guard.enter()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if caller == "" || receiver == "" || owner == "" {
		return sdkmath.ZeroInt(), ErrZeroAddress
	}
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}
	if sl.totalShares.IsZero() {
		// Assets custodied with no shares outstanding (donations, fee
		// residue) have no owner to debit; paying them out here would
		// burn nothing.
		return sdkmath.ZeroInt(), fmt.Errorf("%w: no shares outstanding", ErrInsufficientBalance)
	}

	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}
	if assets.GT(totalAssets) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: requested %s, custodied %s", ErrInsufficientFunds, assets, totalAssets)
	}

	shares := sl.sharesForWithdraw(assets, totalAssets)
	return sl.burnAndPay(caller, receiver, owner, shares, assets)
}

// Redeem burns an exact share amount from owner and transfers the post-fee
// net asset value to receiver. Returns the net assets transferred.
func (sl *ShareLedger) Redeem(caller, receiver, owner string, shares sdkmath.Int) (sdkmath.Int, error) {
	release, err := sl.guard.enter()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if caller == "" || receiver == "" || owner == "" {
		return sdkmath.ZeroInt(), ErrZeroAddress
	}
	if shares.IsNil() || !shares.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}
	if sl.totalShares.IsZero() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: no shares outstanding", ErrInsufficientBalance)
	}

	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}

	grossAssets := shares.Mul(totalAssets).Quo(sl.totalShares)
	if !grossAssets.IsPositive() {
		// The shares round down to zero asset value; burning them would
		// destroy value without a corresponding asset reduction.
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	if _, err := sl.burnAndPay(caller, receiver, owner, shares, grossAssets); err != nil {
		return sdkmath.ZeroInt(), err
	}

	fee := grossAssets.MulRaw(int64(sl.withdrawalFeeBps)).QuoRaw(BpsDenominator)
	return grossAssets.Sub(fee), nil
}

// burnAndPay is the shared withdraw/redeem tail: spend allowance if the
// caller is not the owner, burn shares before any outbound transfer, route
// the withdrawal fee on the gross amount, then pay the receiver the net.
// The guard is already held.
func (sl *ShareLedger) burnAndPay(caller, receiver, owner string, shares, grossAssets sdkmath.Int) (sdkmath.Int, error) {
	held := sl.SharesOf(owner)
	if held.LT(shares) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: owner holds %s shares, needs %s", ErrInsufficientBalance, held, shares)
	}

	var allowanceSpent sdkmath.Int
	if caller != owner {
		allowance := sl.Allowance(owner, caller)
		if allowance.LT(shares) {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: allowance %s, needs %s", ErrInsufficientAllowance, allowance, shares)
		}
		if _, ok := sl.allowances[owner]; !ok {
			sl.allowances[owner] = make(map[string]sdkmath.Int)
		}
		sl.allowances[owner][caller] = allowance.Sub(shares)
		allowanceSpent = shares
	}

	// Burn before any outbound transfer so a reentrant observer can never
	// see shares that have already been paid out.
	sl.holderShares[owner] = held.Sub(shares)
	if sl.holderShares[owner].IsZero() {
		delete(sl.holderShares, owner)
	}
	sl.totalShares = sl.totalShares.Sub(shares)

	revert := func() {
		sl.holderShares[owner] = sl.SharesOf(owner).Add(shares)
		sl.totalShares = sl.totalShares.Add(shares)
		if !allowanceSpent.IsNil() && caller != owner {
			sl.allowances[owner][caller] = sl.Allowance(owner, caller).Add(allowanceSpent)
		}
	}

	fee := grossAssets.MulRaw(int64(sl.withdrawalFeeBps)).QuoRaw(BpsDenominator)
	netAssets := grossAssets.Sub(fee)

	if fee.IsPositive() && sl.feeRecipient != "" {
		if err := sl.treasury.Push(sl.feeRecipient, fee); err != nil {
			revert()
			return sdkmath.ZeroInt(), fmt.Errorf("withdrawal fee routing failed: %w", err)
		}
	}
	if err := sl.treasury.Push(receiver, netAssets); err != nil {
		revert()
		return sdkmath.ZeroInt(), fmt.Errorf("withdrawal payout failed: %w", err)
	}

	sl.logger.Debug().
		Str("caller", caller).
		Str("owner", owner).
		Str("receiver", receiver).
		Str("shares", shares.String()).
		Str("grossAssets", grossAssets.String()).
		Str("fee", fee.String()).
		Msg("Shares burned and assets paid out")

	return shares, nil
}

// Approve grants spender the right to withdraw or redeem up to the given
// share amount from owner's balance. The grant replaces any prior value.
func (sl *ShareLedger) Approve(owner, spender string, shares sdkmath.Int) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if owner == "" || spender == "" {
		return ErrZeroAddress
	}
	if shares.IsNil() || shares.IsNegative() {
		return ErrZeroAmount
	}

	if _, ok := sl.allowances[owner]; !ok {
		sl.allowances[owner] = make(map[string]sdkmath.Int)
	}
	sl.allowances[owner][spender] = shares
	return nil
}

// Allowance returns the share amount spender may currently withdraw or
// redeem on behalf of owner.
func (sl *ShareLedger) Allowance(owner, spender string) sdkmath.Int {
	if grants, ok := sl.allowances[owner]; ok {
		if allowance, ok := grants[spender]; ok {
			return allowance
		}
	}
	return sdkmath.ZeroInt()
}

// RouteFunds validates the accounting precondition for routing vault-held
// funds to external strategy calls: parallel arrays of equal length and a
// post-routing balance that still meets the minimum liquidity reserve.
// Actual call execution belongs to the strategy executor collaborator; this
// ledger's contract ends at the liquidity check.
func (sl *ShareLedger) RouteFunds(caller string, destinations []string, payloads [][]byte, values []sdkmath.Int) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapRouteFunds) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapRouteFunds)
	}
	if len(destinations) != len(payloads) || len(destinations) != len(values) {
		return fmt.Errorf("%w: %d destinations, %d payloads, %d values",
			ErrInvalidExecuteParams, len(destinations), len(payloads), len(values))
	}

	total := sdkmath.ZeroInt()
	for i, v := range values {
		if v.IsNil() || v.IsNegative() {
			return fmt.Errorf("%w: value at index %d is invalid", ErrInvalidExecuteParams, i)
		}
		total = total.Add(v)
	}

	custodied, err := sl.TotalAssets()
	if err != nil {
		return fmt.Errorf("failed to read custodied assets: %w", err)
	}
	if custodied.Sub(total).LT(sl.minLiquidityReserve) {
		return fmt.Errorf("%w: custodied %s, routing %s, reserve %s",
			ErrInsufficientLiquidity, custodied, total, sl.minLiquidityReserve)
	}

	sl.logger.Debug().
		Str("caller", caller).
		Int("calls", len(destinations)).
		Str("total", total.String()).
		Msg("Fund routing liquidity check passed")

	return nil
}

// CollectPerformanceFee charges the performance fee against the entire
// current asset balance and routes it to the fee recipient. There is no
// gain tracking: repeated collections re-tax the same base. Returns the
// fee collected.
func (sl *ShareLedger) CollectPerformanceFee(caller string) (sdkmath.Int, error) {
	release, err := sl.guard.enter()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if caller == "" {
		return sdkmath.ZeroInt(), ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapCollectFees) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapCollectFees)
	}

	totalAssets, err := sl.TotalAssets()
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read custodied assets: %w", err)
	}

	fee := totalAssets.MulRaw(int64(sl.performanceFeeBps)).QuoRaw(BpsDenominator)
	if !fee.IsPositive() || sl.feeRecipient == "" {
		return sdkmath.ZeroInt(), nil
	}

	if err := sl.treasury.Push(sl.feeRecipient, fee); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("performance fee routing failed: %w", err)
	}

	sl.logger.Info().
		Str("caller", caller).
		Str("fee", fee.String()).
		Str("recipient", sl.feeRecipient).
		Msg("Performance fee collected")

	return fee, nil
}

// SetDepositFee updates the deposit fee rate.
func (sl *ShareLedger) SetDepositFee(caller string, bps uint64) error {
	return sl.setFee(caller, "deposit", bps, MaxDepositFeeBps, &sl.depositFeeBps)
}

// SetWithdrawalFee updates the withdrawal fee rate.
func (sl *ShareLedger) SetWithdrawalFee(caller string, bps uint64) error {
	return sl.setFee(caller, "withdrawal", bps, MaxWithdrawalFeeBps, &sl.withdrawalFeeBps)
}

// SetPerformanceFee updates the performance fee rate.
func (sl *ShareLedger) SetPerformanceFee(caller string, bps uint64) error {
	return sl.setFee(caller, "performance", bps, MaxPerformanceFeeBps, &sl.performanceFeeBps)
}

func (sl *ShareLedger) setFee(caller, name string, bps, ceiling uint64, target *uint64) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapSetFees) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapSetFees)
	}
	if bps > ceiling {
		return fmt.Errorf("%w: %s fee %d bps exceeds %d", ErrFeeTooHigh, name, bps, ceiling)
	}

	old := *target
	*target = bps

	sl.logger.Info().
		Str("fee", name).
		Uint64("oldBps", old).
		Uint64("newBps", bps).
		Msg("Fee rate updated")

	return nil
}

// SetFeeRecipient updates the identity receiving fee proceeds.
func (sl *ShareLedger) SetFeeRecipient(caller, recipient string) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapSetFees) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapSetFees)
	}
	if recipient == "" {
		return ErrInvalidFeeRecipient
	}

	sl.feeRecipient = recipient
	return nil
}

// SetMinLiquidityReserve updates the minimum asset quantity that must
// remain after outbound routing.
func (sl *ShareLedger) SetMinLiquidityReserve(caller string, reserve sdkmath.Int) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapSetFees) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapSetFees)
	}
	if reserve.IsNil() || reserve.IsNegative() {
		return ErrZeroAmount
	}

	sl.minLiquidityReserve = reserve
	return nil
}

// TransferOwnership hands administrative ownership to a new account.
func (sl *ShareLedger) TransferOwnership(caller, newOwner string) error {
	release, err := sl.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !sl.auth.IsAuthorized(caller, auth.CapTransferOwnership) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapTransferOwnership)
	}
	if newOwner == "" {
		return ErrZeroAddress
	}

	old := sl.owner
	sl.owner = newOwner

	sl.logger.Info().
		Str("oldOwner", old).
		Str("newOwner", newOwner).
		Msg("Vault ownership transferred")

	return nil
}
