package ledger

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/openvault-labs/tvm/internal/auth"
	"github.com/openvault-labs/tvm/internal/clock"
	"github.com/openvault-labs/tvm/internal/logger"
	"github.com/openvault-labs/tvm/internal/treasury"
)

const (
	// MaxAnnualRateBps is the ceiling for the annual interest rate.
	MaxAnnualRateBps = 10_000

	// SecondsPerYear is the accrual year: 365 days.
	SecondsPerYear = 31_536_000
)

// InterestLedger tracks per-account principal and lazily accrued linear
// simple interest for the lending pool.
//
// Accrual is keyed to the calling account only and advances a single shared
// accrual instant: each account must trigger its own accrual before reading
// or mutating its state, and un-accrued intervals are charged at whatever
// rate is current when that account next accrues. This is the pool's
// documented lazy-accrual design, not a per-account timestamp model.
type InterestLedger struct {
	poolAccount string

	principal      map[string]sdkmath.Int
	accrued        map[string]sdkmath.Int
	totalPrincipal sdkmath.Int

	annualRateBps uint64
	lastAccrual   int64 // unix seconds, monotonically non-decreasing

	treasury treasury.Transferor
	auth     auth.Authorizer
	clock    clock.Clock

	guard  guard
	logger zerolog.Logger
}

// InterestLedgerConfig holds the dependencies and initial parameters for an
// InterestLedger instance.
type InterestLedgerConfig struct {
	// PoolAccount is the custodial identity holding supplied principal and
	// the interest reserve.
	PoolAccount string

	Treasury   treasury.Transferor
	Authorizer auth.Authorizer
	Clock      clock.Clock

	AnnualRateBps uint64
}

// NewInterestLedger creates an interest ledger with zero principal. The
// accrual instant starts at the clock's current time.
func NewInterestLedger(cfg InterestLedgerConfig) (*InterestLedger, error) {
	if err := validateInterestLedgerConfig(cfg); err != nil {
		return nil, fmt.Errorf("interest ledger configuration validation failed: %w", err)
	}

	il := &InterestLedger{
		poolAccount:    cfg.PoolAccount,
		principal:      make(map[string]sdkmath.Int),
		accrued:        make(map[string]sdkmath.Int),
		totalPrincipal: sdkmath.ZeroInt(),
		annualRateBps:  cfg.AnnualRateBps,
		lastAccrual:    cfg.Clock.Now().Unix(),
		treasury:       cfg.Treasury,
		auth:           cfg.Authorizer,
		clock:          cfg.Clock,
		logger:         logger.GetForComponent("interest_ledger"),
	}

	il.logger.Info().
		Str("poolAccount", il.poolAccount).
		Uint64("annualRateBps", il.annualRateBps).
		Int64("lastAccrual", il.lastAccrual).
		Msg("InterestLedger initialized")

	return il, nil
}

func validateInterestLedgerConfig(cfg InterestLedgerConfig) error {
	if cfg.PoolAccount == "" {
		return errors.Join(ErrZeroAddress, errors.New("pool account cannot be empty"))
	}
	if cfg.Treasury == nil {
		return errors.New("transfer collaborator cannot be nil")
	}
	if cfg.Authorizer == nil {
		return errors.New("authorization collaborator cannot be nil")
	}
	if cfg.Clock == nil {
		return errors.New("clock collaborator cannot be nil")
	}
	if cfg.AnnualRateBps > MaxAnnualRateBps {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrRateTooHigh, cfg.AnnualRateBps, MaxAnnualRateBps)
	}
	return nil
}

// PrincipalOf returns the principal currently supplied by an account.
func (il *InterestLedger) PrincipalOf(account string) sdkmath.Int {
	if p, ok := il.principal[account]; ok {
		return p
	}
	return sdkmath.ZeroInt()
}

// TotalPrincipal returns the sum of all supplied principal.
func (il *InterestLedger) TotalPrincipal() sdkmath.Int {
	return il.totalPrincipal
}

// AnnualRateBps returns the current interest rate.
func (il *InterestLedger) AnnualRateBps() uint64 { return il.annualRateBps }

// LastAccrualInstant returns the unix timestamp of the last accrual event.
func (il *InterestLedger) LastAccrualInstant() int64 { return il.lastAccrual }

// Accounts returns a copy of the per-account principal and committed
// accrued interest.
func (il *InterestLedger) Accounts() (principal, accrued map[string]sdkmath.Int) {
	principal = make(map[string]sdkmath.Int, len(il.principal))
	for account, p := range il.principal {
		principal[account] = p
	}
	accrued = make(map[string]sdkmath.Int, len(il.accrued))
	for account, a := range il.accrued {
		accrued[account] = a
	}
	return principal, accrued
}

// interestDelta is the linear simple-interest formula:
// principal * rateBps * elapsedSeconds / (SecondsPerYear * 10000),
// floor division.
func (il *InterestLedger) interestDelta(principal sdkmath.Int, elapsed int64) sdkmath.Int {
	if !principal.IsPositive() || elapsed <= 0 || il.annualRateBps == 0 {
		return sdkmath.ZeroInt()
	}
	return principal.
		MulRaw(int64(il.annualRateBps)).
		MulRaw(elapsed).
		QuoRaw(int64(SecondsPerYear) * BpsDenominator)
}

// accrue commits interest for one account and advances the shared accrual
// instant. Must be called with the guard held.
func (il *InterestLedger) accrue(account string, now int64) {
	if now <= il.lastAccrual {
		return
	}
	elapsed := now - il.lastAccrual

	delta := il.interestDelta(il.PrincipalOf(account), elapsed)
	if delta.IsPositive() {
		il.accrued[account] = il.accruedOf(account).Add(delta)
	}
	il.lastAccrual = now
}

func (il *InterestLedger) accruedOf(account string) sdkmath.Int {
	if a, ok := il.accrued[account]; ok {
		return a
	}
	return sdkmath.ZeroInt()
}

// Accrue commits interest earned by the account since the last accrual
// event. Calling at or before the last accrual instant is a no-op.
func (il *InterestLedger) Accrue(account string) error {
	release, err := il.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if account == "" {
		return ErrZeroAddress
	}

	il.accrue(account, il.clock.Now().Unix())
	return nil
}

// GetAccruedInterest returns the interest the account has earned as of the
// clock's current instant, without mutating state. The result is identical
// to the committed value a subsequent Accrue at the same timestamp would
// produce.
func (il *InterestLedger) GetAccruedInterest(account string) (sdkmath.Int, error) {
	if account == "" {
		return sdkmath.ZeroInt(), ErrZeroAddress
	}

	stored := il.accruedOf(account)
	now := il.clock.Now().Unix()
	if now <= il.lastAccrual {
		return stored, nil
	}
	return stored.Add(il.interestDelta(il.PrincipalOf(account), now-il.lastAccrual)), nil
}

// Deposit accrues the account's interest under the current rate, pulls the
// amount from the account, and adds it to principal.
func (il *InterestLedger) Deposit(account string, amount sdkmath.Int) error {
	release, err := il.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if account == "" {
		return ErrZeroAddress
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrZeroAmount
	}

	// Accrue before the principal mutation so the new amount earns nothing
	// for the elapsed interval.
	il.accrue(account, il.clock.Now().Unix())

	if err := il.treasury.Pull(account, amount); err != nil {
		return fmt.Errorf("principal pull failed: %w", err)
	}

	il.principal[account] = il.PrincipalOf(account).Add(amount)
	il.totalPrincipal = il.totalPrincipal.Add(amount)

	il.logger.Debug().
		Str("account", account).
		Str("amount", amount.String()).
		Str("totalPrincipal", il.totalPrincipal.String()).
		Msg("Principal deposited")

	return nil
}

// Withdraw accrues the account's interest, removes the amount from
// principal, releases the proportional slice of accrued interest, and pays
// out amount plus that interest portion.
func (il *InterestLedger) Withdraw(account string, amount sdkmath.Int) error {
	release, err := il.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if account == "" {
		return ErrZeroAddress
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrZeroAmount
	}

	held := il.PrincipalOf(account)
	if held.LT(amount) {
		return fmt.Errorf("%w: principal %s, requested %s", ErrInsufficientBalance, held, amount)
	}

	il.accrue(account, il.clock.Now().Unix())

	// held >= amount > 0, so this division is safe.
	principal := il.PrincipalOf(account)
	accrued := il.accruedOf(account)
	interestPortion := amount.Mul(accrued).Quo(principal)

	// Commit the deductions before the outbound transfer.
	il.principal[account] = principal.Sub(amount)
	if il.principal[account].IsZero() {
		delete(il.principal, account)
	}
	il.totalPrincipal = il.totalPrincipal.Sub(amount)
	il.accrued[account] = accrued.Sub(interestPortion)
	if il.accrued[account].IsZero() {
		delete(il.accrued, account)
	}

	payout := amount.Add(interestPortion)
	if err := il.treasury.Push(account, payout); err != nil {
		// Restore the deducted balances so the failed operation leaves no
		// partial state behind.
		il.principal[account] = il.PrincipalOf(account).Add(amount)
		il.totalPrincipal = il.totalPrincipal.Add(amount)
		il.accrued[account] = il.accruedOf(account).Add(interestPortion)
		return fmt.Errorf("withdrawal payout failed: %w", err)
	}

	il.logger.Debug().
		Str("account", account).
		Str("amount", amount.String()).
		Str("interestPortion", interestPortion.String()).
		Msg("Principal withdrawn")

	return nil
}

// UpdateRate switches the pool to a new annual rate. The caller's interest
// is accrued under the old rate first; other accounts' un-accrued intervals
// are charged at the new rate when they next accrue, per the pool's lazy
// per-account semantics.
func (il *InterestLedger) UpdateRate(caller string, newRateBps uint64) error {
	release, err := il.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	if caller == "" {
		return ErrZeroAddress
	}
	if !il.auth.IsAuthorized(caller, auth.CapUpdateRate) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorizedCaller, caller, auth.CapUpdateRate)
	}
	if newRateBps > MaxAnnualRateBps {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrRateTooHigh, newRateBps, MaxAnnualRateBps)
	}

	il.accrue(caller, il.clock.Now().Unix())

	old := il.annualRateBps
	il.annualRateBps = newRateBps

	il.logger.Info().
		Uint64("oldRateBps", old).
		Uint64("newRateBps", newRateBps).
		Msg("Annual interest rate updated")

	return nil
}
