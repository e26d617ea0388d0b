package engine

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openvault-labs/tvm/internal/clock"
	"github.com/openvault-labs/tvm/internal/ledger"
	"github.com/openvault-labs/tvm/internal/logger"
	"github.com/openvault-labs/tvm/internal/state"
	"github.com/openvault-labs/tvm/internal/strategy"
	"github.com/openvault-labs/tvm/internal/types"
)

// Engine composes the two ledgers with the strategy registry and executor,
// records an operation receipt for every mutating call routed through it,
// and runs the periodic snapshot loop.
type Engine struct {
	logger     zerolog.Logger
	shares     *ledger.ShareLedger
	pool       *ledger.InterestLedger
	strategies *strategy.Registry
	executor   strategy.Executor
	clock      clock.Clock

	// persist controls whether receipts and snapshots are written to the
	// database. Persistence is observational; a write failure is logged
	// and never fails the ledger operation itself.
	persist bool

	cycleCount int
}

// Config holds the dependencies for creating an Engine.
type Config struct {
	ShareLedger    *ledger.ShareLedger
	InterestLedger *ledger.InterestLedger
	Strategies     *strategy.Registry
	Executor       strategy.Executor
	Clock          clock.Clock
	Persist        bool
}

// NewEngine creates an engine instance with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	e := &Engine{
		logger:     logger.GetForComponent("vault_engine"),
		shares:     cfg.ShareLedger,
		pool:       cfg.InterestLedger,
		strategies: cfg.Strategies,
		executor:   cfg.Executor,
		clock:      cfg.Clock,
		persist:    cfg.Persist,
	}

	e.logger.Info().
		Bool("persist", e.persist).
		Msg("Engine instance created")

	return e, nil
}

func validateEngineConfig(cfg Config) error {
	if cfg.ShareLedger == nil {
		return fmt.Errorf("share ledger cannot be nil")
	}
	if cfg.InterestLedger == nil {
		return fmt.Errorf("interest ledger cannot be nil")
	}
	if cfg.Strategies == nil {
		return fmt.Errorf("strategy registry cannot be nil")
	}
	if cfg.Executor == nil {
		return fmt.Errorf("strategy executor cannot be nil")
	}
	if cfg.Clock == nil {
		return fmt.Errorf("clock cannot be nil")
	}
	return nil
}

// Deposit routes a vault deposit through the share ledger and records a
// receipt. Returns the shares minted.
func (e *Engine) Deposit(caller, receiver string, assets sdkmath.Int) (sdkmath.Int, error) {
	shares, err := e.shares.Deposit(caller, receiver, assets)
	e.record("vault.deposit", caller, receiver, assets.String(), shares.String(), err)
	return shares, err
}

// Withdraw routes a vault withdrawal. Returns the shares burned.
func (e *Engine) Withdraw(caller, receiver, owner string, assets sdkmath.Int) (sdkmath.Int, error) {
	shares, err := e.shares.Withdraw(caller, receiver, owner, assets)
	e.record("vault.withdraw", caller, receiver, assets.String(), shares.String(), err)
	return shares, err
}

// Redeem routes a vault redemption. Returns the net assets paid out.
func (e *Engine) Redeem(caller, receiver, owner string, shares sdkmath.Int) (sdkmath.Int, error) {
	assets, err := e.shares.Redeem(caller, receiver, owner, shares)
	e.record("vault.redeem", caller, receiver, shares.String(), assets.String(), err)
	return assets, err
}

// CollectPerformanceFee charges the performance fee. Returns the fee
// collected.
func (e *Engine) CollectPerformanceFee(caller string) (sdkmath.Int, error) {
	fee, err := e.shares.CollectPerformanceFee(caller)
	e.record("vault.collect_performance_fee", caller, "", "", fee.String(), err)
	return fee, err
}

// ExecuteStrategy resolves a registered strategy, validates the liquidity
// precondition through the share ledger, and hands execution to the
// executor collaborator.
func (e *Engine) ExecuteStrategy(caller, strategyID string) error {
	s, err := e.strategies.Get(strategyID)
	if err != nil {
		e.record("vault.execute_strategy", caller, strategyID, "", "", err)
		return err
	}

	if err := e.shares.RouteFunds(caller, s.Destinations, s.Payloads, s.Values); err != nil {
		e.record("vault.execute_strategy", caller, strategyID, s.TotalValue().String(), "", err)
		return err
	}

	err = e.executor.Execute(s)
	e.record("vault.execute_strategy", caller, strategyID, s.TotalValue().String(), "", err)
	if err != nil {
		return fmt.Errorf("strategy %s execution failed: %w", strategyID, err)
	}
	return nil
}

// SupplyPrincipal routes a lending-pool deposit.
func (e *Engine) SupplyPrincipal(account string, amount sdkmath.Int) error {
	err := e.pool.Deposit(account, amount)
	e.record("pool.deposit", account, "", amount.String(), "", err)
	return err
}

// WithdrawPrincipal routes a lending-pool withdrawal.
func (e *Engine) WithdrawPrincipal(account string, amount sdkmath.Int) error {
	err := e.pool.Withdraw(account, amount)
	e.record("pool.withdraw", account, "", amount.String(), "", err)
	return err
}

// AccrueInterest commits interest for one pool account.
func (e *Engine) AccrueInterest(account string) error {
	err := e.pool.Accrue(account)
	e.record("pool.accrue", account, "", "", "", err)
	return err
}

// UpdateRate switches the pool's annual interest rate.
func (e *Engine) UpdateRate(caller string, newRateBps uint64) error {
	err := e.pool.UpdateRate(caller, newRateBps)
	e.record("pool.update_rate", caller, "", fmt.Sprintf("%d", newRateBps), "", err)
	return err
}

// record persists an operation receipt when persistence is enabled.
func (e *Engine) record(operation, caller, target, amount, result string, opErr error) {
	if !e.persist {
		return
	}

	receipt := types.OperationReceipt{
		ID:        uuid.New().String(),
		Operation: operation,
		Caller:    caller,
		Target:    target,
		Amount:    amount,
		Result:    result,
		Success:   opErr == nil,
		Timestamp: e.clock.Now(),
	}
	if opErr != nil {
		receipt.Error = opErr.Error()
	}

	if err := state.SaveOperationReceipt(receipt); err != nil {
		e.logger.Warn().Err(err).
			Str("operation", operation).
			Msg("Failed to persist operation receipt")
	}
}

// Snapshot captures the current state of both ledgers.
func (e *Engine) Snapshot() (types.VaultSnapshot, error) {
	totalAssets, err := e.shares.TotalAssets()
	if err != nil {
		return types.VaultSnapshot{}, fmt.Errorf("failed to read custodied assets: %w", err)
	}

	holders := make(map[string]string)
	for holder, bal := range e.shares.Holders() {
		holders[holder] = bal.String()
	}

	principal, accrued := e.pool.Accounts()
	poolAccounts := make(map[string]types.PoolAccountState)
	for account, p := range principal {
		entry := types.PoolAccountState{Principal: p.String(), AccruedInterest: "0"}
		if a, ok := accrued[account]; ok {
			entry.AccruedInterest = a.String()
		}
		poolAccounts[account] = entry
	}
	for account, a := range accrued {
		if _, ok := poolAccounts[account]; !ok {
			poolAccounts[account] = types.PoolAccountState{Principal: "0", AccruedInterest: a.String()}
		}
	}

	return types.VaultSnapshot{
		Cycle:               e.cycleCount,
		Timestamp:           e.clock.Now(),
		TotalShares:         e.shares.TotalShares().String(),
		TotalAssets:         totalAssets.String(),
		DepositFeeBps:       e.shares.DepositFeeBps(),
		WithdrawalFeeBps:    e.shares.WithdrawalFeeBps(),
		PerformanceFeeBps:   e.shares.PerformanceFeeBps(),
		FeeRecipient:        e.shares.FeeRecipient(),
		MinLiquidityReserve: e.shares.MinLiquidityReserve().String(),
		Holders:             holders,
		TotalPrincipal:      e.pool.TotalPrincipal().String(),
		AnnualRateBps:       e.pool.AnnualRateBps(),
		LastAccrualInstant:  e.pool.LastAccrualInstant(),
		PoolAccounts:        poolAccounts,
	}, nil
}

// RunLoop persists a ledger snapshot every interval until the context is
// cancelled.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting engine snapshot loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Take the first snapshot immediately
	e.runCycle()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.runCycle()
		}
	}
}

func (e *Engine) runCycle() {
	e.cycleCount++

	snapshot, err := e.Snapshot()
	if err != nil {
		e.logger.Error().Err(err).Int("cycle", e.cycleCount).Msg("Failed to capture ledger snapshot")
		return
	}

	if !e.persist {
		e.logger.Debug().Int("cycle", e.cycleCount).Msg("Snapshot captured (persistence disabled)")
		return
	}

	snapshotID, err := state.SaveVaultSnapshot(snapshot)
	if err != nil {
		e.logger.Error().Err(err).Int("cycle", e.cycleCount).Msg("Failed to persist ledger snapshot")
		return
	}

	e.logger.Info().
		Int("cycle", e.cycleCount).
		Int64("snapshotId", snapshotID).
		Str("totalShares", snapshot.TotalShares).
		Str("totalAssets", snapshot.TotalAssets).
		Msg("Ledger snapshot persisted")
}
