// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/tvm/internal/types"
)

// SaveVaultSnapshot persists a combined ledger snapshot and returns its id.
func SaveVaultSnapshot(snapshot types.VaultSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	holdersJSON, err := json.Marshal(snapshot.Holders)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal holders: %w", err)
	}

	poolAccountsJSON, err := json.Marshal(snapshot.PoolAccounts)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal pool_accounts: %w", err)
	}

	query := `
		INSERT INTO vault_snapshots (
			cycle_number, snapshot_timestamp,
			total_shares, total_assets,
			deposit_fee_bps, withdrawal_fee_bps, performance_fee_bps,
			fee_recipient, min_liquidity_reserve, holders,
			total_principal, annual_rate_bps, last_accrual_instant, pool_accounts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.Cycle, snapshot.Timestamp,
		snapshot.TotalShares, snapshot.TotalAssets,
		snapshot.DepositFeeBps, snapshot.WithdrawalFeeBps, snapshot.PerformanceFeeBps,
		nullIfEmpty(snapshot.FeeRecipient), snapshot.MinLiquidityReserve, holdersJSON,
		snapshot.TotalPrincipal, snapshot.AnnualRateBps, snapshot.LastAccrualInstant, poolAccountsJSON,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save vault snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", snapshotID).
		Int("cycle", snapshot.Cycle).
		Str("total_shares", snapshot.TotalShares).
		Str("total_assets", snapshot.TotalAssets).
		Msg("Vault snapshot saved to database")

	return snapshotID, nil
}

// LoadLatestSnapshot returns the most recent vault snapshot, or an error if
// none has been saved yet.
func LoadLatestSnapshot() (*types.VaultSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_id, cycle_number, snapshot_timestamp,
		       total_shares, total_assets,
		       deposit_fee_bps, withdrawal_fee_bps, performance_fee_bps,
		       fee_recipient, min_liquidity_reserve, holders,
		       total_principal, annual_rate_bps, last_accrual_instant, pool_accounts
		FROM vault_snapshots
		ORDER BY snapshot_timestamp DESC, snapshot_id DESC
		LIMIT 1;
	`

	var s types.VaultSnapshot
	var feeRecipient sql.NullString
	var holdersJSON, poolAccountsJSON []byte

	err := DB.QueryRow(query).Scan(
		&s.SnapshotID, &s.Cycle, &s.Timestamp,
		&s.TotalShares, &s.TotalAssets,
		&s.DepositFeeBps, &s.WithdrawalFeeBps, &s.PerformanceFeeBps,
		&feeRecipient, &s.MinLiquidityReserve, &holdersJSON,
		&s.TotalPrincipal, &s.AnnualRateBps, &s.LastAccrualInstant, &poolAccountsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no vault snapshot recorded yet")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest vault snapshot: %w", err)
	}

	s.FeeRecipient = feeRecipient.String
	if len(holdersJSON) > 0 {
		if err := json.Unmarshal(holdersJSON, &s.Holders); err != nil {
			return nil, fmt.Errorf("failed to unmarshal holders: %w", err)
		}
	}
	if len(poolAccountsJSON) > 0 {
		if err := json.Unmarshal(poolAccountsJSON, &s.PoolAccounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pool_accounts: %w", err)
		}
	}

	return &s, nil
}
