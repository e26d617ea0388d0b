package types

import "time"

// PoolAccountState is the persisted view of one lending-pool account.
type PoolAccountState struct {
	Principal       string `json:"principal"`
	AccruedInterest string `json:"accrued_interest"`
}

// VaultSnapshot is the periodic persisted view of both ledgers. Amounts are
// stored as decimal strings so arbitrary-precision integers survive the
// round trip through JSONB untruncated.
type VaultSnapshot struct {
	SnapshotID int64     `json:"snapshot_id,omitempty"`
	Cycle      int       `json:"cycle"`
	Timestamp  time.Time `json:"timestamp"`

	// Share ledger
	TotalShares         string            `json:"total_shares"`
	TotalAssets         string            `json:"total_assets"`
	DepositFeeBps       uint64            `json:"deposit_fee_bps"`
	WithdrawalFeeBps    uint64            `json:"withdrawal_fee_bps"`
	PerformanceFeeBps   uint64            `json:"performance_fee_bps"`
	FeeRecipient        string            `json:"fee_recipient"`
	MinLiquidityReserve string            `json:"min_liquidity_reserve"`
	Holders             map[string]string `json:"holders"`

	// Interest ledger
	TotalPrincipal     string                      `json:"total_principal"`
	AnnualRateBps      uint64                      `json:"annual_rate_bps"`
	LastAccrualInstant int64                       `json:"last_accrual_instant"`
	PoolAccounts       map[string]PoolAccountState `json:"pool_accounts"`
}
