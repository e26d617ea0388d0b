package types

import "time"

// OperationReceipt records the outcome of one mutating ledger operation.
// Receipts are observational: ledger correctness never depends on them.
type OperationReceipt struct {
	ID        string    `json:"id"` // uuid
	Operation string    `json:"operation"`
	Caller    string    `json:"caller"`
	Target    string    `json:"target,omitempty"` // receiver, owner, or strategy id
	Amount    string    `json:"amount,omitempty"`
	Result    string    `json:"result,omitempty"` // shares minted/burned, fee collected
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
