// ./internal/state/receipts_store.go
package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/tvm/internal/types"
)

// SaveOperationReceipt persists one operation receipt.
func SaveOperationReceipt(receipt types.OperationReceipt) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO operation_receipts (
			receipt_id, operation, caller, target, amount, result,
			success, error_message, operation_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := DB.Exec(
		query,
		receipt.ID, receipt.Operation, receipt.Caller,
		nullIfEmpty(receipt.Target), nullIfEmpty(receipt.Amount), nullIfEmpty(receipt.Result),
		receipt.Success, nullIfEmpty(receipt.Error), receipt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save operation receipt: %w", err)
	}

	log.Debug().
		Str("receipt_id", receipt.ID).
		Str("operation", receipt.Operation).
		Bool("success", receipt.Success).
		Msg("Operation receipt saved to database")

	return nil
}

// LoadRecentReceipts returns the most recent operation receipts, newest first.
func LoadRecentReceipts(limit int) ([]types.OperationReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT receipt_id, operation, caller, target, amount, result,
		       success, error_message, operation_timestamp
		FROM operation_receipts
		ORDER BY operation_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.OperationReceipt
	for rows.Next() {
		var r types.OperationReceipt
		var target, amount, result, errMsg sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Operation, &r.Caller, &target, &amount, &result,
			&r.Success, &errMsg, &r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation receipt: %w", err)
		}
		r.Target = target.String
		r.Amount = amount.String
		r.Result = result.String
		r.Error = errMsg.String
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operation receipts: %w", err)
	}

	return receipts, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
