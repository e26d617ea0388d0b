package treasury

import (
	sdkmath "cosmossdk.io/math"
)

// Transferor is the value-transfer collaborator a ledger custodies assets
// through. Every call is all-or-nothing: on error no balance has moved, and
// the enclosing ledger operation must abort.
//
// A Transferor is bound to a single custodial account. Pull moves value from
// a holder into custody, Push moves value out of custody to a holder.
type Transferor interface {
	// Pull moves amount from the holder into the custodial account.
	Pull(from string, amount sdkmath.Int) error

	// Push moves amount from the custodial account to the holder.
	Push(to string, amount sdkmath.Int) error

	// BalanceOf returns the current balance of any holder, including the
	// custodial account itself.
	BalanceOf(holder string) (sdkmath.Int, error)
}
