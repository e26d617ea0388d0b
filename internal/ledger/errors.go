package ledger

import "errors"

// Error definitions for zero-tolerance error handling. Every error aborts
// the enclosing operation with no partial state mutation; nothing is
// logged-and-swallowed.
var (
	ErrZeroAmount            = errors.New("amount must be greater than zero")
	ErrInsufficientFunds     = errors.New("requested amount exceeds custodied assets")
	ErrInsufficientBalance   = errors.New("requested amount exceeds account balance")
	ErrInsufficientAllowance = errors.New("spender allowance is insufficient")
	ErrInsufficientLiquidity = errors.New("routing would breach the minimum liquidity reserve")
	ErrInvalidExecuteParams  = errors.New("routing parameter arrays are mismatched")
	ErrFeeTooHigh            = errors.New("fee rate exceeds its ceiling")
	ErrRateTooHigh           = errors.New("interest rate exceeds its ceiling")
	ErrInvalidFeeRecipient   = errors.New("fee recipient is invalid")
	ErrUnauthorizedCaller    = errors.New("caller is not authorized for this capability")
	ErrReentrantCall         = errors.New("reentrant call rejected")
	ErrZeroAddress           = errors.New("account identity is empty")
)
