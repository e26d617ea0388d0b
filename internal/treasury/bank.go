package treasury

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/openvault-labs/tvm/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidAmount     = errors.New("transfer amount is invalid")
	ErrInvalidAccount    = errors.New("account identity is empty")
	ErrInsufficientFunds = errors.New("account balance is insufficient")
)

var bankLogger = logger.GetForComponent("treasury_bank")

// Bank is an in-process asset ledger for a single fungible token. It backs
// the Transferor collaborator consumed by the vault and lending ledgers.
// All transfers are atomic: a failed transfer leaves every balance untouched.
type Bank struct {
	mu       sync.Mutex
	balances map[string]sdkmath.Int
}

// NewBank returns an empty Bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]sdkmath.Int),
	}
}

// Mint credits newly created units to an account. Used to seed genesis
// balances and interest reserves.
func (b *Bank) Mint(account string, amount sdkmath.Int) error {
	if account == "" {
		return ErrInvalidAccount
	}
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.balances[account] = b.balance(account).Add(amount)

	bankLogger.Debug().
		Str("account", account).
		Str("amount", amount.String()).
		Msg("Minted units")
	return nil
}

// Transfer moves amount between two accounts atomically.
func (b *Bank) Transfer(from, to string, amount sdkmath.Int) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if amount.IsZero() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance := b.balance(from)
	if fromBalance.LT(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from, fromBalance, amount)
	}

	b.balances[from] = fromBalance.Sub(amount)
	b.balances[to] = b.balance(to).Add(amount)

	bankLogger.Debug().
		Str("from", from).
		Str("to", to).
		Str("amount", amount.String()).
		Msg("Transfer executed")
	return nil
}

// BalanceOf returns the balance of an account. Unknown accounts hold zero.
func (b *Bank) BalanceOf(account string) (sdkmath.Int, error) {
	if account == "" {
		return sdkmath.ZeroInt(), ErrInvalidAccount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balance(account), nil
}

// balance must be called with the mutex held.
func (b *Bank) balance(account string) sdkmath.Int {
	if bal, ok := b.balances[account]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

// Custody returns a Transferor view of this bank bound to the given
// custodial account. The vault ledger and the lending pool each hold their
// own custody view over the same bank.
func (b *Bank) Custody(custodian string) (Transferor, error) {
	if custodian == "" {
		return nil, ErrInvalidAccount
	}
	return &custodyView{bank: b, custodian: custodian}, nil
}

// custodyView binds Bank transfers to a fixed custodial account.
type custodyView struct {
	bank      *Bank
	custodian string
}

func (c *custodyView) Pull(from string, amount sdkmath.Int) error {
	return c.bank.Transfer(from, c.custodian, amount)
}

func (c *custodyView) Push(to string, amount sdkmath.Int) error {
	return c.bank.Transfer(c.custodian, to, amount)
}

func (c *custodyView) BalanceOf(holder string) (sdkmath.Int, error) {
	return c.bank.BalanceOf(holder)
}
