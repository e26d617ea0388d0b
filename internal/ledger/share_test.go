package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvault-labs/tvm/internal/auth"
	"github.com/openvault-labs/tvm/internal/treasury"
)

const (
	vaultAccount = "vault"
	ownerAccount = "owner"
	feeAccount   = "fees"
	alice        = "alice"
	bob          = "bob"
)

type vaultFixture struct {
	bank    *treasury.Bank
	custody treasury.Transferor
	roles   *auth.RoleTable
	ledger  *ShareLedger
}

func newVaultFixture(t *testing.T, cfg ShareLedgerConfig) *vaultFixture {
	t.Helper()

	bank := treasury.NewBank()
	custody, err := bank.Custody(vaultAccount)
	require.NoError(t, err)

	roles := auth.NewRoleTable()
	for _, capability := range []auth.Capability{
		auth.CapSetFees, auth.CapCollectFees, auth.CapRouteFunds, auth.CapTransferOwnership,
	} {
		roles.Grant(ownerAccount, capability)
	}

	cfg.VaultAccount = vaultAccount
	cfg.Owner = ownerAccount
	cfg.Treasury = custody
	cfg.Authorizer = roles

	sl, err := NewShareLedger(cfg)
	require.NoError(t, err)

	require.NoError(t, bank.Mint(alice, sdkmath.NewInt(1_000_000)))
	require.NoError(t, bank.Mint(bob, sdkmath.NewInt(1_000_000)))

	return &vaultFixture{bank: bank, custody: custody, roles: roles, ledger: sl}
}

func (f *vaultFixture) balance(t *testing.T, account string) sdkmath.Int {
	t.Helper()
	bal, err := f.bank.BalanceOf(account)
	require.NoError(t, err)
	return bal
}

func TestDeposit_InitialPricingIsOneToOne(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	shares, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewInt(1000), shares)
	assert.Equal(t, sdkmath.NewInt(1000), f.ledger.TotalShares())
	assert.Equal(t, sdkmath.NewInt(1000), f.ledger.SharesOf(alice))
	assert.Equal(t, sdkmath.NewInt(1000), f.balance(t, vaultAccount))
}

func TestDeposit_FeeExactness(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		DepositFeeBps: 50,
		FeeRecipient:  feeAccount,
	})

	shares, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// fee = floor(1000 * 50 / 10000) = 5, net = 995 at 1:1 initial pricing
	assert.Equal(t, sdkmath.NewInt(995), shares)
	assert.Equal(t, sdkmath.NewInt(5), f.balance(t, feeAccount))
	assert.Equal(t, sdkmath.NewInt(995), f.balance(t, vaultAccount))
}

func TestDeposit_ZeroAmount(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = f.ledger.Deposit(alice, alice, sdkmath.NewInt(-5))
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestDeposit_ProportionalPricing(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Simulate yield: vault balance doubles while shares stay constant.
	require.NoError(t, f.bank.Mint(vaultAccount, sdkmath.NewInt(1000)))

	// Bob deposits 1000 against 2000 assets and 1000 shares: 500 shares.
	shares, err := f.ledger.Deposit(bob, bob, sdkmath.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(500), shares)
	assert.Equal(t, sdkmath.NewInt(1500), f.ledger.TotalShares())
}

func TestDeposit_FeeContributesNoShares(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		DepositFeeBps: 100,
		FeeRecipient:  feeAccount,
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(10_000))
	require.NoError(t, err)

	// Vault custody holds exactly the net amount; the fee went to the
	// recipient and minted nothing.
	assert.Equal(t, sdkmath.NewInt(9900), f.balance(t, vaultAccount))
	assert.Equal(t, sdkmath.NewInt(100), f.balance(t, feeAccount))
	assert.Equal(t, f.ledger.TotalShares(), f.ledger.SharesOf(alice))
}

func TestWithdraw_BurnsExactShares(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	before := f.balance(t, alice)
	shares, err := f.ledger.Withdraw(alice, alice, alice, sdkmath.NewInt(400))
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewInt(400), shares)
	assert.Equal(t, sdkmath.NewInt(600), f.ledger.TotalShares())
	assert.Equal(t, before.AddRaw(400), f.balance(t, alice))
	assert.Equal(t, sdkmath.NewInt(600), f.balance(t, vaultAccount))
}

func TestWithdraw_FeeOnGrossAmount(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		WithdrawalFeeBps: 100,
		FeeRecipient:     feeAccount,
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(10_000))
	require.NoError(t, err)

	before := f.balance(t, alice)
	shares, err := f.ledger.Withdraw(alice, alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// fee = floor(1000 * 100 / 10000) = 10 on the gross amount
	assert.Equal(t, sdkmath.NewInt(1000), shares)
	assert.Equal(t, before.AddRaw(990), f.balance(t, alice))
	assert.Equal(t, sdkmath.NewInt(10), f.balance(t, feeAccount))
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	_, err = f.ledger.Withdraw(alice, alice, alice, sdkmath.NewInt(2000))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestWithdraw_NoSharesOutstanding(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	// Donated assets sit in custody with zero shares outstanding; there is
	// no owner to debit, so nothing may be paid out.
	require.NoError(t, f.bank.Mint(vaultAccount, sdkmath.NewInt(1000)))

	before := f.balance(t, alice)
	_, err := f.ledger.Withdraw(alice, alice, alice, sdkmath.NewInt(500))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, before, f.balance(t, alice))
	assert.Equal(t, sdkmath.NewInt(1000), f.balance(t, vaultAccount))

	// Third-party caller with no allowance on record takes the same path.
	_, err = f.ledger.Withdraw(bob, bob, alice, sdkmath.NewInt(500))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, sdkmath.NewInt(1000), f.balance(t, vaultAccount))
}

func TestWithdraw_RequiresAllowanceForThirdParty(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	_, err = f.ledger.Withdraw(bob, bob, alice, sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, f.ledger.Approve(alice, bob, sdkmath.NewInt(150)))

	shares, err := f.ledger.Withdraw(bob, bob, alice, sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(100), shares)

	// Allowance was spent down; a second withdrawal beyond it fails.
	assert.Equal(t, sdkmath.NewInt(50), f.ledger.Allowance(alice, bob))
	_, err = f.ledger.Withdraw(bob, bob, alice, sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestRedeem_ReturnsNetAssets(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		WithdrawalFeeBps: 100,
		FeeRecipient:     feeAccount,
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(10_000))
	require.NoError(t, err)

	before := f.balance(t, alice)
	assets, err := f.ledger.Redeem(alice, alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewInt(990), assets)
	assert.Equal(t, before.AddRaw(990), f.balance(t, alice))
	assert.Equal(t, sdkmath.NewInt(9000), f.ledger.TotalShares())
}

func TestRedeem_ZeroValueShares(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Drain the vault so outstanding shares price to zero assets.
	require.NoError(t, f.bank.Transfer(vaultAccount, "sink", sdkmath.NewInt(1000)))

	_, err = f.ledger.Redeem(alice, alice, alice, sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestConservation_ZeroFeeSequence(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(5000))
	require.NoError(t, err)
	_, err = f.ledger.Deposit(bob, bob, sdkmath.NewInt(3000))
	require.NoError(t, err)
	_, err = f.ledger.Withdraw(alice, alice, alice, sdkmath.NewInt(1200))
	require.NoError(t, err)
	_, err = f.ledger.Redeem(bob, bob, bob, sdkmath.NewInt(700))
	require.NoError(t, err)

	sum := sdkmath.ZeroInt()
	for _, bal := range f.ledger.Holders() {
		sum = sum.Add(bal)
	}
	assert.Equal(t, f.ledger.TotalShares(), sum)

	// With zero fees, custodied assets equal net deposits minus withdrawals.
	assert.Equal(t, sdkmath.NewInt(5000+3000-1200-700), f.balance(t, vaultAccount))
}

func TestPreviewDeposit_DegenerateStateResetsToPar(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Full drain: shares outstanding but zero custodied assets.
	require.NoError(t, f.bank.Transfer(vaultAccount, "sink", sdkmath.NewInt(1000)))
	require.True(t, f.ledger.TotalShares().IsPositive())

	shares, err := f.ledger.PreviewDeposit(sdkmath.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(500), shares)
}

func TestPreviewWithdraw_RoundsUp(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Yield makes each share worth 1.5 assets: withdrawing 100 assets
	// must burn ceil(100 * 1000 / 1500) = 67 shares, not 66.
	require.NoError(t, f.bank.Mint(vaultAccount, sdkmath.NewInt(500)))

	shares, err := f.ledger.PreviewWithdraw(sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(67), shares)
}

func TestRouteFunds_LiquidityReserve(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		MinLiquidityReserve: sdkmath.NewInt(500),
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	destinations := []string{"strategy-a"}
	payloads := [][]byte{nil}

	// 1000 - 400 = 600 >= 500: allowed.
	err = f.ledger.RouteFunds(ownerAccount, destinations, payloads, []sdkmath.Int{sdkmath.NewInt(400)})
	require.NoError(t, err)

	// 1000 - 600 = 400 < 500: breach.
	err = f.ledger.RouteFunds(ownerAccount, destinations, payloads, []sdkmath.Int{sdkmath.NewInt(600)})
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestRouteFunds_MismatchedArrays(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	err := f.ledger.RouteFunds(ownerAccount,
		[]string{"a", "b"},
		[][]byte{nil},
		[]sdkmath.Int{sdkmath.NewInt(1), sdkmath.NewInt(2)},
	)
	assert.ErrorIs(t, err, ErrInvalidExecuteParams)
}

func TestRouteFunds_EmptyRequestIsVacuouslyLiquid(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		MinLiquidityReserve: sdkmath.NewInt(500),
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Routing nothing moves nothing; only the length symmetry and the
	// reserve floor are checked.
	assert.NoError(t, f.ledger.RouteFunds(ownerAccount, nil, nil, nil))
}

func TestRouteFunds_Unauthorized(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	err := f.ledger.RouteFunds(alice, []string{"a"}, [][]byte{nil}, []sdkmath.Int{sdkmath.NewInt(1)})
	assert.ErrorIs(t, err, ErrUnauthorizedCaller)
}

func TestCollectPerformanceFee_NaiveBase(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{
		PerformanceFeeBps: 1000,
		FeeRecipient:      feeAccount,
	})

	_, err := f.ledger.Deposit(alice, alice, sdkmath.NewInt(10_000))
	require.NoError(t, err)

	fee, err := f.ledger.CollectPerformanceFee(ownerAccount)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(1000), fee)

	// A second collection re-taxes the reduced balance: 9000 * 10% = 900.
	fee, err = f.ledger.CollectPerformanceFee(ownerAccount)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(900), fee)

	assert.Equal(t, sdkmath.NewInt(1900), f.balance(t, feeAccount))
}

func TestFeeSetters_Boundaries(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	require.NoError(t, f.ledger.SetDepositFee(ownerAccount, 1000))
	assert.ErrorIs(t, f.ledger.SetDepositFee(ownerAccount, 1001), ErrFeeTooHigh)

	require.NoError(t, f.ledger.SetWithdrawalFee(ownerAccount, 1000))
	assert.ErrorIs(t, f.ledger.SetWithdrawalFee(ownerAccount, 1001), ErrFeeTooHigh)

	require.NoError(t, f.ledger.SetPerformanceFee(ownerAccount, 3000))
	assert.ErrorIs(t, f.ledger.SetPerformanceFee(ownerAccount, 3001), ErrFeeTooHigh)

	assert.ErrorIs(t, f.ledger.SetDepositFee(alice, 100), ErrUnauthorizedCaller)
}

func TestSetMinLiquidityReserve(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	require.NoError(t, f.ledger.SetMinLiquidityReserve(ownerAccount, sdkmath.NewInt(750)))
	assert.Equal(t, sdkmath.NewInt(750), f.ledger.MinLiquidityReserve())

	// Zero clears the floor; negatives are rejected.
	require.NoError(t, f.ledger.SetMinLiquidityReserve(ownerAccount, sdkmath.ZeroInt()))
	assert.ErrorIs(t, f.ledger.SetMinLiquidityReserve(ownerAccount, sdkmath.NewInt(-1)), ErrZeroAmount)

	assert.ErrorIs(t, f.ledger.SetMinLiquidityReserve(alice, sdkmath.NewInt(100)), ErrUnauthorizedCaller)
}

func TestSetFeeRecipient_RejectsEmpty(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	require.NoError(t, f.ledger.SetFeeRecipient(ownerAccount, feeAccount))
	assert.Equal(t, feeAccount, f.ledger.FeeRecipient())

	assert.ErrorIs(t, f.ledger.SetFeeRecipient(ownerAccount, ""), ErrInvalidFeeRecipient)
}

func TestTransferOwnership(t *testing.T) {
	f := newVaultFixture(t, ShareLedgerConfig{})

	assert.ErrorIs(t, f.ledger.TransferOwnership(alice, bob), ErrUnauthorizedCaller)

	require.NoError(t, f.ledger.TransferOwnership(ownerAccount, bob))
	assert.Equal(t, bob, f.ledger.Owner())
}

// reentrantTransferor wraps a Transferor and calls back into the ledger
// during Pull, simulating a collaborator re-entering an in-flight operation.
type reentrantTransferor struct {
	treasury.Transferor
	ledger *ShareLedger
	reErr  error
}

func (r *reentrantTransferor) Pull(from string, amount sdkmath.Int) error {
	_, r.reErr = r.ledger.Deposit(from, from, amount)
	return r.Transferor.Pull(from, amount)
}

func TestDeposit_RejectsReentrancy(t *testing.T) {
	bank := treasury.NewBank()
	custody, err := bank.Custody(vaultAccount)
	require.NoError(t, err)
	require.NoError(t, bank.Mint(alice, sdkmath.NewInt(10_000)))

	hook := &reentrantTransferor{Transferor: custody}
	sl, err := NewShareLedger(ShareLedgerConfig{
		VaultAccount: vaultAccount,
		Owner:        ownerAccount,
		Treasury:     hook,
		Authorizer:   auth.NewRoleTable(),
	})
	require.NoError(t, err)
	hook.ledger = sl

	_, err = sl.Deposit(alice, alice, sdkmath.NewInt(1000))
	require.NoError(t, err)

	// The nested call made by the transferor was rejected by the guard.
	assert.ErrorIs(t, hook.reErr, ErrReentrantCall)
	assert.Equal(t, sdkmath.NewInt(1000), sl.TotalShares())
}
