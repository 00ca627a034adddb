package vault_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/fixtures"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/strategy"
	"github.com/openyield/vaultsim/vault"
)

const managerRoles = vault.RoleAddStrategyManager |
	vault.RoleDebtManager |
	vault.RoleMaxDebtManager |
	vault.RoleQueueManager

// newFundedVault builds a vault with one funded strategy: fish has
// deposited FishAmount and the full amount sits in the strategy as debt.
func newFundedVault(t *testing.T) (*fixtures.Fixtures, *vault.Vault, strategy.Strategy) {
	t.Helper()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)
	strat, err := f.CreateStrategy(v)
	require.NoError(t, err)

	_, err = v.SetRole(f.Gov, f.Gov, managerRoles)
	require.NoError(t, err)

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))
	require.NoError(t, f.AddStrategyToVault(f.Gov, strat, v))
	require.NoError(t, f.AddDebtToStrategy(f.Gov, strat, v, f.FishAmount))

	return f, v, strat
}

func TestDepositMintsShares(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))

	assert.Equal(t, f.FishAmount, v.BalanceOf(f.Fish))
	assert.Equal(t, f.FishAmount, v.TotalIdle())
	assert.Equal(t, f.FishAmount, v.MaxWithdraw(f.Fish))
	assert.Equal(t, f.FishAmount, f.Asset.BalanceOf(v.Address()))
}

func TestDepositZeroReverts(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	_, err = v.Deposit(f.Fish, chain.Zero(), f.Fish)
	require.ErrorIs(t, err, vault.ErrZeroAmount)
}

func TestWithdrawNoQueueWithInsufficientFundsInVaultReverts(t *testing.T) {
	t.Parallel()

	f, v, _ := newFundedVault(t)

	// Empty the queue so withdraw can only use idle funds.
	_, err := v.SetDefaultQueue(f.Gov, nil)
	require.NoError(t, err)

	_, err = v.Withdraw(f.Fish, f.FishAmount, f.Fish, f.Fish)
	require.ErrorIs(t, err, vault.ErrInsufficientAssets)

	// Nothing moved.
	assert.Equal(t, f.FishAmount, v.BalanceOf(f.Fish))
	assert.Equal(t, f.FishAmount, v.TotalDebt())
}

func TestWithdrawQueueWithInsufficientFundsInVaultWithdraws(t *testing.T) {
	t.Parallel()

	f, v, strat := newFundedVault(t)

	_, err := v.SetDefaultQueue(f.Gov, []chain.Address{strat.Address()})
	require.NoError(t, err)

	rcpt, err := v.Withdraw(f.Fish, f.FishAmount, f.Fish, f.Fish)
	require.NoError(t, err)

	evs := chain.EventsOf[vault.Withdraw](rcpt)
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, f.Fish, last.Sender)
	assert.Equal(t, f.Fish, last.Receiver)
	assert.Equal(t, f.Fish, last.Owner)
	assert.Equal(t, f.FishAmount, last.Shares)
	assert.Equal(t, f.FishAmount, last.Assets)

	assert.True(t, fixtures.CheckVaultEmpty(v))
	assert.True(t, f.Asset.BalanceOf(v.Address()).IsZero())
	assert.True(t, f.Asset.BalanceOf(strat.Address()).IsZero())
	assert.Equal(t, f.FishAmount, f.Asset.BalanceOf(f.Fish))
}

func TestWithdrawQueueWithInactiveStrategyReverts(t *testing.T) {
	t.Parallel()

	f, v, _ := newFundedVault(t)

	inactive, err := f.CreateStrategy(v) // never added to the vault
	require.NoError(t, err)

	_, err = v.Withdraw(f.Fish, f.FishAmount, f.Fish, f.Fish,
		[]chain.Address{inactive.Address()})
	require.ErrorIs(t, err, vault.ErrInactiveStrategy)

	assert.Equal(t, f.FishAmount, v.BalanceOf(f.Fish))
}

func TestWithdrawQueueWithLiquidStrategyWithdraws(t *testing.T) {
	t.Parallel()

	f, v, strat := newFundedVault(t)

	// No default queue; pass the strategy explicitly.
	rcpt, err := v.Withdraw(f.Fish, f.FishAmount, f.Fish, f.Fish,
		[]chain.Address{strat.Address()})
	require.NoError(t, err)

	evs := chain.EventsOf[vault.Withdraw](rcpt)
	require.NotEmpty(t, evs)
	assert.Equal(t, f.FishAmount, evs[len(evs)-1].Assets)

	assert.True(t, fixtures.CheckVaultEmpty(v))
	assert.Equal(t, f.FishAmount, f.Asset.BalanceOf(f.Fish))
}

func TestSetDefaultQueueRejectsInactiveStrategy(t *testing.T) {
	t.Parallel()

	f, v, _ := newFundedVault(t)

	inactive, err := f.CreateStrategy(v)
	require.NoError(t, err)

	_, err = v.SetDefaultQueue(f.Gov, []chain.Address{inactive.Address()})
	require.ErrorIs(t, err, vault.ErrInactiveStrategy)
}

func TestSetRoleRequiresRoleManager(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	_, err = v.SetRole(f.Bunny, f.Bunny, managerRoles)
	require.ErrorIs(t, err, vault.ErrNotGovernance)
	assert.Equal(t, vault.Role(0), v.Roles(f.Bunny))
}

func TestRoleGatedOperationsRejectUnprivileged(t *testing.T) {
	t.Parallel()

	f, v, strat := newFundedVault(t)

	_, err := v.AddStrategy(f.Bunny, strat)
	require.ErrorIs(t, err, vault.ErrNotAllowed)

	_, err = v.UpdateMaxDebtForStrategy(f.Bunny, strat.Address(), chain.Units(1))
	require.ErrorIs(t, err, vault.ErrNotAllowed)

	_, err = v.UpdateDebt(f.Bunny, strat.Address(), chain.Zero())
	require.ErrorIs(t, err, vault.ErrNotAllowed)

	_, err = v.SetDefaultQueue(f.Bunny, nil)
	require.ErrorIs(t, err, vault.ErrNotAllowed)
}

func TestUpdateDebtMovesFundsBothWays(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)
	strat, err := f.CreateStrategy(v)
	require.NoError(t, err)

	_, err = v.SetRole(f.Gov, f.Gov, managerRoles)
	require.NoError(t, err)
	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))
	require.NoError(t, f.AddStrategyToVault(f.Gov, strat, v))

	half := new(uint256.Int).Div(f.FishAmount, chain.Amount(2))

	_, err = v.UpdateMaxDebtForStrategy(f.Gov, strat.Address(), half)
	require.NoError(t, err)

	// Target above max debt gets capped at max.
	rcpt, err := v.UpdateDebt(f.Gov, strat.Address(), f.FishAmount)
	require.NoError(t, err)

	evs := chain.EventsOf[vault.DebtUpdated](rcpt)
	require.Len(t, evs, 1)
	assert.True(t, evs[0].CurrentDebt.IsZero())
	assert.Equal(t, half, evs[0].NewDebt)

	assert.Equal(t, half, v.TotalDebt())
	assert.Equal(t, half, v.TotalIdle())
	assert.Equal(t, half, f.Asset.BalanceOf(strat.Address()))
	assert.Equal(t, half, v.Strategies(strat.Address()).CurrentDebt)

	// Pull everything back.
	_, err = v.UpdateDebt(f.Gov, strat.Address(), chain.Zero())
	require.NoError(t, err)

	assert.True(t, v.TotalDebt().IsZero())
	assert.Equal(t, f.FishAmount, v.TotalIdle())
	assert.True(t, f.Asset.BalanceOf(strat.Address()).IsZero())
}

func TestMaxWithdrawCappedByQueueLiquidity(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	limit := chain.Units(2)
	locked := strategy.NewLocked(f.Asset, v.Address(), limit, f.Ledger)

	_, err = v.SetRole(f.Gov, f.Gov, managerRoles)
	require.NoError(t, err)
	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))
	require.NoError(t, f.AddStrategyToVault(f.Gov, locked, v))
	require.NoError(t, f.AddDebtToStrategy(f.Gov, locked, v, f.FishAmount))

	_, err = v.SetDefaultQueue(f.Gov, []chain.Address{locked.Address()})
	require.NoError(t, err)

	// Fish's claim is FishAmount but only the locked limit is reachable.
	assert.Equal(t, limit, v.MaxWithdraw(f.Fish))

	_, err = v.Withdraw(f.Fish, f.FishAmount, f.Fish, f.Fish)
	require.ErrorIs(t, err, vault.ErrInsufficientAssets)

	_, err = v.Withdraw(f.Fish, limit, f.Fish, f.Fish)
	require.NoError(t, err)
	assert.Equal(t, limit, f.Asset.BalanceOf(f.Fish))
}

func TestRedeemBurnsShares(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))

	_, err = v.Redeem(f.Fish, f.FishAmount, f.Fish, f.Fish)
	require.NoError(t, err)

	assert.True(t, fixtures.CheckVaultEmpty(v))
	assert.Equal(t, f.FishAmount, f.Asset.BalanceOf(f.Fish))
}

func TestRedeemPartialShares(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))

	part := chain.Units(4)
	rcpt, err := v.Redeem(f.Fish, part, f.Fish, f.Fish)
	require.NoError(t, err)

	// The burned shares are exactly the shares quoted in the call, and the
	// assets paid out match the conversion done in the same transaction.
	evs := chain.EventsOf[vault.Withdraw](rcpt)
	require.Len(t, evs, 1)
	assert.Equal(t, part, evs[0].Shares)
	assert.Equal(t, part, evs[0].Assets)

	assert.Equal(t, chain.Units(6), v.BalanceOf(f.Fish))
	assert.Equal(t, part, f.Asset.BalanceOf(f.Fish))
}

func TestRevokeStrategyWithDebtReverts(t *testing.T) {
	t.Parallel()

	f, v, strat := newFundedVault(t)

	_, err := v.RevokeStrategy(f.Gov, strat.Address())
	require.Error(t, err)

	// Clear the debt, then revoke succeeds and the queue drops the entry.
	_, err = v.SetDefaultQueue(f.Gov, []chain.Address{strat.Address()})
	require.NoError(t, err)
	_, err = v.UpdateDebt(f.Gov, strat.Address(), chain.Zero())
	require.NoError(t, err)

	rcpt, err := v.RevokeStrategy(f.Gov, strat.Address())
	require.NoError(t, err)

	evs := chain.EventsOf[vault.StrategyChanged](rcpt)
	require.Len(t, evs, 1)
	assert.Equal(t, "revoked", evs[0].Change)
	assert.Nil(t, v.Strategies(strat.Address()))
	assert.Empty(t, v.DefaultQueue())
}

func TestRepeatedDepositsAreAdditive(t *testing.T) {
	t.Parallel()

	f := fixtures.New(ledger.NewMemory())
	v, err := f.CreateVault()
	require.NoError(t, err)

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))
	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))

	want := new(uint256.Int).Add(f.FishAmount, f.FishAmount)
	assert.Equal(t, want, v.BalanceOf(f.Fish))
	assert.Equal(t, want, v.TotalIdle())
}
