package fixtures_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openyield/vaultsim/fixtures"
	"github.com/openyield/vaultsim/ledger"
)

func TestWorldsAreIndependent(t *testing.T) {
	t.Parallel()

	f1 := fixtures.New(ledger.NewMemory())
	f2 := fixtures.New(ledger.NewMemory())

	assert.NotEqual(t, f1.Gov, f2.Gov)
	assert.NotEqual(t, f1.Asset.Address(), f2.Asset.Address())
}

func TestUserDeposit(t *testing.T) {
	t.Parallel()

	lg := ledger.NewMemory()
	f := fixtures.New(lg)
	v, err := f.CreateVault()
	require.NoError(t, err)

	assert.True(t, fixtures.CheckVaultEmpty(v))

	require.NoError(t, f.UserDeposit(f.Fish, v, f.FishAmount))

	assert.False(t, fixtures.CheckVaultEmpty(v))
	assert.Equal(t, f.FishAmount, v.BalanceOf(f.Fish))

	// Mint and deposit both hit the ledger.
	assert.NotEmpty(t, lg.Transfers())
	assert.NotEmpty(t, lg.Events())
}
