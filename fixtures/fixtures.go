// Package fixtures builds the standard cast for a simulation or test run:
// a governance account, an unprivileged account, an asset, and a factory,
// plus the helpers that wire vaults and strategies together. Everything is
// constructed explicitly so runs stay independent; there are no package
// globals.
package fixtures

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/factory"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/strategy"
	"github.com/openyield/vaultsim/token"
	"github.com/openyield/vaultsim/vault"
)

// Fixtures is one self-contained simulation world.
type Fixtures struct {
	Gov   chain.Address // governance: token owner, factory governance, role manager
	Bunny chain.Address // unprivileged account
	Fish  chain.Address // depositor account

	FishAmount *uint256.Int // standard deposit size: 10 whole tokens

	Asset   *token.Token
	Factory *factory.Factory
	Ledger  ledger.Ledger
}

// New builds a fresh world recording to lg. Pass nil to skip recording.
func New(lg ledger.Ledger) *Fixtures {
	gov := chain.NewAddress()
	return &Fixtures{
		Gov:        gov,
		Bunny:      chain.NewAddress(),
		Fish:       chain.NewAddress(),
		FishAmount: chain.Units(10),
		Asset:      token.New("Test Asset", "ASSET", chain.Decimals, gov, lg),
		Factory:    factory.New("Vault Factory", gov, lg),
		Ledger:     lg,
	}
}

// CreateVault deploys a vault over the world's asset with Gov as role
// manager.
func (f *Fixtures) CreateVault() (*vault.Vault, error) {
	v, _, err := f.Factory.DeployNewVault(f.Gov, f.Asset, "Test Vault", "vASSET", f.Gov)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}
	return v, nil
}

// CreateStrategy builds a fresh generic strategy serving v.
func (f *Fixtures) CreateStrategy(v *vault.Vault) (strategy.Strategy, error) {
	return strategy.ByName("generic", f.Asset, v.Address(), f.Ledger)
}

// UserDeposit mints amount to user and deposits it into the vault for the
// user's own account.
func (f *Fixtures) UserDeposit(user chain.Address, v *vault.Vault, amount *uint256.Int) error {
	if _, err := f.Asset.Mint(f.Gov, user, amount); err != nil {
		return fmt.Errorf("user deposit: %w", err)
	}
	if _, err := f.Asset.Approve(user, v.Address(), amount); err != nil {
		return fmt.Errorf("user deposit: %w", err)
	}
	if _, err := v.Deposit(user, amount, user); err != nil {
		return fmt.Errorf("user deposit: %w", err)
	}
	return nil
}

// AddStrategyToVault attaches s to v as sender.
func (f *Fixtures) AddStrategyToVault(sender chain.Address, s strategy.Strategy, v *vault.Vault) error {
	if _, err := v.AddStrategy(sender, s); err != nil {
		return err
	}
	return nil
}

// AddDebtToStrategy raises s's max debt to amount and funds it fully.
func (f *Fixtures) AddDebtToStrategy(sender chain.Address, s strategy.Strategy, v *vault.Vault, amount *uint256.Int) error {
	if _, err := v.UpdateMaxDebtForStrategy(sender, s.Address(), amount); err != nil {
		return fmt.Errorf("add debt: %w", err)
	}
	if _, err := v.UpdateDebt(sender, s.Address(), amount); err != nil {
		return fmt.Errorf("add debt: %w", err)
	}
	return nil
}

// MintAndDepositIntoStrategy mints amount of the asset to Gov and deposits
// it into the strategy with the vault as the share receiver, mirroring a
// vault funding its strategy.
func (f *Fixtures) MintAndDepositIntoStrategy(s strategy.Strategy, v *vault.Vault, amount *uint256.Int) error {
	if _, err := f.Asset.Mint(f.Gov, f.Gov, amount); err != nil {
		return fmt.Errorf("mint and deposit: %w", err)
	}
	if _, err := f.Asset.Approve(f.Gov, s.Address(), amount); err != nil {
		return fmt.Errorf("mint and deposit: %w", err)
	}
	if _, err := s.Deposit(f.Gov, amount, v.Address()); err != nil {
		return fmt.Errorf("mint and deposit: %w", err)
	}
	return nil
}

// CheckVaultEmpty reports whether the vault holds no shares and no assets.
func CheckVaultEmpty(v *vault.Vault) bool {
	return v.TotalAssets().IsZero() &&
		v.TotalSupply().IsZero() &&
		v.TotalIdle().IsZero() &&
		v.TotalDebt().IsZero()
}
