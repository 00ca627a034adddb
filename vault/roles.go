package vault

import (
	"fmt"

	"github.com/openyield/vaultsim/chain"
)

// Role is a bitmask of vault permissions. Roles are granted by the role
// manager and combined with |.
type Role uint64

const (
	RoleAddStrategyManager Role = 1 << iota
	RoleDebtManager
	RoleMaxDebtManager
	RoleQueueManager
	RoleWithdrawLimitManager
)

// SetRole replaces account's role set. Only the role manager may call it.
func (v *Vault) SetRole(sender, account chain.Address, roles Role) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sender != v.roleManager {
		return nil, fmt.Errorf("set role: %w", ErrNotGovernance)
	}
	v.roles[account] = roles

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "RoleSet", RoleSet{Account: account, Role: roles})
	return rcpt, nil
}

// Roles returns account's current role set.
func (v *Vault) Roles(account chain.Address) Role {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.roles[account]
}

func (v *Vault) requireRoleLocked(sender chain.Address, role Role) error {
	if v.roles[sender]&role == 0 {
		return fmt.Errorf("sender %s: %w", sender, ErrNotAllowed)
	}
	return nil
}
