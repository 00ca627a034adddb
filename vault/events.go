package vault

import (
	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
)

// Deposit is emitted when assets enter the vault.
type Deposit struct {
	Sender chain.Address
	Owner  chain.Address
	Assets *uint256.Int
	Shares *uint256.Int
}

// Withdraw is emitted when assets leave the vault.
type Withdraw struct {
	Sender   chain.Address
	Receiver chain.Address
	Owner    chain.Address
	Assets   *uint256.Int
	Shares   *uint256.Int
}

// StrategyChanged is emitted when a strategy is added or revoked.
type StrategyChanged struct {
	Strategy chain.Address
	Change   string // "added" or "revoked"
}

// UpdatedMaxDebtForStrategy is emitted when a strategy's debt ceiling moves.
type UpdatedMaxDebtForStrategy struct {
	Strategy chain.Address
	MaxDebt  *uint256.Int
}

// DebtUpdated is emitted when the vault moves funds into or out of a strategy.
type DebtUpdated struct {
	Strategy    chain.Address
	CurrentDebt *uint256.Int
	NewDebt     *uint256.Int
}

// RoleSet is emitted when an account's roles are replaced.
type RoleSet struct {
	Account chain.Address
	Role    Role
}

// UpdateDefaultQueue is emitted when the withdrawal queue is replaced.
type UpdateDefaultQueue struct {
	Queue []chain.Address
}
