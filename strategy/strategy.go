// Package strategy implements the tokenized strategies a vault can route
// deposits into. A strategy holds the underlying asset and issues its own
// shares against it, so the vault's claim on a strategy is just a share
// balance.
package strategy

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/token"
)

// Strategy is the surface a vault needs from any strategy implementation.
type Strategy interface {
	Address() chain.Address
	Asset() *token.Token

	Deposit(sender chain.Address, assets *uint256.Int, receiver chain.Address) (*chain.Receipt, error)
	Withdraw(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address) (*chain.Receipt, error)

	MaxWithdraw(owner chain.Address) *uint256.Int
	TotalAssets() *uint256.Int
	BalanceOf(owner chain.Address) *uint256.Int
}

// Factory builds a strategy over asset, bound to the vault it will serve.
type Factory func(asset *token.Token, vault chain.Address, lg ledger.Ledger) Strategy

var registry = map[string]Factory{}

func Register(name string, f Factory) {
	registry[name] = f
}

func Get(name string) Factory {
	return registry[name]
}

// ByName builds a registered strategy by name.
func ByName(name string, asset *token.Token, vault chain.Address, lg ledger.Ledger) (Strategy, error) {
	f := registry[strings.ToLower(strings.TrimSpace(name))]
	if f == nil {
		return nil, fmt.Errorf("unknown strategy %q (supported: generic, locked)", name)
	}
	return f(asset, vault, lg), nil
}

func init() {
	Register("generic", func(asset *token.Token, vault chain.Address, lg ledger.Ledger) Strategy {
		return NewGeneric(asset, vault, lg)
	})
	Register("locked", func(asset *token.Token, vault chain.Address, lg ledger.Ledger) Strategy {
		return NewLocked(asset, vault, nil, lg)
	})
}
