package strategy

import (
	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/token"
)

// Locked behaves like Generic but caps how much can leave the strategy,
// modelling funds committed to an illiquid position. A nil limit means
// fully liquid.
type Locked struct {
	*Generic
	limit *uint256.Int
}

func NewLocked(asset *token.Token, vault chain.Address, limit *uint256.Int, lg ledger.Ledger) *Locked {
	l := &Locked{Generic: NewGeneric(asset, vault, lg)}
	if limit != nil {
		l.limit = limit.Clone()
	}
	return l
}

// SetWithdrawLimit replaces the liquidity cap.
func (l *Locked) SetWithdrawLimit(limit *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit == nil {
		l.limit = nil
		return
	}
	l.limit = limit.Clone()
}

func (l *Locked) MaxWithdraw(owner chain.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	max := l.maxWithdrawLocked(owner)
	if l.limit != nil && max.Gt(l.limit) {
		return l.limit.Clone()
	}
	return max
}

func (l *Locked) Withdraw(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address) (*chain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.withdrawLocked(sender, assets, receiver, owner, l.limit)
}
