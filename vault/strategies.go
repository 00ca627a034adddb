package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
)

// AddStrategy attaches a strategy so debt can be allocated to it.
// Requires RoleAddStrategyManager.
func (v *Vault) AddStrategy(sender chain.Address, s Strategy) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireRoleLocked(sender, RoleAddStrategyManager); err != nil {
		return nil, fmt.Errorf("add strategy: %w", err)
	}
	addr := s.Address()
	if addr == chain.ZeroAddress {
		return nil, fmt.Errorf("add strategy: %w", ErrInactiveStrategy)
	}
	if v.strategies[addr] != nil {
		return nil, fmt.Errorf("add strategy %s: %w", addr, ErrStrategyActive)
	}

	rcpt := chain.NewReceipt()
	v.strategies[addr] = &StrategyParams{
		ActivationTx: rcpt.TxID,
		CurrentDebt:  chain.Zero(),
		MaxDebt:      chain.Zero(),
	}
	v.attached[addr] = s

	v.emit(rcpt, "StrategyChanged", StrategyChanged{Strategy: addr, Change: "added"})
	return rcpt, nil
}

// RevokeStrategy detaches a strategy. Its debt must already be zero.
// Requires RoleAddStrategyManager.
func (v *Vault) RevokeStrategy(sender, strategy chain.Address) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireRoleLocked(sender, RoleAddStrategyManager); err != nil {
		return nil, fmt.Errorf("revoke strategy: %w", err)
	}
	params := v.strategies[strategy]
	if params == nil {
		return nil, fmt.Errorf("revoke strategy %s: %w", strategy, ErrInactiveStrategy)
	}
	if !params.CurrentDebt.IsZero() {
		return nil, fmt.Errorf("revoke strategy %s: strategy has debt", strategy)
	}

	delete(v.strategies, strategy)
	delete(v.attached, strategy)
	for i, addr := range v.defaultQueue {
		if addr == strategy {
			v.defaultQueue = append(v.defaultQueue[:i], v.defaultQueue[i+1:]...)
			break
		}
	}

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "StrategyChanged", StrategyChanged{Strategy: strategy, Change: "revoked"})
	return rcpt, nil
}

// UpdateMaxDebtForStrategy sets the debt ceiling for an attached strategy.
// Requires RoleMaxDebtManager.
func (v *Vault) UpdateMaxDebtForStrategy(sender, strategy chain.Address, maxDebt *uint256.Int) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireRoleLocked(sender, RoleMaxDebtManager); err != nil {
		return nil, fmt.Errorf("update max debt: %w", err)
	}
	params := v.strategies[strategy]
	if params == nil {
		return nil, fmt.Errorf("update max debt: %w", ErrInactiveStrategy)
	}
	params.MaxDebt = maxDebt.Clone()

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "UpdatedMaxDebtForStrategy", UpdatedMaxDebtForStrategy{
		Strategy: strategy,
		MaxDebt:  maxDebt.Clone(),
	})
	return rcpt, nil
}

// UpdateDebt moves a strategy's debt toward target: funding it from idle
// assets on the way up, pulling liquidity back on the way down. The target
// is capped by the strategy's max debt. Requires RoleDebtManager.
func (v *Vault) UpdateDebt(sender, strategy chain.Address, target *uint256.Int) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireRoleLocked(sender, RoleDebtManager); err != nil {
		return nil, fmt.Errorf("update debt: %w", err)
	}
	params := v.strategies[strategy]
	s := v.attached[strategy]
	if params == nil || s == nil {
		return nil, fmt.Errorf("update debt: %w", ErrInactiveStrategy)
	}

	target = target.Clone()
	if target.Gt(params.MaxDebt) {
		target = params.MaxDebt.Clone()
	}
	current := params.CurrentDebt.Clone()

	switch {
	case target.Gt(current):
		delta := new(uint256.Int).Sub(target, current)
		if v.totalIdle.Lt(delta) {
			return nil, fmt.Errorf("update debt: %w", ErrInsufficientAssets)
		}
		if _, err := v.asset.Approve(v.addr, strategy, delta); err != nil {
			return nil, fmt.Errorf("update debt: %w", err)
		}
		if _, err := s.Deposit(v.addr, delta, v.addr); err != nil {
			return nil, fmt.Errorf("fund strategy %s: %w", strategy, err)
		}
		v.totalIdle.Sub(v.totalIdle, delta)
		v.totalDebt.Add(v.totalDebt, delta)

	case current.Gt(target):
		delta := new(uint256.Int).Sub(current, target)
		if avail := s.MaxWithdraw(v.addr); avail.Lt(delta) {
			// Pull what the strategy can give; debt lands above target.
			delta = avail
			target = new(uint256.Int).Sub(current, delta)
		}
		if !delta.IsZero() {
			if _, err := s.Withdraw(v.addr, delta, v.addr, v.addr); err != nil {
				return nil, fmt.Errorf("defund strategy %s: %w", strategy, err)
			}
			v.totalIdle.Add(v.totalIdle, delta)
			v.totalDebt.Sub(v.totalDebt, delta)
		}
	}

	params.CurrentDebt = target.Clone()

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "DebtUpdated", DebtUpdated{
		Strategy:    strategy,
		CurrentDebt: current,
		NewDebt:     target.Clone(),
	})
	return rcpt, nil
}

// SetDefaultQueue replaces the withdrawal queue. Every entry must be an
// attached strategy. Requires RoleQueueManager.
func (v *Vault) SetDefaultQueue(sender chain.Address, queue []chain.Address) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireRoleLocked(sender, RoleQueueManager); err != nil {
		return nil, fmt.Errorf("set default queue: %w", err)
	}
	for _, addr := range queue {
		if v.strategies[addr] == nil {
			return nil, fmt.Errorf("set default queue: %w", ErrInactiveStrategy)
		}
	}
	v.defaultQueue = append([]chain.Address(nil), queue...)

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "UpdateDefaultQueue", UpdateDefaultQueue{
		Queue: append([]chain.Address(nil), queue...),
	})
	return rcpt, nil
}

// DefaultQueue returns a copy of the current withdrawal queue.
func (v *Vault) DefaultQueue() []chain.Address {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]chain.Address(nil), v.defaultQueue...)
}

// Strategies returns the vault-side params for one strategy, or nil if it
// is not attached.
func (v *Vault) Strategies(strategy chain.Address) *StrategyParams {
	v.mu.Lock()
	defer v.mu.Unlock()

	params := v.strategies[strategy]
	if params == nil {
		return nil
	}
	return &StrategyParams{
		ActivationTx: params.ActivationTx,
		CurrentDebt:  params.CurrentDebt.Clone(),
		MaxDebt:      params.MaxDebt.Clone(),
	}
}
