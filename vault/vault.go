// Package vault implements a share-issuing vault over a single asset.
// Depositors receive shares; the vault routes idle assets into strategies
// under debt limits and services withdrawals from idle funds first, then
// by walking a withdrawal queue.
package vault

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/token"
)

var (
	ErrNotGovernance      = errors.New("not governance")
	ErrNotAllowed         = errors.New("not allowed")
	ErrInsufficientAssets = errors.New("insufficient assets in vault")
	ErrInactiveStrategy   = errors.New("inactive strategy")
	ErrStrategyActive     = errors.New("strategy already active")
	ErrZeroAmount         = errors.New("zero amount")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Strategy is what the vault needs from anything it routes funds into.
// The strategy package's implementations satisfy it.
type Strategy interface {
	Address() chain.Address
	Deposit(sender chain.Address, assets *uint256.Int, receiver chain.Address) (*chain.Receipt, error)
	Withdraw(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address) (*chain.Receipt, error)
	MaxWithdraw(owner chain.Address) *uint256.Int
}

// StrategyParams is the vault-side accounting for one attached strategy.
type StrategyParams struct {
	ActivationTx string
	CurrentDebt  *uint256.Int
	MaxDebt      *uint256.Int
}

type Vault struct {
	mu sync.Mutex

	addr        chain.Address
	name        string
	symbol      string
	asset       *token.Token
	roleManager chain.Address
	roles       map[chain.Address]Role

	shares      map[chain.Address]*uint256.Int
	totalShares *uint256.Int
	totalIdle   *uint256.Int
	totalDebt   *uint256.Int

	strategies   map[chain.Address]*StrategyParams
	attached     map[chain.Address]Strategy
	defaultQueue []chain.Address

	lg ledger.Ledger // optional
}

// New creates a vault over asset. roleManager is the only address that may
// grant roles.
func New(name, symbol string, asset *token.Token, roleManager chain.Address, lg ledger.Ledger) *Vault {
	return &Vault{
		addr:        chain.NewAddress(),
		name:        name,
		symbol:      symbol,
		asset:       asset,
		roleManager: roleManager,
		roles:       make(map[chain.Address]Role),
		shares:      make(map[chain.Address]*uint256.Int),
		totalShares: chain.Zero(),
		totalIdle:   chain.Zero(),
		totalDebt:   chain.Zero(),
		strategies:  make(map[chain.Address]*StrategyParams),
		attached:    make(map[chain.Address]Strategy),
		lg:          lg,
	}
}

func (v *Vault) Address() chain.Address     { return v.addr }
func (v *Vault) Name() string               { return v.name }
func (v *Vault) Symbol() string             { return v.symbol }
func (v *Vault) Asset() *token.Token        { return v.asset }
func (v *Vault) RoleManager() chain.Address { return v.roleManager }

// Deposit pulls assets from the sender (who must have approved the vault)
// and mints shares to receiver.
func (v *Vault) Deposit(sender chain.Address, assets *uint256.Int, receiver chain.Address) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if assets.IsZero() {
		return nil, fmt.Errorf("deposit: %w", ErrZeroAmount)
	}

	shares := v.convertToSharesLocked(assets)
	if _, err := v.asset.TransferFrom(v.addr, sender, v.addr, assets); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	v.totalIdle.Add(v.totalIdle, assets)
	v.mintLocked(receiver, shares)

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "Deposit", Deposit{
		Sender: sender,
		Owner:  receiver,
		Assets: assets.Clone(),
		Shares: shares.Clone(),
	})
	return rcpt, nil
}

// Withdraw burns the shares backing `assets` and sends the assets to
// receiver. The sender must own the shares. If the vault's idle funds do
// not cover the request it walks the withdrawal queue, pulling liquidity
// out of strategies; a queue passed explicitly overrides the default one.
func (v *Vault) Withdraw(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address, queue ...[]chain.Address) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.withdrawLocked(sender, assets, v.convertToSharesLocked(assets), receiver, owner, queue)
}

// Redeem is Withdraw quoted in shares instead of assets.
func (v *Vault) Redeem(sender chain.Address, shares *uint256.Int, receiver, owner chain.Address, queue ...[]chain.Address) (*chain.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.withdrawLocked(sender, v.convertToAssetsLocked(shares), shares.Clone(), receiver, owner, queue)
}

// withdrawLocked burns `shares` and sends `assets` to receiver. Withdraw
// and Redeem both land here with the two amounts converted under the same
// lock acquisition, so the quote can never drift between conversion and
// execution.
func (v *Vault) withdrawLocked(sender chain.Address, assets, shares *uint256.Int, receiver, owner chain.Address, queue [][]chain.Address) (*chain.Receipt, error) {
	if assets.IsZero() {
		return nil, fmt.Errorf("withdraw: %w", ErrZeroAmount)
	}
	if sender != owner {
		return nil, fmt.Errorf("withdraw: %w", ErrNotAllowed)
	}

	held := v.shares[owner]
	if held == nil || held.Lt(shares) {
		return nil, fmt.Errorf("withdraw: %w", ErrInsufficientShares)
	}

	q := v.defaultQueue
	if len(queue) > 0 {
		q = queue[0]
	}

	// Plan the queue walk before touching any state so a revert leaves
	// the vault and its strategies untouched.
	pulls, err := v.planLiquidityLocked(assets, q)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	for _, p := range pulls {
		if _, err := p.strategy.Withdraw(v.addr, p.amount, v.addr, v.addr); err != nil {
			return nil, fmt.Errorf("withdraw from strategy %s: %w", p.strategy.Address(), err)
		}
		params := v.strategies[p.strategy.Address()]
		params.CurrentDebt.Sub(params.CurrentDebt, p.amount)
		v.totalDebt.Sub(v.totalDebt, p.amount)
		v.totalIdle.Add(v.totalIdle, p.amount)
	}

	if err := v.burnLocked(owner, shares); err != nil {
		return nil, err
	}
	v.totalIdle.Sub(v.totalIdle, assets)
	if _, err := v.asset.Transfer(v.addr, receiver, assets); err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	rcpt := chain.NewReceipt()
	v.emit(rcpt, "Withdraw", Withdraw{
		Sender:   sender,
		Receiver: receiver,
		Owner:    owner,
		Assets:   assets.Clone(),
		Shares:   shares.Clone(),
	})
	return rcpt, nil
}

type plannedPull struct {
	strategy Strategy
	amount   *uint256.Int
}

// planLiquidityLocked decides how much to pull from each queue entry to
// cover `assets`. Every queue entry must be an active strategy. Returns
// ErrInsufficientAssets when idle plus pullable liquidity falls short.
func (v *Vault) planLiquidityLocked(assets *uint256.Int, q []chain.Address) ([]plannedPull, error) {
	if !v.totalIdle.Lt(assets) {
		return nil, nil
	}

	need := new(uint256.Int).Sub(assets, v.totalIdle)
	var pulls []plannedPull

	for _, addr := range q {
		s := v.attached[addr]
		if s == nil || v.strategies[addr] == nil {
			return nil, ErrInactiveStrategy
		}
		if need.IsZero() {
			break
		}

		avail := s.MaxWithdraw(v.addr)
		if debt := v.strategies[addr].CurrentDebt; avail.Gt(debt) {
			avail = debt.Clone()
		}
		if avail.IsZero() {
			continue
		}
		if avail.Gt(need) {
			avail = need.Clone()
		}

		pulls = append(pulls, plannedPull{strategy: s, amount: avail})
		need.Sub(need, avail)
	}

	if !need.IsZero() {
		return nil, ErrInsufficientAssets
	}
	return pulls, nil
}

// MaxWithdraw returns the most `owner` can withdraw right now: the value
// of their shares capped by idle funds plus liquidity reachable through
// the default queue.
func (v *Vault) MaxWithdraw(owner chain.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	held := v.shares[owner]
	if held == nil {
		return chain.Zero()
	}
	claim := v.convertToAssetsLocked(held)

	liquid := v.totalIdle.Clone()
	for _, addr := range v.defaultQueue {
		s := v.attached[addr]
		if s == nil {
			continue
		}
		avail := s.MaxWithdraw(v.addr)
		if debt := v.strategies[addr].CurrentDebt; avail.Gt(debt) {
			avail = debt.Clone()
		}
		liquid.Add(liquid, avail)
	}

	if claim.Gt(liquid) {
		return liquid
	}
	return claim
}

// BalanceOf returns owner's share balance.
func (v *Vault) BalanceOf(owner chain.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s := v.shares[owner]; s != nil {
		return s.Clone()
	}
	return chain.Zero()
}

func (v *Vault) TotalSupply() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalShares.Clone()
}

// TotalAssets is idle funds plus debt out in strategies.
func (v *Vault) TotalAssets() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalAssetsLocked()
}

func (v *Vault) TotalIdle() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalIdle.Clone()
}

func (v *Vault) TotalDebt() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalDebt.Clone()
}

// PricePerShare is the asset value of one whole share.
func (v *Vault) PricePerShare() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.convertToAssetsLocked(chain.Units(1))
}

func (v *Vault) totalAssetsLocked() *uint256.Int {
	return new(uint256.Int).Add(v.totalIdle, v.totalDebt)
}

func (v *Vault) convertToSharesLocked(assets *uint256.Int) *uint256.Int {
	total := v.totalAssetsLocked()
	if v.totalShares.IsZero() || total.IsZero() {
		return assets.Clone()
	}
	return mulDiv(assets, v.totalShares, total)
}

func (v *Vault) convertToAssetsLocked(shares *uint256.Int) *uint256.Int {
	if v.totalShares.IsZero() {
		return shares.Clone()
	}
	return mulDiv(shares, v.totalAssetsLocked(), v.totalShares)
}

func (v *Vault) mintLocked(to chain.Address, shares *uint256.Int) {
	s := v.shares[to]
	if s == nil {
		s = chain.Zero()
		v.shares[to] = s
	}
	s.Add(s, shares)
	v.totalShares.Add(v.totalShares, shares)
}

func (v *Vault) burnLocked(from chain.Address, shares *uint256.Int) error {
	s := v.shares[from]
	if s == nil || s.Lt(shares) {
		return fmt.Errorf("burn: %w", ErrInsufficientShares)
	}
	s.Sub(s, shares)
	v.totalShares.Sub(v.totalShares, shares)
	return nil
}

func (v *Vault) emit(rcpt *chain.Receipt, name string, ev any) {
	rcpt.Emit(ev)
	if v.lg == nil {
		return
	}
	_ = v.lg.RecordEvent(ledger.EventRecord{
		TxID:     rcpt.TxID,
		Contract: v.addr,
		Name:     name,
		Detail:   fmt.Sprintf("%+v", ev),
		Time:     rcpt.Time,
	})
}

func mulDiv(a, b, c *uint256.Int) *uint256.Int {
	p := new(uint256.Int).Mul(a, b)
	return p.Div(p, c)
}
