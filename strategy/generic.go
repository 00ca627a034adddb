package strategy

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
	ErrNotShareOwner = errors.New("caller does not own the shares")
	ErrExceedsMax    = errors.New("exceeds max withdraw")
)

// Deposit is emitted when assets enter the strategy.
type Deposit struct {
	Sender chain.Address
	Owner  chain.Address
	Assets *uint256.Int
	Shares *uint256.Int
}

// Withdraw is emitted when assets leave the strategy.
type Withdraw struct {
	Sender   chain.Address
	Receiver chain.Address
	Owner    chain.Address
	Assets   *uint256.Int
	Shares   *uint256.Int
}

// Generic is the baseline strategy: it holds the asset and does nothing
// with it. Shares convert 1:1 with assets until the strategy's asset
// balance diverges from what was deposited.
type Generic struct {
	mu sync.Mutex

	addr  chain.Address
	asset *token.Token
	vault chain.Address

	shares      map[chain.Address]*uint256.Int
	totalShares *uint256.Int

	lg ledger.Ledger
}

// NewGeneric creates a strategy over asset, serving vault.
func NewGeneric(asset *token.Token, vault chain.Address, lg ledger.Ledger) *Generic {
	return &Generic{
		addr:        chain.NewAddress(),
		asset:       asset,
		vault:       vault,
		shares:      make(map[chain.Address]*uint256.Int),
		totalShares: chain.Zero(),
		lg:          lg,
	}
}

func (g *Generic) Address() chain.Address { return g.addr }
func (g *Generic) Asset() *token.Token    { return g.asset }

// Vault returns the vault this strategy serves.
func (g *Generic) Vault() chain.Address { return g.vault }

// Deposit pulls assets from the sender (who must have approved the
// strategy) and mints shares to receiver. A zero deposit is a no-op.
func (g *Generic) Deposit(sender chain.Address, assets *uint256.Int, receiver chain.Address) (*chain.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if assets.IsZero() {
		return chain.NewReceipt(), nil
	}

	shares := g.convertToSharesLocked(assets)

	if _, err := g.asset.TransferFrom(g.addr, sender, g.addr, assets); err != nil {
		return nil, fmt.Errorf("strategy deposit: %w", err)
	}
	g.mintLocked(receiver, shares)

	rcpt := chain.NewReceipt()
	g.emit(rcpt, "Deposit", Deposit{
		Sender: sender,
		Owner:  receiver,
		Assets: assets.Clone(),
		Shares: shares.Clone(),
	})
	return rcpt, nil
}

// Withdraw burns the owner's shares and sends assets to receiver. The
// sender must be the share owner.
func (g *Generic) Withdraw(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address) (*chain.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.withdrawLocked(sender, assets, receiver, owner, nil)
}

func (g *Generic) withdrawLocked(sender chain.Address, assets *uint256.Int, receiver, owner chain.Address, limit *uint256.Int) (*chain.Receipt, error) {
	if sender != owner {
		return nil, fmt.Errorf("strategy withdraw: %w", ErrNotShareOwner)
	}

	max := g.maxWithdrawLocked(owner)
	if limit != nil && max.Gt(limit) {
		max = limit
	}
	if assets.Gt(max) {
		return nil, fmt.Errorf("strategy withdraw %s: %w", chain.FormatAmount(assets), ErrExceedsMax)
	}

	shares := g.convertToSharesLocked(assets)
	if err := g.burnLocked(owner, shares); err != nil {
		return nil, err
	}
	if _, err := g.asset.Transfer(g.addr, receiver, assets); err != nil {
		return nil, fmt.Errorf("strategy withdraw: %w", err)
	}

	rcpt := chain.NewReceipt()
	g.emit(rcpt, "Withdraw", Withdraw{
		Sender:   sender,
		Receiver: receiver,
		Owner:    owner,
		Assets:   assets.Clone(),
		Shares:   shares.Clone(),
	})
	return rcpt, nil
}

// MaxWithdraw returns the assets currently redeemable for owner's shares.
func (g *Generic) MaxWithdraw(owner chain.Address) *uint256.Int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxWithdrawLocked(owner)
}

// TotalAssets is the strategy's asset balance; Generic deploys nothing,
// so everything deposited stays liquid.
func (g *Generic) TotalAssets() *uint256.Int {
	return g.asset.BalanceOf(g.addr)
}

// BalanceOf returns owner's strategy share balance.
func (g *Generic) BalanceOf(owner chain.Address) *uint256.Int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s := g.shares[owner]; s != nil {
		return s.Clone()
	}
	return chain.Zero()
}

func (g *Generic) maxWithdrawLocked(owner chain.Address) *uint256.Int {
	held := g.shares[owner]
	if held == nil {
		return chain.Zero()
	}
	return g.convertToAssetsLocked(held)
}

// convertToSharesLocked prices assets in shares at the current ratio.
func (g *Generic) convertToSharesLocked(assets *uint256.Int) *uint256.Int {
	total := g.asset.BalanceOf(g.addr)
	if g.totalShares.IsZero() || total.IsZero() {
		return assets.Clone()
	}
	return mulDiv(assets, g.totalShares, total)
}

func (g *Generic) convertToAssetsLocked(shares *uint256.Int) *uint256.Int {
	if g.totalShares.IsZero() {
		return chain.Zero()
	}
	return mulDiv(shares, g.asset.BalanceOf(g.addr), g.totalShares)
}

func (g *Generic) mintLocked(to chain.Address, shares *uint256.Int) {
	s := g.shares[to]
	if s == nil {
		s = chain.Zero()
		g.shares[to] = s
	}
	s.Add(s, shares)
	g.totalShares.Add(g.totalShares, shares)
}

func (g *Generic) burnLocked(from chain.Address, shares *uint256.Int) error {
	s := g.shares[from]
	if s == nil || s.Lt(shares) {
		return fmt.Errorf("strategy burn %s shares: %w", chain.FormatAmount(shares), ErrNotShareOwner)
	}
	s.Sub(s, shares)
	g.totalShares.Sub(g.totalShares, shares)
	return nil
}

func (g *Generic) emit(rcpt *chain.Receipt, name string, ev any) {
	rcpt.Emit(ev)
	if g.lg == nil {
		return
	}
	_ = g.lg.RecordEvent(ledger.EventRecord{
		TxID:     rcpt.TxID,
		Contract: g.addr,
		Name:     name,
		Detail:   fmt.Sprintf("%+v", ev),
		Time:     rcpt.Time,
	})
}

func mulDiv(a, b, c *uint256.Int) *uint256.Int {
	p := new(uint256.Int).Mul(a, b)
	return p.Div(p, c)
}
