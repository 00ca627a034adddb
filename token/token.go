// Package token implements the fungible asset contract the vaults and
// strategies account in.
package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/ledger"
)

var (
	ErrNotOwner              = errors.New("not owner")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Transfer is emitted on every balance movement. Mints have From set to the
// zero address, burns have To set to the zero address.
type Transfer struct {
	From   chain.Address
	To     chain.Address
	Amount *uint256.Int
}

// Approval is emitted when an owner sets a spender allowance.
type Approval struct {
	Owner   chain.Address
	Spender chain.Address
	Amount  *uint256.Int
}

// Token is a mintable fungible token. All mutating calls take the sender
// explicitly; there is no ambient caller context in the simulator.
type Token struct {
	mu sync.Mutex

	addr     chain.Address
	name     string
	symbol   string
	decimals uint8
	owner    chain.Address

	balances   map[chain.Address]*uint256.Int
	allowances map[chain.Address]map[chain.Address]*uint256.Int
	supply     *uint256.Int

	lg ledger.Ledger // optional
}

// New creates a token. owner is the only address allowed to mint.
// lg may be nil to skip transfer recording.
func New(name, symbol string, decimals uint8, owner chain.Address, lg ledger.Ledger) *Token {
	return &Token{
		addr:       chain.NewAddress(),
		name:       name,
		symbol:     symbol,
		decimals:   decimals,
		owner:      owner,
		balances:   make(map[chain.Address]*uint256.Int),
		allowances: make(map[chain.Address]map[chain.Address]*uint256.Int),
		supply:     chain.Zero(),
		lg:         lg,
	}
}

func (t *Token) Address() chain.Address { return t.addr }
func (t *Token) Name() string           { return t.name }
func (t *Token) Symbol() string         { return t.symbol }
func (t *Token) Decimals() uint8        { return t.decimals }

// BalanceOf returns holder's current balance.
func (t *Token) BalanceOf(holder chain.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceLocked(holder).Clone()
}

func (t *Token) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply.Clone()
}

func (t *Token) Allowance(owner, spender chain.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m := t.allowances[owner]; m != nil {
		if a := m[spender]; a != nil {
			return a.Clone()
		}
	}
	return chain.Zero()
}

// Mint credits amount to recipient. Only the token owner may mint.
func (t *Token) Mint(sender, to chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sender != t.owner {
		return nil, fmt.Errorf("mint %s: %w", t.symbol, ErrNotOwner)
	}

	t.creditLocked(to, amount)
	t.supply.Add(t.supply, amount)

	rcpt := chain.NewReceipt()
	rcpt.Emit(Transfer{From: chain.ZeroAddress, To: to, Amount: amount.Clone()})
	t.recordLocked(rcpt, chain.ZeroAddress, to, amount, "mint")
	return rcpt, nil
}

// Burn debits amount from the sender's own balance.
func (t *Token) Burn(sender chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.debitLocked(sender, amount); err != nil {
		return nil, err
	}
	t.supply.Sub(t.supply, amount)

	rcpt := chain.NewReceipt()
	rcpt.Emit(Transfer{From: sender, To: chain.ZeroAddress, Amount: amount.Clone()})
	t.recordLocked(rcpt, sender, chain.ZeroAddress, amount, "burn")
	return rcpt, nil
}

// Transfer moves amount from the sender to recipient.
func (t *Token) Transfer(sender, to chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferLocked(sender, to, amount)
}

// Approve sets spender's allowance over the sender's balance.
func (t *Token) Approve(sender, spender chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.allowances[sender]
	if m == nil {
		m = make(map[chain.Address]*uint256.Int)
		t.allowances[sender] = m
	}
	m[spender] = amount.Clone()

	rcpt := chain.NewReceipt()
	rcpt.Emit(Approval{Owner: sender, Spender: spender, Amount: amount.Clone()})
	return rcpt, nil
}

// TransferFrom moves amount from `from` to `to`, spending the sender's
// allowance.
func (t *Token) TransferFrom(sender, from, to chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := chain.Zero()
	if m := t.allowances[from]; m != nil && m[sender] != nil {
		allowed = m[sender]
	}
	if allowed.Lt(amount) {
		return nil, fmt.Errorf("transfer %s %s from %s: %w",
			chain.FormatAmount(amount), t.symbol, from, ErrInsufficientAllowance)
	}

	// Spend the allowance only once the transfer has gone through, so a
	// failed transfer leaves the approval intact.
	rcpt, err := t.transferLocked(from, to, amount)
	if err != nil {
		return nil, err
	}
	allowed.Sub(allowed, amount)
	return rcpt, nil
}

func (t *Token) transferLocked(from, to chain.Address, amount *uint256.Int) (*chain.Receipt, error) {
	if err := t.debitLocked(from, amount); err != nil {
		return nil, err
	}
	t.creditLocked(to, amount)

	rcpt := chain.NewReceipt()
	rcpt.Emit(Transfer{From: from, To: to, Amount: amount.Clone()})
	t.recordLocked(rcpt, from, to, amount, "transfer")
	return rcpt, nil
}

func (t *Token) balanceLocked(holder chain.Address) *uint256.Int {
	if b := t.balances[holder]; b != nil {
		return b
	}
	return chain.Zero()
}

func (t *Token) creditLocked(to chain.Address, amount *uint256.Int) {
	b := t.balances[to]
	if b == nil {
		b = chain.Zero()
		t.balances[to] = b
	}
	b.Add(b, amount)
}

func (t *Token) debitLocked(from chain.Address, amount *uint256.Int) error {
	b := t.balances[from]
	if b == nil || b.Lt(amount) {
		return fmt.Errorf("transfer %s %s from %s: %w",
			chain.FormatAmount(amount), t.symbol, from, ErrInsufficientBalance)
	}
	b.Sub(b, amount)
	return nil
}

// recordLocked writes the movement to the ledger best-effort; the balance
// change already happened and stands regardless of recording.
func (t *Token) recordLocked(rcpt *chain.Receipt, from, to chain.Address, amount *uint256.Int, kind string) {
	if t.lg == nil {
		return
	}
	_ = t.lg.RecordTransfer(ledger.TransferRecord{
		TxID:   rcpt.TxID,
		Token:  t.addr,
		From:   from,
		To:     to,
		Amount: chain.FormatAmount(amount),
		Kind:   kind,
		Time:   rcpt.Time,
	})
}
