// Package factory deploys vaults and manages protocol fee configuration:
// a default fee plus optional per-vault overrides, both capped and
// governance-gated.
package factory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/token"
	"github.com/openyield/vaultsim/vault"
)

// MaxFeeBps caps the protocol fee at 0.25%.
const MaxFeeBps uint16 = 25

var (
	ErrNotGovernance = errors.New("not governance")
	ErrFeeTooHigh    = errors.New("fee too high")
	ErrNoRecipient   = errors.New("no protocol fee recipient")
)

// FeeConfig is a protocol fee setting. FeeLastChange is a unix-nano
// timestamp, zero when the config has never been touched.
type FeeConfig struct {
	FeeBps        uint16
	FeeRecipient  chain.Address
	FeeLastChange int64
}

// NewVault is emitted when a vault is deployed.
type NewVault struct {
	VaultAddress chain.Address
	Asset        chain.Address
}

// UpdateProtocolFeeBps is emitted when the default fee changes.
type UpdateProtocolFeeBps struct {
	OldFeeBps uint16
	NewFeeBps uint16
}

// UpdateProtocolFeeRecipient is emitted when the default recipient changes.
type UpdateProtocolFeeRecipient struct {
	OldFeeRecipient chain.Address
	NewFeeRecipient chain.Address
}

// UpdateCustomProtocolFee is emitted when a per-vault fee is set.
type UpdateCustomProtocolFee struct {
	Vault                chain.Address
	NewCustomProtocolFee uint16
}

// RemovedCustomProtocolFee is emitted when a per-vault fee is cleared.
type RemovedCustomProtocolFee struct {
	Vault chain.Address
}

type Factory struct {
	mu sync.Mutex

	addr       chain.Address
	name       string
	governance chain.Address

	defaultFee FeeConfig
	customFee  map[chain.Address]FeeConfig

	vaults []chain.Address
	lg     ledger.Ledger // optional
}

func New(name string, governance chain.Address, lg ledger.Ledger) *Factory {
	return &Factory{
		addr:       chain.NewAddress(),
		name:       name,
		governance: governance,
		customFee:  make(map[chain.Address]FeeConfig),
		lg:         lg,
	}
}

func (f *Factory) Address() chain.Address    { return f.addr }
func (f *Factory) Name() string              { return f.name }
func (f *Factory) Governance() chain.Address { return f.governance }

// DeployNewVault creates a vault over asset. Anyone may deploy; fee
// settings stay with governance.
func (f *Factory) DeployNewVault(sender chain.Address, asset *token.Token, name, symbol string, roleManager chain.Address) (*vault.Vault, *chain.Receipt, error) {
	v := vault.New(name, symbol, asset, roleManager, f.lg)

	f.mu.Lock()
	f.vaults = append(f.vaults, v.Address())
	f.mu.Unlock()

	rcpt := chain.NewReceipt()
	f.emit(rcpt, "NewVault", NewVault{VaultAddress: v.Address(), Asset: asset.Address()})
	return v, rcpt, nil
}

// Vaults lists every vault this factory deployed.
func (f *Factory) Vaults() []chain.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chain.Address(nil), f.vaults...)
}

// ProtocolFeeConfig returns the default fee config.
func (f *Factory) ProtocolFeeConfig() FeeConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaultFee
}

// ProtocolFeeConfigFor returns the fee config that applies to one vault:
// its custom config when set, the default otherwise.
func (f *Factory) ProtocolFeeConfigFor(v chain.Address) FeeConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cfg, ok := f.customFee[v]; ok {
		return cfg
	}
	return f.defaultFee
}

// CustomProtocolFeeConfig returns the raw per-vault slot; zero-valued when
// no custom fee is set.
func (f *Factory) CustomProtocolFeeConfig(v chain.Address) FeeConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customFee[v]
}

// SetProtocolFeeBps sets the default fee. Governance only; capped at
// MaxFeeBps.
func (f *Factory) SetProtocolFeeBps(sender chain.Address, bps uint16) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sender != f.governance {
		return nil, fmt.Errorf("set protocol fee bps: %w", ErrNotGovernance)
	}
	if bps > MaxFeeBps {
		return nil, fmt.Errorf("set protocol fee bps %d: %w", bps, ErrFeeTooHigh)
	}

	old := f.defaultFee.FeeBps
	f.defaultFee.FeeBps = bps
	f.defaultFee.FeeLastChange = time.Now().UnixNano()

	rcpt := chain.NewReceipt()
	f.emit(rcpt, "UpdateProtocolFeeBps", UpdateProtocolFeeBps{OldFeeBps: old, NewFeeBps: bps})
	return rcpt, nil
}

// SetProtocolFeeRecipient sets the default fee recipient. Governance only.
func (f *Factory) SetProtocolFeeRecipient(sender, recipient chain.Address) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sender != f.governance {
		return nil, fmt.Errorf("set protocol fee recipient: %w", ErrNotGovernance)
	}

	old := f.defaultFee.FeeRecipient
	f.defaultFee.FeeRecipient = recipient
	f.defaultFee.FeeLastChange = time.Now().UnixNano()

	rcpt := chain.NewReceipt()
	f.emit(rcpt, "UpdateProtocolFeeRecipient", UpdateProtocolFeeRecipient{
		OldFeeRecipient: old,
		NewFeeRecipient: recipient,
	})
	return rcpt, nil
}

// SetCustomProtocolFeeBps sets a per-vault fee override. Governance only;
// capped at MaxFeeBps; the default recipient must be set first since the
// override reuses it.
func (f *Factory) SetCustomProtocolFeeBps(sender, v chain.Address, bps uint16) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sender != f.governance {
		return nil, fmt.Errorf("set custom protocol fee: %w", ErrNotGovernance)
	}
	if bps > MaxFeeBps {
		return nil, fmt.Errorf("set custom protocol fee %d: %w", bps, ErrFeeTooHigh)
	}
	if f.defaultFee.FeeRecipient == chain.ZeroAddress {
		return nil, fmt.Errorf("set custom protocol fee: %w", ErrNoRecipient)
	}

	f.customFee[v] = FeeConfig{
		FeeBps:        bps,
		FeeRecipient:  f.defaultFee.FeeRecipient,
		FeeLastChange: time.Now().UnixNano(),
	}

	rcpt := chain.NewReceipt()
	f.emit(rcpt, "UpdateCustomProtocolFee", UpdateCustomProtocolFee{
		Vault:                v,
		NewCustomProtocolFee: bps,
	})
	return rcpt, nil
}

// RemoveCustomProtocolFee clears a per-vault override so the default
// applies again. Governance only.
func (f *Factory) RemoveCustomProtocolFee(sender, v chain.Address) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sender != f.governance {
		return nil, fmt.Errorf("remove custom protocol fee: %w", ErrNotGovernance)
	}
	delete(f.customFee, v)

	rcpt := chain.NewReceipt()
	f.emit(rcpt, "RemovedCustomProtocolFee", RemovedCustomProtocolFee{Vault: v})
	return rcpt, nil
}

func (f *Factory) emit(rcpt *chain.Receipt, name string, ev any) {
	rcpt.Emit(ev)
	if f.lg == nil {
		return
	}
	_ = f.lg.RecordEvent(ledger.EventRecord{
		TxID:     rcpt.TxID,
		Contract: f.addr,
		Name:     name,
		Detail:   fmt.Sprintf("%+v", ev),
		Time:     rcpt.Time,
	})
}
