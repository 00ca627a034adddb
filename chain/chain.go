// Package chain holds the value types shared by every contract in the
// simulator: addresses, amounts and transaction receipts.
package chain

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/openyield/vaultsim/internal/id"
)

// Address identifies an account or a contract. Addresses are opaque
// time-sortable ids; they never leave the process, so there is no
// checksum or hex encoding.
type Address string

// ZeroAddress is the unset address sentinel.
const ZeroAddress Address = ""

// NewAddress returns a fresh, unique address.
func NewAddress() Address {
	return Address(id.NewAddress())
}

// Receipt is returned by every state-changing contract call. Events carry
// the typed payloads a call emitted, in emission order.
type Receipt struct {
	TxID   string
	Time   time.Time
	Events []any
}

// NewReceipt stamps a receipt with a fresh transaction id.
func NewReceipt() *Receipt {
	return &Receipt{
		TxID: id.New(),
		Time: time.Now().UTC(),
	}
}

// Emit appends an event payload to the receipt.
func (r *Receipt) Emit(ev any) {
	r.Events = append(r.Events, ev)
}

// EventsOf returns the receipt's events of concrete type T, in emission order.
func EventsOf[T any](r *Receipt) []T {
	var out []T
	for _, ev := range r.Events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// Decimals is the base-unit precision every asset in the simulator uses.
const Decimals = 18

var unitScale = uint256.NewInt(1_000_000_000_000_000_000)

// Units returns n whole tokens scaled to 18-decimal base units.
func Units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), unitScale)
}

// Amount returns n base units.
func Amount(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// FormatAmount renders an amount as a decimal string for logs and storage.
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.ToBig().String()
}
