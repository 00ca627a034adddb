// Package ledger records token transfers and contract events so a
// simulation run can be audited after the fact.
package ledger

import (
	"sync"
	"time"

	"github.com/openyield/vaultsim/chain"
)

// TransferRecord is one token movement. Kind is "mint", "burn" or "transfer".
type TransferRecord struct {
	TxID   string
	Token  chain.Address
	From   chain.Address
	To     chain.Address
	Amount string // decimal base units
	Kind   string
	Time   time.Time
}

// EventRecord is one contract event, flattened for storage. Detail holds a
// "key=value key=value" rendering of the typed payload.
type EventRecord struct {
	TxID     string
	Contract chain.Address
	Name     string
	Detail   string
	Time     time.Time
}

type Ledger interface {
	RecordTransfer(TransferRecord) error
	RecordEvent(EventRecord) error
	Close() error
}

// Memory is an in-process Ledger for tests and dry runs.
type Memory struct {
	mu        sync.Mutex
	transfers []TransferRecord
	events    []EventRecord
	closed    bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTransfer(rec TransferRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, rec)
	return nil
}

func (m *Memory) RecordEvent(rec EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, rec)
	return nil
}

// Transfers returns a copy of all recorded transfers in record order.
func (m *Memory) Transfers() []TransferRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TransferRecord, len(m.transfers))
	copy(out, m.transfers)
	return out
}

// Events returns a copy of all recorded events in record order.
func (m *Memory) Events() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventRecord, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
