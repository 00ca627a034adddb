package ledger

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openyield/vaultsim/chain"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	l, err := NewSQLite(path)
	require.NoError(t, err)

	return l, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	l, path := newTestSQLite(t)
	assert.NoError(t, l.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('transfers','events')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["transfers"])
	assert.True(t, found["events"])
}

func TestSQLiteTransferRoundTrip(t *testing.T) {
	t.Parallel()

	l, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = l.Close() })

	tok := chain.NewAddress()
	rec := TransferRecord{
		TxID:   "TX1",
		Token:  tok,
		From:   chain.ZeroAddress,
		To:     chain.NewAddress(),
		Amount: "1000000000000000000",
		Kind:   "mint",
		Time:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, l.RecordTransfer(rec))

	got, err := l.ListTransfersByToken(tok)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.TxID, got[0].TxID)
	assert.Equal(t, rec.To, got[0].To)
	assert.Equal(t, rec.Amount, got[0].Amount)
	assert.Equal(t, rec.Kind, got[0].Kind)

	other, err := l.ListTransfersByToken(chain.NewAddress())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteEventRoundTrip(t *testing.T) {
	t.Parallel()

	l, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = l.Close() })

	contract := chain.NewAddress()
	for i, name := range []string{"Deposit", "Withdraw"} {
		require.NoError(t, l.RecordEvent(EventRecord{
			TxID:     string(rune('A' + i)),
			Contract: contract,
			Name:     name,
			Detail:   "amount=1",
			Time:     time.Now().UTC(),
		}))
	}

	got, err := l.ListEventsByContract(contract)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Deposit", got[0].Name)
	assert.Equal(t, "Withdraw", got[1].Name)
}

func TestMemoryLedger(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	require.NoError(t, m.RecordTransfer(TransferRecord{TxID: "T1", Kind: "mint"}))
	require.NoError(t, m.RecordEvent(EventRecord{TxID: "T1", Name: "Deposit"}))

	require.Len(t, m.Transfers(), 1)
	require.Len(t, m.Events(), 1)
	assert.Equal(t, "Deposit", m.Events()[0].Name)

	assert.NoError(t, m.Close())
}
