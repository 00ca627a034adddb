package ledger

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openyield/vaultsim/chain"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (l *SQLite) RecordTransfer(rec TransferRecord) error {
	_, err := l.db.Exec(`
		INSERT INTO transfers
		(tx_id, token, from_addr, to_addr, amount, kind, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TxID, string(rec.Token), string(rec.From), string(rec.To),
		rec.Amount, rec.Kind, rec.Time,
	)
	return err
}

func (l *SQLite) RecordEvent(rec EventRecord) error {
	_, err := l.db.Exec(`
		INSERT INTO events
		(tx_id, contract, name, detail, time)
		VALUES (?, ?, ?, ?, ?)`,
		rec.TxID, string(rec.Contract), rec.Name, rec.Detail, rec.Time,
	)
	return err
}

// ListTransfersByToken returns every recorded movement of one token,
// oldest first (tx ids are time-sortable ULIDs).
func (l *SQLite) ListTransfersByToken(token chain.Address) ([]TransferRecord, error) {
	rows, err := l.db.Query(`
		SELECT tx_id, token, from_addr, to_addr, amount, kind, time
		FROM transfers WHERE token = ? ORDER BY tx_id`,
		string(token),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransferRecord
	for rows.Next() {
		var rec TransferRecord
		var token, from, to string
		if err := rows.Scan(&rec.TxID, &token, &from, &to, &rec.Amount, &rec.Kind, &rec.Time); err != nil {
			return nil, err
		}
		rec.Token = chain.Address(token)
		rec.From = chain.Address(from)
		rec.To = chain.Address(to)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEventsByContract returns every event one contract emitted, oldest first.
func (l *SQLite) ListEventsByContract(contract chain.Address) ([]EventRecord, error) {
	rows, err := l.db.Query(`
		SELECT tx_id, contract, name, detail, time
		FROM events WHERE contract = ? ORDER BY tx_id`,
		string(contract),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		var addr string
		if err := rows.Scan(&rec.TxID, &addr, &rec.Name, &rec.Detail, &rec.Time); err != nil {
			return nil, err
		}
		rec.Contract = chain.Address(addr)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *SQLite) Close() error {
	return l.db.Close()
}
