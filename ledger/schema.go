package ledger

const Schema = `
CREATE TABLE IF NOT EXISTS transfers (
	tx_id TEXT NOT NULL,
	token TEXT NOT NULL,
	from_addr TEXT NOT NULL,
	to_addr TEXT NOT NULL,
	amount TEXT NOT NULL,
	kind TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	tx_id TEXT NOT NULL,
	contract TEXT NOT NULL,
	name TEXT NOT NULL,
	detail TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transfers_token ON transfers(token);
CREATE INDEX IF NOT EXISTS idx_events_contract ON events(contract);
`
