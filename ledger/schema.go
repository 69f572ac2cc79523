package ledger

// One fixed schema for every user. Holdings are keyed by
// (user_id, symbol) so there is at most one row per ticker per user,
// and history ids are ULIDs so ORDER BY id is insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	cash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	user_id INTEGER NOT NULL REFERENCES users(id),
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL CHECK (shares > 0),
	PRIMARY KEY (user_id, symbol)
);

CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	type TEXT NOT NULL CHECK (type IN ('buy', 'sell')),
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL,
	price TEXT NOT NULL,
	total_value TEXT NOT NULL,
	balance_before TEXT NOT NULL,
	balance_after TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id, id);
`
