package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Groups must be created before transactions due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    payment_method_ref TEXT NOT NULL,
    linked INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (group_id, id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_transactions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    total_cents INTEGER NOT NULL,
    merchant TEXT NOT NULL,
    merchant_auth_status TEXT NOT NULL,
    status TEXT NOT NULL,
    auth_code TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    version INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS member_confirmations (
    transaction_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    member_id TEXT NOT NULL,
    member_name TEXT NOT NULL,
    confirmed INTEGER NOT NULL,
    declined INTEGER NOT NULL,
    confirmed_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (transaction_id, member_id),
    FOREIGN KEY (transaction_id) REFERENCES group_transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS member_holds (
    transaction_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    member_id TEXT NOT NULL,
    member_name TEXT NOT NULL,
    amount_cents INTEGER NOT NULL,
    auth_ref TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (transaction_id, member_id),
    FOREIGN KEY (transaction_id) REFERENCES group_transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS terminals (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_group_transactions_group_id ON group_transactions(group_id, created_at);
CREATE INDEX IF NOT EXISTS idx_member_confirmations_txn ON member_confirmations(transaction_id);
CREATE INDEX IF NOT EXISTS idx_member_holds_txn ON member_holds(transaction_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
