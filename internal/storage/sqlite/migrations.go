package sqlite

import (
	"database/sql"
	"fmt"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as decimal strings so no precision is lost.
// Tables that must preserve insertion order carry an explicit seq column.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    UNIQUE (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS expenses (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    group_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    description TEXT NOT NULL,
    split_kind TEXT NOT NULL CHECK (split_kind IN ('EQUAL', 'CUSTOM')),
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expense_shares (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    expense_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    settled INTEGER NOT NULL DEFAULT 0,
    UNIQUE (expense_id, participant_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    group_id TEXT,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    expense_id TEXT,
    note TEXT,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    applied INTEGER NOT NULL DEFAULT 0,
    excess TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS balances (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    creditor_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('PENDING', 'PARTIAL', 'SETTLED')),
    updated_at INTEGER NOT NULL,
    UNIQUE (group_id, debtor_id, creditor_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_expense_shares_participant ON expense_shares(participant_id);
CREATE INDEX IF NOT EXISTS idx_payments_group_id ON payments(group_id);
CREATE INDEX IF NOT EXISTS idx_payments_from_to ON payments(from_user_id, to_user_id);
CREATE INDEX IF NOT EXISTS idx_payments_to ON payments(to_user_id);
CREATE INDEX IF NOT EXISTS idx_balances_debtor ON balances(debtor_id);
CREATE INDEX IF NOT EXISTS idx_balances_creditor ON balances(creditor_id);
`

// addedColumns are columns introduced after the first release. Databases
// created before them get the columns added in place.
var addedColumns = []struct {
	table, column, definition string
}{
	{"payments", "applied", "INTEGER NOT NULL DEFAULT 0"},
	{"payments", "excess", "TEXT NOT NULL DEFAULT '0'"},
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	for _, c := range addedColumns {
		exists, err := hasColumn(db, c.table, c.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.definition)); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
