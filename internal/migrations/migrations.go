package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the journal schema.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
            id INTEGER PRIMARY KEY,
            created_at DATETIME NOT NULL,
            item_id TEXT NOT NULL,
            location_id TEXT NOT NULL,
            mode TEXT NOT NULL CHECK (mode IN ('IN', 'OUT')),
            qty INTEGER NOT NULL CHECK (qty > 0),
            actor TEXT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            work_order TEXT NOT NULL DEFAULT '',
            card_hex TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_item ON ledger_entries(item_id);`,
		`CREATE TABLE IF NOT EXISTS unknown_scans (
            id TEXT PRIMARY KEY,
            created_at DATETIME NOT NULL,
            card_hex TEXT NOT NULL,
            mode TEXT NOT NULL,
            qty INTEGER NOT NULL,
            actor TEXT NOT NULL,
            location_id TEXT NOT NULL DEFAULT '',
            error TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_unknown_scans_card ON unknown_scans(card_hex);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
