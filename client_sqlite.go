package migratory

import (
	"fmt"
)

// Sqlite3Client implements Client for SQLite.
type Sqlite3Client struct {
	baseClient
}

// NewSqlite3Client creates a new Sqlite3Client.
func NewSqlite3Client(cfg Config) *Sqlite3Client {
	return &Sqlite3Client{baseClient: baseClient{cfg: cfg}}
}

// CreateLedgerSQL creates the ledger table. SQLite has no dedicated
// timestamp type, so appliedAt is stored as text.
func (c *Sqlite3Client) CreateLedgerSQL() string {
	return fmt.Sprintf(`
      CREATE TABLE IF NOT EXISTS %s (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        appliedAt TEXT NOT NULL DEFAULT (datetime('now'))
      );`, c.quotedLedgerTable())
}

// BootstrapInsertSQL records migration 0, tolerating reruns.
func (c *Sqlite3Client) BootstrapInsertSQL() string {
	return fmt.Sprintf(`
      INSERT OR IGNORE INTO %s (id, name)
      VALUES (0, '%s');`, c.quotedLedgerTable(), BootstrapName)
}

// LastAppliedSQL selects the current version row.
func (c *Sqlite3Client) LastAppliedSQL() string {
	return fmt.Sprintf(`
      SELECT id, name
      FROM %s
      ORDER BY id DESC
      LIMIT 1;`, c.quotedLedgerTable())
}

// RecordSQL inserts a ledger row for an applied migration.
func (c *Sqlite3Client) RecordSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (id, name) VALUES (?, ?);`, c.quotedLedgerTable())
}

// EraseSQL deletes the ledger row for a rolled-back migration.
func (c *Sqlite3Client) EraseSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, c.quotedLedgerTable())
}

// EntriesSQL lists the full ledger, oldest migration first.
func (c *Sqlite3Client) EntriesSQL() string {
	return fmt.Sprintf(`
      SELECT id, name, appliedAt
      FROM %s
      ORDER BY id ASC;`, c.quotedLedgerTable())
}

// SchemaSQL lists the DDL of every user table and index.
func (c *Sqlite3Client) SchemaSQL() string {
	return `
      SELECT name, sql
      FROM sqlite_master
      WHERE type IN ('table', 'index')
        AND name NOT LIKE 'sqlite_%'
        AND sql IS NOT NULL
      ORDER BY name;`
}
