// Package instancedb persists the server's instance registry (id, seed,
// created-at, last-active, client count) backing the Instantiate/Route
// packets of spec.md §4.9/§6 across process restarts.
package instancedb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the schema this package's migrations bring a
// database up to.
const CurrentSchemaVersion = 1

// migration is one idempotent schema change: add a column to a table
// that may or may not already have it, matching the teacher's own
// column-existence-checked ALTER TABLE convention.
type migration struct {
	table  string
	column string
	def    string
}

// pendingMigrations lists columns later schema versions added to the
// v1 instances table. Empty for now; kept as the hook future schema
// changes attach to, the same shape the teacher's own migration list
// uses for its knowledge-base tables.
var pendingMigrations = []migration{}

// openDB opens (creating if needed) the sqlite file at path and brings
// its schema up to CurrentSchemaVersion.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("instancedb: open %s: %w", path, err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS instances (
	id           TEXT PRIMARY KEY,
	seed         INTEGER NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_active  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	client_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS schema_versions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	version     INTEGER NOT NULL,
	applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("instancedb: create schema: %w", err)
	}
	return setSchemaVersion(db, CurrentSchemaVersion)
}

// runMigrations applies every pendingMigrations entry whose column is
// missing from its table, tolerating a missing table (a fresh database
// already has every column from createSchema).
func runMigrations(db *sql.DB) error {
	for _, m := range pendingMigrations {
		if !tableExists(db, m.table) {
			continue
		}
		if columnExists(db, m.table, m.column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.def)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("instancedb: migrate %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	return err == nil && count > 0
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func setSchemaVersion(db *sql.DB, version int) error {
	_, err := db.Exec("INSERT INTO schema_versions (version) VALUES (?)", version)
	if err != nil {
		return fmt.Errorf("instancedb: record schema version: %w", err)
	}
	return nil
}
