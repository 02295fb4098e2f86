package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			// _pragma applies per connection, which PRAGMA statements in the
			// schema would not; foreign_keys must hold on every pooled conn for
			// the CASCADE and SET NULL rules to fire.
			dsn = "file:expograde.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/expograde?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they don't exist. Exported so store
// tests can apply it to their own sqlite handles.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  project_title TEXT NOT NULL DEFAULT '',
  members_json TEXT NOT NULL DEFAULT '[]',
  panel1_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  panel2_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  external_panel_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS panel_grades (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  panelist_id TEXT NOT NULL,
  presenter_scores_json TEXT NOT NULL DEFAULT '{}',
  thesis_scores_json TEXT NOT NULL DEFAULT '{}',
  submitted INTEGER NOT NULL DEFAULT 0,
  UNIQUE (group_id, panelist_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  project_title TEXT NOT NULL DEFAULT '',
  members_json TEXT NOT NULL DEFAULT '[]',
  panel1_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  panel2_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  external_panel_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS panel_grades (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  panelist_id TEXT NOT NULL,
  presenter_scores_json TEXT NOT NULL DEFAULT '{}',
  thesis_scores_json TEXT NOT NULL DEFAULT '{}',
  submitted INTEGER NOT NULL DEFAULT 0,
  UNIQUE (group_id, panelist_id)
);
`
