package store

import "embed"

// Migrations embeds the goose migration set applied by
// cmd/superlink-migrate. The Store itself never runs migrations; it
// only depends on the column names and types they establish
// (spec.md §6 "Persisted state", §1 "Database migrations ... a
// boot-time collaborator").
//
//go:embed migrations/*.sql
var Migrations embed.FS

// sqliteSchema is the dev/test equivalent of Migrations, applied
// directly by the SQLite store on open rather than through goose,
// since the in-memory/test database never runs the migration tool.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS run (
	id INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS node (
	id            INTEGER PRIMARY KEY,
	online_until  TEXT NOT NULL,
	ping_interval REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS task_ins (
	id                  TEXT PRIMARY KEY,
	group_id            TEXT NOT NULL,
	run_id              INTEGER NOT NULL,
	producer_node_id    INTEGER NOT NULL,
	producer_anonymous  INTEGER NOT NULL,
	consumer_node_id    INTEGER NOT NULL,
	consumer_anonymous  INTEGER NOT NULL,
	created_at          REAL NOT NULL,
	delivered_at        TEXT NOT NULL DEFAULT '',
	pushed_at           REAL NOT NULL,
	ttl                 REAL NOT NULL,
	ancestry            TEXT NOT NULL DEFAULT '',
	task_type           TEXT NOT NULL,
	recordset           BLOB,
	error_code          INTEGER,
	error_reason        TEXT,
	error_message       TEXT
);

CREATE TABLE IF NOT EXISTS task_res (
	id                  TEXT PRIMARY KEY,
	group_id            TEXT NOT NULL,
	run_id              INTEGER NOT NULL,
	producer_node_id    INTEGER NOT NULL,
	producer_anonymous  INTEGER NOT NULL,
	consumer_node_id    INTEGER NOT NULL,
	consumer_anonymous  INTEGER NOT NULL,
	created_at          REAL NOT NULL,
	delivered_at        TEXT NOT NULL DEFAULT '',
	pushed_at           REAL NOT NULL,
	ttl                 REAL NOT NULL,
	ancestry            TEXT NOT NULL,
	task_type           TEXT NOT NULL,
	recordset           BLOB,
	error_code          INTEGER,
	error_reason        TEXT,
	error_message       TEXT
);
`
