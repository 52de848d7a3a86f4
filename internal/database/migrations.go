package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS suppliers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    category TEXT,
    city TEXT,
    country TEXT NOT NULL,
    tier INTEGER DEFAULT 1,
    latitude REAL,
    longitude REAL,
    risk_score REAL DEFAULT 0,
    risk_level TEXT DEFAULT 'Low',
    event_summary TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    content TEXT,
    content_fetched INTEGER DEFAULT 0,
    source TEXT NOT NULL,
    url TEXT,
    published_at TEXT NOT NULL,
    country TEXT,
    event_type TEXT DEFAULT 'other',
    signal TEXT NOT NULL DEFAULT 'low',
    ingested_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS geocode_cache (
    place TEXT PRIMARY KEY,
    latitude REAL,
    longitude REAL,
    resolved INTEGER NOT NULL DEFAULT 0,
    cached_at TEXT DEFAULT (datetime('now'))
);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "alerts and digests",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    supplier_id INTEGER NOT NULL REFERENCES suppliers(id),
    score REAL NOT NULL,
    level TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS digests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    digest_date TEXT UNIQUE NOT NULL,
    tldr TEXT NOT NULL,
    body_markdown TEXT NOT NULL,
    supplier_count INTEGER DEFAULT 0,
    event_count INTEGER DEFAULT 0,
    generated_at TEXT DEFAULT (datetime('now'))
);
`)
			return err
		},
	},
	{
		Version:     3,
		Description: "ingest run tracking and event indexes",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS ingest_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    found INTEGER DEFAULT 0,
    admitted INTEGER DEFAULT 0,
    duplicates INTEGER DEFAULT 0,
    purged INTEGER DEFAULT 0,
    parse_drops INTEGER DEFAULT 0,
    filtered INTEGER DEFAULT 0,
    source_errors INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_published_at ON events(published_at);
CREATE INDEX IF NOT EXISTS idx_alerts_supplier ON alerts(supplier_id, created_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
