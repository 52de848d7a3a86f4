package database

import (
	"database/sql"
	"fmt"
)

// Cycle is one ingestion maintenance cycle. The purge and every insert
// of the cycle share a single transaction, so a concurrent scoring
// read sees either the pre-cycle or the post-cycle event set, never a
// mix.
type Cycle struct {
	tx *sql.Tx
}

// BeginCycle opens the transaction for one purge+insert cycle.
func (db *DB) BeginCycle() (*Cycle, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning ingest cycle: %w", err)
	}
	return &Cycle{tx: tx}, nil
}

// PurgeEventsBefore deletes events published before the cutoff within
// the cycle and returns how many were removed.
func (c *Cycle) PurgeEventsBefore(cutoff string) (int64, error) {
	return purgeEvents(c.tx, cutoff)
}

// InsertEvent inserts within the cycle, with the same duplicate
// handling as DB.InsertEvent.
func (c *Cycle) InsertEvent(e *Event) (int64, error) {
	return insertEvent(c.tx, e)
}

func (c *Cycle) Commit() error   { return c.tx.Commit() }
func (c *Cycle) Rollback() error { return c.tx.Rollback() }
