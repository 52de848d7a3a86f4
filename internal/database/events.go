package database

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// execer lets the insert helpers run against the connection or an open
// transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertEvent inserts an event. Returns the ID on success, 0 if the
// content hash already exists. Any other store error is returned.
func (db *DB) InsertEvent(e *Event) (int64, error) {
	return insertEvent(db.conn, e)
}

func insertEvent(x execer, e *Event) (int64, error) {
	result, err := x.Exec(
		`INSERT INTO events (content_hash, title, description, source, url, published_at, country, event_type, signal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ContentHash, e.Title, e.Description, e.Source, e.URL,
		e.PublishedAt, e.Country, e.EventType, e.Signal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	return result.LastInsertId()
}

// isUniqueViolation reports whether err is sqlite's unique constraint
// error, raised on a duplicate content hash.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// PurgeEventsBefore deletes events published before the cutoff and
// returns how many were removed. The cutoff is RFC 3339 UTC; lexical
// comparison matches chronological order for that format.
func (db *DB) PurgeEventsBefore(cutoff string) (int64, error) {
	return purgeEvents(db.conn, cutoff)
}

func purgeEvents(x execer, cutoff string) (int64, error) {
	result, err := x.Exec("DELETE FROM events WHERE published_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging events: %w", err)
	}
	return result.RowsAffected()
}

// GetEventsSince returns events published at or after the cutoff,
// newest first.
func (db *DB) GetEventsSince(cutoff string) ([]Event, error) {
	rows, err := db.conn.Query(
		`SELECT id, content_hash, title, description, content, content_fetched, source, url,
		published_at, country, event_type, signal, ingested_at
		FROM events WHERE published_at >= ? ORDER BY published_at DESC`, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEventsNeedingFetch returns events with no full-text content yet.
func (db *DB) GetEventsNeedingFetch(limit int) ([]Event, error) {
	rows, err := db.conn.Query(
		`SELECT id, content_hash, title, description, content, content_fetched, source, url,
		published_at, country, event_type, signal, ingested_at
		FROM events
		WHERE (content IS NULL OR content = '') AND content_fetched = 0 AND url IS NOT NULL
		ORDER BY published_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// UpdateEventContent stores fetched full text for an event.
func (db *DB) UpdateEventContent(eventID int64, content *string) error {
	_, err := db.conn.Exec(
		"UPDATE events SET content = ?, content_fetched = 1 WHERE id = ?",
		content, eventID,
	)
	return err
}

// MarkEventFetchAttempted marks that we tried to fetch content.
func (db *DB) MarkEventFetchAttempted(eventID int64) error {
	_, err := db.conn.Exec(
		"UPDATE events SET content_fetched = 1 WHERE id = ?", eventID,
	)
	return err
}

// CountEvents returns the number of stored events.
func (db *DB) CountEvents() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count)
	return count, err
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var fetched int
		if err := rows.Scan(
			&e.ID, &e.ContentHash, &e.Title, &e.Description, &e.Content, &fetched,
			&e.Source, &e.URL, &e.PublishedAt, &e.Country, &e.EventType, &e.Signal, &e.IngestedAt,
		); err != nil {
			return nil, err
		}
		e.ContentFetched = fetched != 0
		events = append(events, e)
	}
	return events, rows.Err()
}
