package database

import "database/sql"

// SaveDigest inserts or replaces the digest for a date.
func (db *DB) SaveDigest(d *Digest) error {
	_, err := db.conn.Exec(
		`INSERT INTO digests (digest_date, tldr, body_markdown, supplier_count, event_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(digest_date) DO UPDATE SET
			tldr = excluded.tldr,
			body_markdown = excluded.body_markdown,
			supplier_count = excluded.supplier_count,
			event_count = excluded.event_count,
			generated_at = datetime('now')`,
		d.DigestDate, d.TLDR, d.BodyMarkdown, d.SupplierCount, d.EventCount,
	)
	return err
}

// GetDigest returns the digest for a date, or nil when none exists.
func (db *DB) GetDigest(date string) (*Digest, error) {
	row := db.conn.QueryRow(
		`SELECT id, digest_date, tldr, body_markdown, supplier_count, event_count, generated_at
		FROM digests WHERE digest_date = ?`, date,
	)
	return scanDigest(row)
}

// GetLatestDigest returns the most recent digest, or nil when none exist.
func (db *DB) GetLatestDigest() (*Digest, error) {
	row := db.conn.QueryRow(
		`SELECT id, digest_date, tldr, body_markdown, supplier_count, event_count, generated_at
		FROM digests ORDER BY digest_date DESC LIMIT 1`,
	)
	return scanDigest(row)
}

// ListDigests returns digest dates and TLDRs, newest first.
func (db *DB) ListDigests(limit int) ([]Digest, error) {
	rows, err := db.conn.Query(
		`SELECT id, digest_date, tldr, body_markdown, supplier_count, event_count, generated_at
		FROM digests ORDER BY digest_date DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var d Digest
		if err := rows.Scan(&d.ID, &d.DigestDate, &d.TLDR, &d.BodyMarkdown,
			&d.SupplierCount, &d.EventCount, &d.GeneratedAt); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

func scanDigest(row *sql.Row) (*Digest, error) {
	var d Digest
	err := row.Scan(&d.ID, &d.DigestDate, &d.TLDR, &d.BodyMarkdown,
		&d.SupplierCount, &d.EventCount, &d.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
