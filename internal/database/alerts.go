package database

import (
	"database/sql"
)

// InsertAlert stores a new alert record.
func (db *DB) InsertAlert(a *Alert) error {
	_, err := db.conn.Exec(
		`INSERT INTO alerts (id, supplier_id, score, level, title, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.SupplierID, a.Score, a.Level, a.Title, a.Body,
	)
	return err
}

// LastAlertTime returns the creation time of the most recent alert for
// a supplier, or nil when the supplier has never alerted.
func (db *DB) LastAlertTime(supplierID int64) (*string, error) {
	var createdAt string
	err := db.conn.QueryRow(
		"SELECT created_at FROM alerts WHERE supplier_id = ? ORDER BY created_at DESC LIMIT 1",
		supplierID,
	).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &createdAt, nil
}

// GetRecentAlerts returns the newest alerts, most recent first.
func (db *DB) GetRecentAlerts(limit int) ([]Alert, error) {
	rows, err := db.conn.Query(
		`SELECT id, supplier_id, score, level, title, body, created_at
		FROM alerts ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.SupplierID, &a.Score, &a.Level, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
