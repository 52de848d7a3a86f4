package database

import (
	"database/sql"
	"fmt"
)

// UpsertSupplier inserts a supplier or updates its static fields when a
// supplier with the same name already exists. Returns the supplier ID.
func (db *DB) UpsertSupplier(s *Supplier) (int64, error) {
	_, err := db.conn.Exec(
		`INSERT INTO suppliers (name, category, city, country, tier, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			city = excluded.city,
			country = excluded.country,
			tier = excluded.tier,
			latitude = COALESCE(excluded.latitude, suppliers.latitude),
			longitude = COALESCE(excluded.longitude, suppliers.longitude)`,
		s.Name, s.Category, s.City, s.Country, s.Tier, s.Latitude, s.Longitude,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting supplier %q: %w", s.Name, err)
	}
	// LastInsertId is unreliable on conflict; resolve by name instead.
	var id int64
	if err := db.conn.QueryRow("SELECT id FROM suppliers WHERE name = ?", s.Name).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving supplier id for %q: %w", s.Name, err)
	}
	return id, nil
}

// GetSuppliers returns all suppliers ordered by risk score descending.
func (db *DB) GetSuppliers() ([]Supplier, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, category, city, country, tier, latitude, longitude,
		risk_score, risk_level, event_summary, last_updated
		FROM suppliers ORDER BY risk_score DESC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

// GetSupplier returns one supplier by ID.
func (db *DB) GetSupplier(id int64) (*Supplier, error) {
	row := db.conn.QueryRow(
		`SELECT id, name, category, city, country, tier, latitude, longitude,
		risk_score, risk_level, event_summary, last_updated
		FROM suppliers WHERE id = ?`, id,
	)
	var s Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.City, &s.Country, &s.Tier,
		&s.Latitude, &s.Longitude, &s.RiskScore, &s.RiskLevel,
		&s.EventSummary, &s.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSupplierByName returns one supplier by name, or nil if absent.
func (db *DB) GetSupplierByName(name string) (*Supplier, error) {
	row := db.conn.QueryRow(
		`SELECT id, name, category, city, country, tier, latitude, longitude,
		risk_score, risk_level, event_summary, last_updated
		FROM suppliers WHERE name = ?`, name,
	)
	var s Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.City, &s.Country, &s.Tier,
		&s.Latitude, &s.Longitude, &s.RiskScore, &s.RiskLevel,
		&s.EventSummary, &s.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSupplierRisk stores a computed risk result on the supplier row.
func (db *DB) UpdateSupplierRisk(id int64, score float64, level, summary string) error {
	_, err := db.conn.Exec(
		`UPDATE suppliers SET risk_score = ?, risk_level = ?, event_summary = ?,
		last_updated = datetime('now') WHERE id = ?`,
		score, level, summary, id,
	)
	return err
}

// UpdateSupplierCoords stores geocoded coordinates for a supplier.
func (db *DB) UpdateSupplierCoords(id int64, lat, lon float64) error {
	_, err := db.conn.Exec(
		"UPDATE suppliers SET latitude = ?, longitude = ? WHERE id = ?",
		lat, lon, id,
	)
	return err
}

// CountSuppliers returns the number of suppliers.
func (db *DB) CountSuppliers() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM suppliers").Scan(&count)
	return count, err
}

func scanSuppliers(rows *sql.Rows) ([]Supplier, error) {
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Category, &s.City, &s.Country, &s.Tier,
			&s.Latitude, &s.Longitude, &s.RiskScore, &s.RiskLevel,
			&s.EventSummary, &s.LastUpdated,
		); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
