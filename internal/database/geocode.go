package database

import (
	"database/sql"

	"github.com/riskwatch/riskwatch/internal/geo"
)

// LookupGeocode reads a cached geocoding result. found is false when
// the place has never been looked up; resolved is false for cached
// misses.
func (db *DB) LookupGeocode(place string) (geo.Coord, bool, bool, error) {
	var lat, lon sql.NullFloat64
	var resolved int
	err := db.conn.QueryRow(
		"SELECT latitude, longitude, resolved FROM geocode_cache WHERE place = ?", place,
	).Scan(&lat, &lon, &resolved)
	if err == sql.ErrNoRows {
		return geo.Coord{}, false, false, nil
	}
	if err != nil {
		return geo.Coord{}, false, false, err
	}
	return geo.Coord{Lat: lat.Float64, Lon: lon.Float64}, resolved != 0, true, nil
}

// SaveGeocode caches a geocoding result, including negative results.
func (db *DB) SaveGeocode(place string, coord geo.Coord, resolved bool) error {
	r := 0
	if resolved {
		r = 1
	}
	_, err := db.conn.Exec(
		`INSERT INTO geocode_cache (place, latitude, longitude, resolved)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(place) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			resolved = excluded.resolved,
			cached_at = datetime('now')`,
		place, coord.Lat, coord.Lon, r,
	)
	return err
}
