// Package suppliers loads the monitored supplier list from CSV and
// keeps it in the database. Rows without coordinates are geocoded so
// city-level proximity works from the first scoring run.
package suppliers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/geo"
)

// SampleCSV is written by `riskwatch suppliers sample` as a starting
// point for the supplier list.
const SampleCSV = `name,category,city,country,tier,lat,lon
Acme Semiconductors,electronics,Shenzhen,China,1,,
Hanoi Circuit Works,electronics,Hanoi,Vietnam,2,,
Rhine Precision GmbH,machinery,Stuttgart,Germany,1,48.7758,9.1829
Gulf Polymer Industries,chemicals,Dubai,UAE,2,,
Pacific Freight Partners,logistics,Singapore,Singapore,1,,
`

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int
	Updated  int
	Geocoded int
	Skipped  []string
}

// Importer reads supplier CSVs into the database.
type Importer struct {
	db       *database.DB
	geocoder *geo.Geocoder
}

func NewImporter(db *database.DB) *Importer {
	return &Importer{db: db, geocoder: geo.NewGeocoder(db)}
}

// ImportCSV reads supplier rows and upserts them by name. Expected
// columns: name, category, city, country, tier, lat, lon. A header
// row is detected and skipped. Rows missing coordinates are geocoded
// through the cached geocoder; geocoding failure is not fatal, those
// suppliers fall back to country-level proximity.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		line++

		if line == 1 && isHeader(record) {
			continue
		}

		supplier, problem := parseRow(record)
		if problem != "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %s", line, problem))
			continue
		}

		if supplier.Latitude == nil && supplier.City != nil {
			coord, err := im.geocoder.Resolve(ctx, *supplier.City, supplier.Country)
			switch {
			case err == nil:
				supplier.Latitude = &coord.Lat
				supplier.Longitude = &coord.Lon
				result.Geocoded++
			case errors.Is(err, geo.ErrUnresolved):
				log.Printf("suppliers: could not geocode %q, using country-level proximity", *supplier.City)
			default:
				log.Printf("suppliers: geocoding %q: %v", *supplier.City, err)
			}
		}

		existing, err := im.db.GetSupplierByName(supplier.Name)
		if err != nil {
			return nil, fmt.Errorf("checking supplier %q: %w", supplier.Name, err)
		}

		if _, err := im.db.UpsertSupplier(supplier); err != nil {
			return nil, fmt.Errorf("saving supplier %q: %w", supplier.Name, err)
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Imported++
		}
	}

	return result, nil
}

func parseRow(record []string) (*database.Supplier, string) {
	if len(record) < 4 {
		return nil, "expected at least name, category, city, country"
	}

	s := &database.Supplier{
		Name:    strings.TrimSpace(record[0]),
		Country: strings.TrimSpace(record[3]),
		Tier:    1,
	}
	if s.Name == "" {
		return nil, "missing supplier name"
	}
	if s.Country == "" {
		return nil, "missing country"
	}

	if v := strings.TrimSpace(record[1]); v != "" {
		s.Category = &v
	}
	if v := strings.TrimSpace(record[2]); v != "" {
		s.City = &v
	}

	if len(record) > 4 {
		if v := strings.TrimSpace(record[4]); v != "" {
			tier, err := strconv.Atoi(v)
			if err != nil || tier < 1 {
				return nil, fmt.Sprintf("invalid tier %q", v)
			}
			s.Tier = tier
		}
	}

	if len(record) > 6 {
		latRaw := strings.TrimSpace(record[5])
		lonRaw := strings.TrimSpace(record[6])
		if latRaw != "" || lonRaw != "" {
			lat, latErr := strconv.ParseFloat(latRaw, 64)
			lon, lonErr := strconv.ParseFloat(lonRaw, 64)
			if latErr != nil || lonErr != nil {
				return nil, "lat and lon must both be decimal degrees"
			}
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return nil, fmt.Sprintf("coordinates out of range: %s,%s", latRaw, lonRaw)
			}
			s.Latitude = &lat
			s.Longitude = &lon
		}
	}

	return s, ""
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name")
}
