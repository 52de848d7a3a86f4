// Package geo provides the location primitives for proximity scoring:
// country detection in free text, continent lookup, a built-in city
// coordinate table, and haversine distance.
package geo

import (
	"math"
	"sort"
	"strings"
	"sync"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between
// two lat/lon points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// countryContinents maps canonical country names to two-letter
// continent codes. The table covers sourcing and transit countries
// rather than every ISO entry.
var countryContinents = map[string]string{
	"China": "AS", "Vietnam": "AS", "India": "AS", "Bangladesh": "AS",
	"Thailand": "AS", "Malaysia": "AS", "Indonesia": "AS", "Philippines": "AS",
	"Pakistan": "AS", "Sri Lanka": "AS", "Myanmar": "AS", "Cambodia": "AS",
	"South Korea": "AS", "Japan": "AS", "Taiwan": "AS", "Singapore": "AS",
	"United Arab Emirates": "AS", "Saudi Arabia": "AS", "Turkey": "AS",
	"Israel": "AS", "Lebanon": "AS", "Jordan": "AS", "Iraq": "AS",
	"Iran": "AS", "Oman": "AS", "Qatar": "AS", "Kuwait": "AS",
	"Kazakhstan": "AS", "Uzbekistan": "AS", "Azerbaijan": "AS", "Georgia": "AS",
	"Russia": "EU", "Ukraine": "EU", "Moldova": "EU", "Romania": "EU",
	"Germany": "EU", "Netherlands": "EU", "Spain": "EU", "Italy": "EU",
	"France": "EU", "United Kingdom": "EU", "Belgium": "EU", "Poland": "EU",
	"Greece": "EU", "Portugal": "EU", "Sweden": "EU", "Norway": "EU",
	"Denmark": "EU", "Finland": "EU", "Austria": "EU", "Switzerland": "EU",
	"Czechia": "EU", "Hungary": "EU", "Slovakia": "EU", "Bulgaria": "EU",
	"Serbia": "EU", "Croatia": "EU", "Ireland": "EU", "Lithuania": "EU",
	"Latvia": "EU", "Estonia": "EU", "Belarus": "EU",
	"Egypt": "AF", "Morocco": "AF", "Nigeria": "AF", "South Africa": "AF",
	"Kenya": "AF", "Ethiopia": "AF", "Ghana": "AF", "Tanzania": "AF",
	"Algeria": "AF", "Tunisia": "AF", "Libya": "AF", "Sudan": "AF",
	"United States": "NA", "Canada": "NA", "Mexico": "NA",
	"Guatemala": "NA", "Honduras": "NA", "Panama": "NA", "Costa Rica": "NA",
	"Dominican Republic": "NA", "Cuba": "NA", "Haiti": "NA",
	"Brazil": "SA", "Argentina": "SA", "Chile": "SA", "Peru": "SA",
	"Colombia": "SA", "Ecuador": "SA", "Venezuela": "SA", "Uruguay": "SA",
	"Bolivia": "SA", "Paraguay": "SA",
	"Australia": "OC", "New Zealand": "OC",
}

// countryAliases maps lowercase variants found in news text to the
// canonical name. Canonical names themselves are added at init.
var countryAliases = map[string]string{
	"u.s.": "United States", "u.s.a.": "United States",
	"united states of america": "United States",
	"u.k.": "United Kingdom", "britain": "United Kingdom",
	"great britain": "United Kingdom", "england": "United Kingdom",
	"scotland": "United Kingdom", "wales": "United Kingdom",
	"uae": "United Arab Emirates", "emirates": "United Arab Emirates",
	"republic of korea": "South Korea",
	"holland": "Netherlands", "the netherlands": "Netherlands",
	"czech republic": "Czechia",
	"burma": "Myanmar",
	"türkiye": "Turkey", "turkiye": "Turkey",
	"hong kong": "China", "macau": "China",
	"viet nam": "Vietnam",
}

var (
	detectOnce    sync.Once
	detectNames   []string          // lowercase names, longest first
	detectCanon   map[string]string // lowercase name -> canonical
	continentOnce sync.Once
	continents    map[string]string // lowercase country -> continent code
)

func buildDetectTables() {
	detectCanon = make(map[string]string, len(countryContinents)+len(countryAliases))
	for name := range countryContinents {
		detectCanon[strings.ToLower(name)] = name
	}
	for alias, canonical := range countryAliases {
		detectCanon[alias] = canonical
	}
	detectNames = make([]string, 0, len(detectCanon))
	for name := range detectCanon {
		detectNames = append(detectNames, name)
	}
	// Longest first so "south korea" wins over "korea" and partial
	// names never shadow fuller ones. Ties break alphabetically to
	// keep detection deterministic.
	sort.Slice(detectNames, func(i, j int) bool {
		if len(detectNames[i]) != len(detectNames[j]) {
			return len(detectNames[i]) > len(detectNames[j])
		}
		return detectNames[i] < detectNames[j]
	})
}

// DetectCountry scans text for a known country name or alias and
// returns the canonical name of the first (longest) match, or "" when
// no country is named.
func DetectCountry(text string) string {
	if text == "" {
		return ""
	}
	detectOnce.Do(buildDetectTables)
	lower := strings.ToLower(text)
	for _, name := range detectNames {
		if strings.Contains(lower, name) {
			return detectCanon[name]
		}
	}
	return ""
}

// Continent returns the two-letter continent code for a country name
// or alias, or "" when unknown.
func Continent(country string) string {
	if country == "" {
		return ""
	}
	continentOnce.Do(func() {
		continents = make(map[string]string, len(countryContinents)+len(countryAliases))
		for name, code := range countryContinents {
			continents[strings.ToLower(name)] = code
		}
		for alias, canonical := range countryAliases {
			if code, ok := countryContinents[canonical]; ok {
				continents[alias] = code
			}
		}
	})
	return continents[strings.ToLower(strings.TrimSpace(country))]
}

// SameCountry reports whether two country strings name the same
// country, resolving aliases on both sides.
func SameCountry(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return canonical(a) == canonical(b)
}

func canonical(name string) string {
	detectOnce.Do(buildDetectTables)
	lower := strings.ToLower(strings.TrimSpace(name))
	if c, ok := detectCanon[lower]; ok {
		return c
	}
	return strings.TrimSpace(name)
}
