package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// ErrUnresolved marks a place no source could geocode. Callers fall
// back to country-level proximity.
var ErrUnresolved = errors.New("geo: place not resolved")

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// GeocodeCache persists lookups across runs. Negative results are
// cached too so unknown places cost one network call ever.
type GeocodeCache interface {
	LookupGeocode(place string) (coord Coord, resolved, found bool, err error)
	SaveGeocode(place string, coord Coord, resolved bool) error
}

// Geocoder resolves city names to coordinates. Lookups go through the
// built-in city table first, then the persistent cache, then
// Nominatim under its 1 req/sec usage policy.
type Geocoder struct {
	cache  GeocodeCache
	client *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

func NewGeocoder(cache GeocodeCache) *Geocoder {
	return &Geocoder{
		cache:  cache,
		client: &http.Client{Timeout: 8 * time.Second},
	}
}

// Resolve geocodes a city, optionally qualified by country. The
// qualified form is tried before the bare name.
func (g *Geocoder) Resolve(ctx context.Context, city, country string) (Coord, error) {
	if city == "" {
		return Coord{}, ErrUnresolved
	}

	if c, ok := CityCoords(city); ok {
		return c, nil
	}

	key := cacheKey(city, country)
	if g.cache != nil {
		coord, resolved, found, err := g.cache.LookupGeocode(key)
		if err != nil {
			return Coord{}, fmt.Errorf("geocode cache lookup: %w", err)
		}
		if found {
			if !resolved {
				return Coord{}, ErrUnresolved
			}
			return coord, nil
		}
	}

	queries := []string{}
	if country != "" {
		queries = append(queries, city+", "+country)
	}
	queries = append(queries, city)

	for _, q := range queries {
		coord, ok, err := g.query(ctx, q)
		if err != nil {
			return Coord{}, err
		}
		if ok {
			if g.cache != nil {
				if err := g.cache.SaveGeocode(key, coord, true); err != nil {
					return Coord{}, fmt.Errorf("geocode cache save: %w", err)
				}
			}
			return coord, nil
		}
	}

	if g.cache != nil {
		if err := g.cache.SaveGeocode(key, Coord{}, false); err != nil {
			return Coord{}, fmt.Errorf("geocode cache save: %w", err)
		}
	}
	return Coord{}, ErrUnresolved
}

func (g *Geocoder) query(ctx context.Context, q string) (Coord, bool, error) {
	g.throttle()

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return Coord{}, false, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "riskwatch/1.0 (supply-chain-monitor)")

	resp, err := g.client.Do(req)
	if err != nil {
		return Coord{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coord{}, false, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coord{}, false, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(results) == 0 {
		return Coord{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coord{}, false, fmt.Errorf("parsing geocode latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coord{}, false, fmt.Errorf("parsing geocode longitude: %w", err)
	}
	return Coord{Lat: lat, Lon: lon}, true, nil
}

// throttle enforces a minimum gap between Nominatim calls.
func (g *Geocoder) throttle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	const minGap = 1100 * time.Millisecond
	if elapsed := time.Since(g.lastCall); elapsed < minGap {
		time.Sleep(minGap - elapsed)
	}
	g.lastCall = time.Now()
}

func cacheKey(city, country string) string {
	if country == "" {
		return city
	}
	return city + "|" + country
}
