package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/riskwatch/riskwatch/internal/geo"
)

const openWeatherURL = "https://api.openweathermap.org/data/3.0/onecall"

// WeatherSource pulls active government weather alerts around supplier
// locations from the OpenWeatherMap One Call API. One lookup per
// distinct place keeps the call count bounded by the supplier list.
type WeatherSource struct {
	apiKey string
	places []WeatherPlace
	client *http.Client
}

// WeatherPlace is a monitored location for weather alerts.
type WeatherPlace struct {
	Label   string // usually the supplier city
	Country string
	Coord   geo.Coord
}

func NewWeatherSource(apiKeyEnv string, places []WeatherPlace) *WeatherSource {
	return &WeatherSource{
		apiKey: os.Getenv(apiKeyEnv),
		places: places,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WeatherSource) Name() string { return "OpenWeatherMap" }

// IsConfigured returns whether the API key is available.
func (s *WeatherSource) IsConfigured() bool {
	return s.apiKey != ""
}

// Fetch returns one candidate per active alert across all places.
func (s *WeatherSource) Fetch(ctx context.Context) ([]Candidate, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	var candidates []Candidate
	for _, place := range s.places {
		alerts, err := s.fetchAlerts(ctx, place.Coord)
		if err != nil {
			return candidates, fmt.Errorf("weather alerts for %s: %w", place.Label, err)
		}
		for _, a := range alerts {
			desc := a.Description
			if len(desc) > 1000 {
				desc = desc[:1000]
			}
			title := a.Event
			if title == "" {
				title = "Weather alert"
			}
			candidates = append(candidates, Candidate{
				Title:        fmt.Sprintf("%s near %s", title, place.Label),
				Description:  desc,
				PublishedRaw: time.Unix(a.Start, 0).UTC().Format(time.RFC3339),
				CountryHint:  place.Country,
				SkipFilter:   true,
			})
		}
	}
	return candidates, nil
}

type weatherAlert struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	Start       int64  `json:"start"`
}

func (s *WeatherSource) fetchAlerts(ctx context.Context, c geo.Coord) ([]weatherAlert, error) {
	params := url.Values{
		"lat":     {fmt.Sprintf("%.4f", c.Lat)},
		"lon":     {fmt.Sprintf("%.4f", c.Lon)},
		"appid":   {s.apiKey},
		"exclude": {"minutely,hourly,daily"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openWeatherURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Alerts []weatherAlert `json:"alerts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	return result.Alerts, nil
}
