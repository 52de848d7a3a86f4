package ingest

import (
	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/geo"
)

// BuildSources assembles the source list from configuration. Weather
// alert places are derived from the supplier list, one per distinct
// located city.
func BuildSources(cfg *config.Config, suppliers []database.Supplier) []Source {
	var sources []Source

	for _, f := range cfg.Sources.Feeds {
		sources = append(sources, NewFeedSource(f.URL, f.Name, f.Country, cfg.Ingest.MaxPerSource))
	}

	if cfg.Sources.NewsAPI.Enabled {
		api := NewNewsAPISource(
			cfg.Sources.NewsAPI.APIKeyEnv,
			cfg.Sources.NewsAPI.Query,
			cfg.Ingest.WindowDays,
			100,
		)
		if api.IsConfigured() {
			sources = append(sources, api)
		}
	}

	if cfg.Sources.Weather.Enabled {
		weather := NewWeatherSource(cfg.Sources.Weather.APIKeyEnv, weatherPlaces(suppliers))
		if weather.IsConfigured() && len(weather.places) > 0 {
			sources = append(sources, weather)
		}
	}

	return sources
}

func weatherPlaces(suppliers []database.Supplier) []WeatherPlace {
	seen := make(map[string]bool)
	var places []WeatherPlace
	for _, s := range suppliers {
		if s.City == nil || *s.City == "" || seen[*s.City] {
			continue
		}
		var coord geo.Coord
		if s.Latitude != nil && s.Longitude != nil {
			coord = geo.Coord{Lat: *s.Latitude, Lon: *s.Longitude}
		} else if c, ok := geo.CityCoords(*s.City); ok {
			coord = c
		} else {
			continue
		}
		seen[*s.City] = true
		places = append(places, WeatherPlace{Label: *s.City, Country: s.Country, Coord: coord})
	}
	return places
}
