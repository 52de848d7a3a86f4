package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources `yaml:"sources"`
	Ingest  Ingest  `yaml:"ingest"`
	Scoring Scoring `yaml:"scoring"`
	Alerts  Alerts  `yaml:"alerts"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Sources struct {
	Feeds   []Feed        `yaml:"feeds"`
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
	Weather WeatherConfig `yaml:"weather"`
}

// Feed is a single RSS/Atom feed. Country tags articles whose text does
// not name a country themselves; empty means no hint.
type Feed struct {
	URL     string `yaml:"url"`
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type NewsAPIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
	Query     string `yaml:"query"`
}

type WeatherConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Ingest struct {
	WindowDays    int  `yaml:"window_days"`
	Workers       int  `yaml:"workers"`
	SourceTimeout int  `yaml:"source_timeout_seconds"`
	FetchContent  bool `yaml:"fetch_content"`
	MaxPerSource  int  `yaml:"max_per_source"`
}

// Scoring exposes every constant of the scoring engine. They are
// tunables, not hidden heuristics.
type Scoring struct {
	TopN           int             `yaml:"top_n"`
	MaxEventPoints float64         `yaml:"max_event_points"`
	Severity       SeverityWeights `yaml:"severity_weights"`
	Distance       DistanceTiers   `yaml:"distance_tiers"`
	CityRadiusKm   float64         `yaml:"city_radius_km"`
	Levels         LevelBoundaries `yaml:"levels"`
}

type SeverityWeights struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

type DistanceTiers struct {
	City          float64 `yaml:"city"`
	CountrySignal float64 `yaml:"country_signal"`
	Country       float64 `yaml:"country"`
	Continent     float64 `yaml:"continent"`
}

// LevelBoundaries are inclusive lower bounds: scores >= High map to High,
// scores >= Medium map to Medium, everything below is Low.
type LevelBoundaries struct {
	Medium int `yaml:"medium"`
	High   int `yaml:"high"`
}

type Alerts struct {
	Threshold       int `yaml:"threshold"`
	CooldownMinutes int `yaml:"cooldown_minutes"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for riskwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "riskwatch")
}

// DataDir returns the XDG data directory for riskwatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "riskwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/riskwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'riskwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			NewsAPI: NewsAPIConfig{
				Enabled:   true,
				APIKeyEnv: "NEWSAPI_KEY",
				Query:     `port OR shipping OR factory OR "supply chain" disruption`,
			},
			Weather: WeatherConfig{
				Enabled:   false,
				APIKeyEnv: "OPENWEATHER_KEY",
			},
		},
		Ingest: Ingest{
			WindowDays:    21,
			Workers:       8,
			SourceTimeout: 15,
			MaxPerSource:  20,
		},
		Scoring: Scoring{
			TopN:           5,
			MaxEventPoints: 25,
			Severity:       SeverityWeights{High: 1.0, Medium: 0.7, Low: 0.4},
			Distance:       DistanceTiers{City: 1.0, CountrySignal: 0.84, Country: 0.6, Continent: 0.15},
			CityRadiusKm:   80,
			Levels:         LevelBoundaries{Medium: 26, High: 60},
		},
		Alerts:  Alerts{Threshold: 60, CooldownMinutes: 30},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// Window returns the admission window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Ingest.WindowDays) * 24 * time.Hour
}

// SourceTimeout returns the per-source fetch timeout as a duration.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Ingest.SourceTimeout) * time.Second
}

// AlertCooldown returns the alert cooldown as a duration.
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.Alerts.CooldownMinutes) * time.Minute
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
