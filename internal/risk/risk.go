// Package risk turns stored events into a bounded 0-100 risk score per
// supplier. Each event contributes at most MaxEventPoints, discounted
// by recency, signal severity, and geographic proximity; only the top
// N contributions count. Scoring is pure: the same inputs and clock
// always produce the same result.
package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskwatch/riskwatch/internal/classify"
	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/proximity"
)

// Result is the scored risk for one supplier. TopEvents carries the
// contributions that count toward the score; OtherMatches carries the
// remaining matched events past the top-N cut, for display only.
type Result struct {
	SupplierID   int64          `json:"supplier_id"`
	Supplier     string         `json:"supplier"`
	Country      string         `json:"country"`
	Score        float64        `json:"score"`
	Level        string         `json:"level"`
	TopEvents    []Contribution `json:"top_events"`
	OtherMatches []Contribution `json:"other_matches"`
}

// Contribution is one matched event with its full per-event breakdown.
type Contribution struct {
	EventID        int64   `json:"event_id"`
	Title          string  `json:"title"`
	Source         string  `json:"source"`
	PublishedAt    string  `json:"published_at"`
	Signal         string  `json:"signal"`
	Proximity      string  `json:"proximity"`
	EventScore     float64 `json:"event_score"`
	DistanceWeight float64 `json:"distance_weight"`
	SeverityWeight float64 `json:"severity_weight"`
	RecencyWeight  float64 `json:"recency_weight"`

	hash string // tiebreak only
}

// Engine scores suppliers with a fixed configuration.
type Engine struct {
	cfg        config.Scoring
	windowDays int
	resolver   *proximity.Resolver
}

func NewEngine(cfg config.Scoring, windowDays int) *Engine {
	tiers := proximity.Tiers{
		City:          cfg.Distance.City,
		CountrySignal: cfg.Distance.CountrySignal,
		Country:       cfg.Distance.Country,
		Continent:     cfg.Distance.Continent,
	}
	return &Engine{
		cfg:        cfg,
		windowDays: windowDays,
		resolver:   proximity.NewResolver(tiers, cfg.CityRadiusKm),
	}
}

// ScoreSupplier computes the bounded risk score for one supplier over
// the given events. Events with no geographic relevance or zero
// recency are excluded before the top-N cut.
func (e *Engine) ScoreSupplier(s *database.Supplier, events []database.Event, now time.Time) Result {
	ps := proximity.Supplier{
		Country: s.Country,
		Lat:     s.Latitude,
		Lon:     s.Longitude,
	}
	if s.City != nil {
		ps.City = *s.City
	}

	var contributions []Contribution
	for i := range events {
		ev := &events[i]
		c, ok := e.scoreEvent(ps, ev, now)
		if !ok {
			continue
		}
		contributions = append(contributions, c)
	}

	// Highest points first. Ties go to the newer event, then the
	// lexically smaller content hash, so ordering never depends on
	// input order.
	sort.Slice(contributions, func(i, j int) bool {
		a, b := contributions[i], contributions[j]
		if a.EventScore != b.EventScore {
			return a.EventScore > b.EventScore
		}
		if a.PublishedAt != b.PublishedAt {
			return a.PublishedAt > b.PublishedAt
		}
		return a.hash < b.hash
	})

	top := contributions
	other := []Contribution{}
	if len(contributions) > e.cfg.TopN {
		top = contributions[:e.cfg.TopN]
		other = contributions[e.cfg.TopN:]
	}

	var total float64
	for _, c := range top {
		total += c.EventScore
	}
	total = math.Min(100, total)
	total = math.Round(total*10) / 10

	return Result{
		SupplierID:   s.ID,
		Supplier:     s.Name,
		Country:      s.Country,
		Score:        total,
		Level:        e.level(total),
		TopEvents:    top,
		OtherMatches: other,
	}
}

// scoreEvent computes one event's contribution, or ok=false when the
// event cannot contribute (unparsable timestamp, outside the window,
// or geographically irrelevant).
func (e *Engine) scoreEvent(s proximity.Supplier, ev *database.Event, now time.Time) (Contribution, bool) {
	published, err := ev.PublishedTime()
	if err != nil {
		return Contribution{}, false
	}

	ageDays := now.Sub(published).Hours() / 24
	if ageDays < 0 {
		// Admission already rejects future-dated events, so a negative
		// age here can only be clock drift since ingestion. Treat the
		// event as brand new instead of dropping it.
		ageDays = 0
	}
	recency := 1 - ageDays/float64(e.windowDays)
	if recency <= 0 {
		return Contribution{}, false
	}

	severity := classify.Signal(ev.Signal).Weight(
		e.cfg.Severity.High, e.cfg.Severity.Medium, e.cfg.Severity.Low,
	)

	pe := proximity.Event{
		Text:   ev.Text(),
		Signal: classify.Signal(ev.Signal),
	}
	if ev.Country != nil {
		pe.Country = *ev.Country
	}
	distance, label := e.resolver.Resolve(s, pe)
	if distance == 0 {
		return Contribution{}, false
	}

	points := e.cfg.MaxEventPoints * recency * severity * distance
	if points <= 0 {
		return Contribution{}, false
	}
	points = math.Round(points*100) / 100

	return Contribution{
		EventID:        ev.ID,
		Title:          ev.Title,
		Source:         ev.Source,
		PublishedAt:    ev.PublishedAt,
		Signal:         ev.Signal,
		Proximity:      label,
		EventScore:     points,
		DistanceWeight: distance,
		SeverityWeight: severity,
		RecencyWeight:  recency,
		hash:           ev.ContentHash,
	}, true
}

// level maps a total score onto its band.
func (e *Engine) level(score float64) string {
	switch {
	case score >= float64(e.cfg.Levels.High):
		return "High"
	case score >= float64(e.cfg.Levels.Medium):
		return "Medium"
	default:
		return "Low"
	}
}

// Summary renders a short one-line description of the top events, for
// storage on the supplier row.
func (r *Result) Summary() string {
	if len(r.TopEvents) == 0 {
		return "No relevant events"
	}
	titles := make([]string, 0, len(r.TopEvents))
	for _, c := range r.TopEvents {
		titles = append(titles, c.Title)
	}
	return fmt.Sprintf("%d events: %s", len(r.TopEvents), strings.Join(titles, "; "))
}
