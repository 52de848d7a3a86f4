package risk

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
)

var testScoring = config.Scoring{
	TopN:           5,
	MaxEventPoints: 25,
	Severity:       config.SeverityWeights{High: 1.0, Medium: 0.7, Low: 0.4},
	Distance:       config.DistanceTiers{City: 1.0, CountrySignal: 0.84, Country: 0.6, Continent: 0.15},
	CityRadiusKm:   80,
	Levels:         config.LevelBoundaries{Medium: 26, High: 60},
}

func ptr[T any](v T) *T { return &v }

func testNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func event(hash, title, country, signal, publishedAt string) database.Event {
	return database.Event{
		ContentHash: hash,
		Title:       title,
		Source:      "test",
		PublishedAt: publishedAt,
		Country:     ptr(country),
		Signal:      signal,
	}
}

func TestScoreSupplierFreshHighCityEvent(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		City:     ptr("Shenzhen"),
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}
	// Published right now, high signal, city named in title: full value.
	events := []database.Event{
		event("h1", "Port closure shuts Shenzhen terminals", "China", "high", now.Format(time.RFC3339)),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if result.Score != 25 {
		t.Errorf("Score = %v, want 25 (full single-event value)", result.Score)
	}
	if result.Level != "Low" {
		t.Errorf("Level = %q, want Low for 25", result.Level)
	}
	if len(result.TopEvents) != 1 {
		t.Fatalf("TopEvents count = %d, want 1", len(result.TopEvents))
	}
}

func TestScoreSupplierRecencyDecay(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}

	// ~10.5 days old: recency 0.5, city tier, high signal.
	published := now.Add(-time.Duration(10.5 * 24 * float64(time.Hour)))
	events := []database.Event{
		event("h1", "Factory fire near Shenzhen port", "China", "high", published.Format(time.RFC3339)),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if math.Abs(result.Score-12.5) > 0.1 {
		t.Errorf("Score = %v, want ~12.5 at half decay", result.Score)
	}
}

func TestScoreSupplierWindowBoundaryExcluded(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{ID: 1, Name: "Acme", Country: "China"}
	// Exactly 21 days old: recency reaches zero, no contribution.
	published := now.Add(-21 * 24 * time.Hour)
	events := []database.Event{
		event("h1", "Sanctions hit exports", "China", "high", published.Format(time.RFC3339)),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 for event at window edge", result.Score)
	}
	if len(result.TopEvents) != 0 {
		t.Errorf("TopEvents = %+v, want none", result.TopEvents)
	}
}

func TestScoreSupplierTopNBound(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}

	// Eight maximal events; only five can count and the total clamps.
	var events []database.Event
	for _, h := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		events = append(events,
			event(h, "Port closure shuts Shenzhen terminals "+h, "China", "high", now.Format(time.RFC3339)))
	}

	result := e.ScoreSupplier(supplier, events, now)
	if len(result.TopEvents) != 5 {
		t.Errorf("TopEvents count = %d, want 5", len(result.TopEvents))
	}
	if result.Score != 100 {
		t.Errorf("Score = %v, want clamp at 100", result.Score)
	}
	if result.Level != "High" {
		t.Errorf("Level = %q, want High", result.Level)
	}
}

func TestScoreSupplierDeterministicTiebreak(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}

	ts := now.Format(time.RFC3339)
	forward := []database.Event{
		event("aaa", "Port closure shuts Shenzhen terminals", "China", "high", ts),
		event("bbb", "Port closure halts Shenzhen shipping", "China", "high", ts),
	}
	reversed := []database.Event{forward[1], forward[0]}

	r1 := e.ScoreSupplier(supplier, forward, now)
	r2 := e.ScoreSupplier(supplier, reversed, now)

	if len(r1.TopEvents) != 2 || len(r2.TopEvents) != 2 {
		t.Fatalf("expected 2 contributions in both runs")
	}
	for i := range r1.TopEvents {
		if r1.TopEvents[i].Title != r2.TopEvents[i].Title {
			t.Errorf("ordering depends on input order: %q vs %q",
				r1.TopEvents[i].Title, r2.TopEvents[i].Title)
		}
	}
	if r1.TopEvents[0].hash != "aaa" {
		t.Errorf("tie should break to smaller hash, got %q first", r1.TopEvents[0].hash)
	}
}

func TestScoreSupplierExcludesIrrelevantGeography(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{ID: 1, Name: "Acme", Country: "Vietnam"}
	events := []database.Event{
		// Different continent contributes nothing.
		event("h1", "Dock strike in Hamburg", "Germany", "high", now.Format(time.RFC3339)),
		// No location evidence contributes nothing.
		{ContentHash: "h2", Title: "Global shipping rates rise sharply", Source: "test",
			PublishedAt: now.Format(time.RFC3339), Signal: "medium"},
	}

	result := e.ScoreSupplier(supplier, events, now)
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
}

func TestScoreSupplierSeverityAndTierMultipliers(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{ID: 1, Name: "Acme", Country: "Vietnam"}

	tests := []struct {
		name   string
		signal string
		want   float64
	}{
		// Country-level event: fresh, so points = 25 * severity * tier.
		{"high signal country tier", "high", 25 * 1.0 * 0.84},
		{"medium signal country tier", "medium", 25 * 0.7 * 0.6},
		{"low signal country tier", "low", 25 * 0.4 * 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []database.Event{
				event("h1", "Export delays reported", "Vietnam", tt.signal, now.Format(time.RFC3339)),
			}
			result := e.ScoreSupplier(supplier, events, now)
			if math.Abs(result.Score-tt.want) > 0.1 {
				t.Errorf("Score = %v, want %v", result.Score, tt.want)
			}
		})
	}
}

func TestScoreSupplierLevels(t *testing.T) {
	e := NewEngine(testScoring, 21)

	tests := []struct {
		score float64
		want  string
	}{
		{0, "Low"}, {25, "Low"}, {25.9, "Low"},
		{26, "Medium"}, {45, "Medium"}, {59.9, "Medium"},
		{60, "High"}, {100, "High"},
	}
	for _, tt := range tests {
		if got := e.level(tt.score); got != tt.want {
			t.Errorf("level(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreSupplierUnparsableTimestampSkipped(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{ID: 1, Name: "Acme", Country: "China"}
	events := []database.Event{
		event("h1", "Port delays in exports", "China", "medium", "not-a-timestamp"),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 when timestamp cannot be parsed", result.Score)
	}
}

func TestScoreSupplierBreakdownAndOtherMatches(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{ID: 1, Name: "Acme", Country: "Vietnam"}

	// Seven fresh country-level high events: five count, two spill over.
	var events []database.Event
	for _, h := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		events = append(events,
			event(h, "Export controls tighten "+h, "Vietnam", "high", now.Format(time.RFC3339)))
	}

	result := e.ScoreSupplier(supplier, events, now)
	if len(result.TopEvents) != 5 {
		t.Fatalf("TopEvents = %d, want 5", len(result.TopEvents))
	}
	if len(result.OtherMatches) != 2 {
		t.Fatalf("OtherMatches = %d, want 2 matched events past the cut", len(result.OtherMatches))
	}

	for _, c := range append(result.TopEvents, result.OtherMatches...) {
		if c.DistanceWeight != 0.84 {
			t.Errorf("DistanceWeight = %v, want 0.84", c.DistanceWeight)
		}
		if c.SeverityWeight != 1.0 {
			t.Errorf("SeverityWeight = %v, want 1.0", c.SeverityWeight)
		}
		if c.RecencyWeight != 1.0 {
			t.Errorf("RecencyWeight = %v, want 1.0", c.RecencyWeight)
		}
		if c.EventScore != 21 {
			t.Errorf("EventScore = %v, want 25*0.84", c.EventScore)
		}
	}

	var sum float64
	for _, c := range result.TopEvents {
		sum += c.EventScore
	}
	if math.Min(100, sum) != result.Score {
		t.Errorf("Score = %v, want clamped top-5 sum %v", result.Score, math.Min(100, sum))
	}
}

// Supplier in Dhaka with a same-city high event published now plus a
// same-country medium event 10 days old: 25 + 25*0.6*0.7*(11/21) = 30.5.
func TestScoreSupplierCombinedCityAndCountryEvents(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Dhaka Textiles", Country: "Bangladesh",
		City:     ptr("Dhaka"),
		Latitude: ptr(23.8103), Longitude: ptr(90.4125),
	}
	events := []database.Event{
		event("h1", "Port blockade paralyzes Dhaka shipping", "Bangladesh", "high", now.Format(time.RFC3339)),
		event("h2", "Export delays reported across factories", "Bangladesh", "medium",
			now.Add(-10*24*time.Hour).Format(time.RFC3339)),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if len(result.TopEvents) != 2 {
		t.Fatalf("TopEvents = %d, want 2", len(result.TopEvents))
	}
	if result.TopEvents[0].EventScore != 25 {
		t.Errorf("city event score = %v, want 25", result.TopEvents[0].EventScore)
	}
	if result.TopEvents[1].EventScore != 5.5 {
		t.Errorf("country event score = %v, want 5.5", result.TopEvents[1].EventScore)
	}
	if result.Score != 30.5 {
		t.Errorf("Score = %v, want 30.5", result.Score)
	}
	if result.Level != "Medium" {
		t.Errorf("Level = %q, want Medium", result.Level)
	}
}

func TestScoreSupplierJustInsideWindow(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}

	// 20.999 days old: decayed almost to nothing but still inside.
	age := time.Duration(20.999 * 24 * float64(time.Hour))
	events := []database.Event{
		event("h1", "Port closure shuts Shenzhen terminals", "China", "high",
			now.Add(-age).Format(time.RFC3339)),
	}

	result := e.ScoreSupplier(supplier, events, now)
	if len(result.TopEvents) != 1 {
		t.Fatalf("TopEvents = %d, want 1 just inside the window", len(result.TopEvents))
	}
	if result.TopEvents[0].RecencyWeight <= 0 {
		t.Errorf("RecencyWeight = %v, want > 0", result.TopEvents[0].RecencyWeight)
	}
}

func TestScoreSupplierIdempotent(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}
	events := []database.Event{
		event("h1", "Port closure shuts Shenzhen terminals", "China", "high", now.Format(time.RFC3339)),
		event("h2", "Export delays reported", "China", "medium",
			now.Add(-5*24*time.Hour).Format(time.RFC3339)),
	}

	r1 := e.ScoreSupplier(supplier, events, now)
	r2 := e.ScoreSupplier(supplier, events, now)
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("same inputs scored differently:\n%+v\n%+v", r1, r2)
	}
}

func TestScoreSupplierReadsFetchedContent(t *testing.T) {
	e := NewEngine(testScoring, 21)
	now := testNow()

	supplier := &database.Supplier{
		ID: 1, Name: "Acme", Country: "China",
		City:     ptr("Shenzhen"),
		Latitude: ptr(22.5431), Longitude: ptr(114.0579),
	}
	// The city appears only in the fetched article body.
	ev := event("h1", "Severe flooding disrupts manufacturing", "China", "high", now.Format(time.RFC3339))
	ev.Content = ptr("Flood waters closed factories across Shenzhen on Monday.")

	result := e.ScoreSupplier(supplier, []database.Event{ev}, now)
	if len(result.TopEvents) != 1 {
		t.Fatalf("TopEvents = %d, want 1", len(result.TopEvents))
	}
	if result.TopEvents[0].DistanceWeight != 1.0 {
		t.Errorf("DistanceWeight = %v, want city tier from article body", result.TopEvents[0].DistanceWeight)
	}
}

func TestResultSummary(t *testing.T) {
	r := Result{}
	if got := r.Summary(); got != "No relevant events" {
		t.Errorf("empty Summary = %q", got)
	}

	r.TopEvents = []Contribution{{Title: "Port strike"}, {Title: "Factory fire"}}
	want := "2 events: Port strike; Factory fire"
	if got := r.Summary(); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}
