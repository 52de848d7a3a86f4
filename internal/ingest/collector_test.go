package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskwatch/riskwatch/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type stubSource struct {
	name       string
	candidates []Candidate
	err        error
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Fetch(ctx context.Context) ([]Candidate, error) {
	return s.candidates, s.err
}

func testNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func relevantCandidate(title, publishedRaw string) Candidate {
	return Candidate{
		Title:        title,
		Description:  "Container shipping suspended at the port in China",
		URL:          "https://example.com/" + title,
		PublishedRaw: publishedRaw,
	}
}

func TestCollectorAdmitsRelevantEvents(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		relevantCandidate("Typhoon closes Shenzhen port", now.Add(-2*24*time.Hour).Format(time.RFC3339)),
	}}
	c := NewCollector(db, []Source{src}, 21, 2, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if r.Admitted != 1 {
		t.Errorf("Admitted = %d, want 1", r.Admitted)
	}

	events, err := db.GetEventsSince("2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("stored events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Signal != "high" {
		t.Errorf("signal = %q, want high for typhoon", e.Signal)
	}
	if e.Country == nil || *e.Country != "China" {
		t.Errorf("country = %v, want China detected from text", e.Country)
	}
	if e.EventType != "natural_disaster" {
		t.Errorf("event type = %q, want natural_disaster", e.EventType)
	}
}

func TestCollectorRejectsUnparsableTimestamp(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		relevantCandidate("Port strike begins", "three days ago"),
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if r.ParseDrops != 1 || r.Admitted != 0 {
		t.Errorf("ParseDrops = %d, Admitted = %d, want 1/0", r.ParseDrops, r.Admitted)
	}
}

func TestCollectorRejectsFutureDated(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		relevantCandidate("Port strike planned", now.Add(48*time.Hour).Format(time.RFC3339)),
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if r.Future != 1 || r.Admitted != 0 {
		t.Errorf("Future = %d, Admitted = %d, want 1/0", r.Future, r.Admitted)
	}
}

func TestCollectorRejectsOutsideWindow(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		relevantCandidate("Port strike drags on", now.Add(-22*24*time.Hour).Format(time.RFC3339)),
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if r.Expired != 1 || r.Admitted != 0 {
		t.Errorf("Expired = %d, Admitted = %d, want 1/0", r.Expired, r.Admitted)
	}
}

func TestCollectorFiltersIrrelevant(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		{
			Title:        "Local bakery wins award",
			Description:  "Celebration in town",
			PublishedRaw: now.Add(-time.Hour).Format(time.RFC3339),
		},
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if r.Filtered != 1 || r.Admitted != 0 {
		t.Errorf("Filtered = %d, Admitted = %d, want 1/0", r.Filtered, r.Admitted)
	}
}

func TestCollectorSkipFilterBypassesRelevance(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "weather", candidates: []Candidate{
		{
			Title:        "Severe thunderstorm warning near Shenzhen",
			PublishedRaw: now.Add(-time.Hour).Format(time.RFC3339),
			CountryHint:  "China",
			SkipFilter:   true,
		},
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if r.Admitted != 1 {
		t.Errorf("Admitted = %d, want 1 for pre-qualified candidate", r.Admitted)
	}
}

func TestCollectorDeduplicatesAcrossRuns(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	cand := relevantCandidate("Dock strike halts cargo", now.Add(-24*time.Hour).Format(time.RFC3339))
	src := &stubSource{name: "test", candidates: []Candidate{cand}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	if _, err := c.Run(context.Background(), now); err != nil {
		t.Fatal(err)
	}
	r, err := c.Run(context.Background(), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if r.Duplicates != 1 || r.Admitted != 0 {
		t.Errorf("second run Duplicates = %d, Admitted = %d, want 1/0", r.Duplicates, r.Admitted)
	}

	count, err := db.CountEvents()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountEvents = %d, want 1", count)
	}
}

func TestCollectorPurgesExpiredOnRun(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	// Seed an event that will age out by the next run.
	old := &database.Event{
		ContentHash: "old",
		Title:       "Old port strike",
		Source:      "seed",
		PublishedAt: now.Add(-20 * 24 * time.Hour).Format(time.RFC3339),
		Signal:      "medium",
	}
	if _, err := db.InsertEvent(old); err != nil {
		t.Fatal(err)
	}

	c := NewCollector(db, []Source{}, 21, 1, time.Second, nil)
	r, err := c.Run(context.Background(), now.Add(5*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if r.Purged != 1 {
		t.Errorf("Purged = %d, want 1", r.Purged)
	}
}

func TestCollectorIsolatesSourceFailures(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	good := &stubSource{name: "good", candidates: []Candidate{
		relevantCandidate("Port closure in Rotterdam", now.Add(-time.Hour).Format(time.RFC3339)),
	}}
	bad := &stubSource{name: "bad", err: errors.New("connection refused")}

	c := NewCollector(db, []Source{bad, good}, 21, 4, time.Second, nil)
	r, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error despite isolation: %v", err)
	}
	if r.SourceErrors != 1 {
		t.Errorf("SourceErrors = %d, want 1", r.SourceErrors)
	}
	if r.Admitted != 1 {
		t.Errorf("Admitted = %d, want 1 from the healthy source", r.Admitted)
	}
}

func TestCollectorSurfacesStoreFailure(t *testing.T) {
	db := openTestDB(t)
	now := testNow()

	src := &stubSource{name: "test", candidates: []Candidate{
		relevantCandidate("Port strike begins", now.Add(-time.Hour).Format(time.RFC3339)),
	}}
	c := NewCollector(db, []Source{src}, 21, 1, time.Second, nil)

	db.Close()
	if _, err := c.Run(context.Background(), now); err == nil {
		t.Fatal("Run with an unavailable store returned nil error")
	}
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash("BBC World", "Port strike", "2026-08-10T14:30:00Z")
	b := ContentHash("BBC World", "Port strike", "2026-08-10T14:30:00Z")
	if a != b {
		t.Errorf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(a))
	}

	c := ContentHash("Reuters", "Port strike", "2026-08-10T14:30:00Z")
	if a == c {
		t.Error("different sources must not collide")
	}
}
