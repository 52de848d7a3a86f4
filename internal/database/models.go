package database

import (
	"strings"
	"time"
)

// Supplier is a monitored supplier with its last computed risk.
type Supplier struct {
	ID           int64
	Name         string
	Category     *string
	City         *string
	Country      string
	Tier         int
	Latitude     *float64
	Longitude    *float64
	RiskScore    float64
	RiskLevel    string
	EventSummary *string
	LastUpdated  *string
}

// Event is a stored disruption event. PublishedAt is RFC 3339 in UTC.
type Event struct {
	ID             int64
	ContentHash    string
	Title          string
	Description    *string
	Content        *string
	ContentFetched bool
	Source         string
	URL            *string
	PublishedAt    string
	Country        *string
	EventType      string
	Signal         string
	IngestedAt     *string
}

// PublishedTime parses the stored publication timestamp.
func (e *Event) PublishedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, e.PublishedAt)
}

// Text returns the title, description, and any fetched full text
// joined for keyword and location scanning. Cities named only in the
// article body still resolve this way.
func (e *Event) Text() string {
	parts := []string{e.Title}
	if e.Description != nil && *e.Description != "" {
		parts = append(parts, *e.Description)
	}
	if e.Content != nil && *e.Content != "" {
		parts = append(parts, *e.Content)
	}
	return strings.Join(parts, " ")
}

// Alert records a threshold crossing for a supplier.
type Alert struct {
	ID         string // UUID
	SupplierID int64
	Score      float64
	Level      string
	Title      string
	Body       *string
	CreatedAt  *string
}

// Digest is a generated daily risk summary.
type Digest struct {
	ID            int64
	DigestDate    string
	TLDR          string
	BodyMarkdown  string
	SupplierCount int
	EventCount    int
	GeneratedAt   *string
}

// IngestRun records counters from one ingestion cycle.
type IngestRun struct {
	ID           int64
	StartedAt    string
	FinishedAt   *string
	Found        int
	Admitted     int
	Duplicates   int
	Purged       int
	ParseDrops   int
	Filtered     int
	SourceErrors int
}
