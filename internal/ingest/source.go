// Package ingest pulls candidate events from configured sources and
// admits them into the event store. Admission normalizes timestamps,
// enforces the recency window, filters for supply chain relevance, and
// deduplicates by content hash. Expired events are purged in the same
// run so the store always reflects the window.
package ingest

import "context"

// Candidate is a raw item pulled from a source before admission.
type Candidate struct {
	Title        string
	Description  string
	URL          string
	PublishedRaw string // as emitted by the source, any format
	CountryHint  string // source-level country tag, may be empty

	// SkipFilter admits the candidate without the relevance filter.
	// Set by sources whose items are pre-qualified, like weather
	// alerts issued for a supplier location.
	SkipFilter bool
}

// Source produces candidates from one upstream feed or API. Fetch must
// honor ctx cancellation; a failing source never stops the run.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Candidate, error)
}
