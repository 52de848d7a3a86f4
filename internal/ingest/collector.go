package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/riskwatch/riskwatch/internal/classify"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/geo"
	"github.com/riskwatch/riskwatch/internal/metrics"
	"github.com/riskwatch/riskwatch/internal/timeparse"
)

// Result holds the counters of one ingestion run.
type Result struct {
	Found        int
	Admitted     int
	Duplicates   int
	ParseDrops   int // unparsable timestamps
	Future       int // future-dated, rejected
	Expired      int // older than the window
	Filtered     int // failed the relevance filter
	Purged       int // removed from the store this run
	SourceErrors int
	Sources      map[string]int // admitted per source
}

// Collector runs all sources concurrently and admits their candidates
// into the event store.
type Collector struct {
	db         *database.DB
	sources    []Source
	windowDays int
	workers    int
	timeout    time.Duration
	metrics    *metrics.Metrics
}

// NewCollector creates a collector. metrics may be nil.
func NewCollector(db *database.DB, sources []Source, windowDays, workers int, timeout time.Duration, m *metrics.Metrics) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		db:         db,
		sources:    sources,
		windowDays: windowDays,
		workers:    workers,
		timeout:    timeout,
		metrics:    m,
	}
}

type sourceResult struct {
	name       string
	candidates []Candidate
	err        error
}

// Run fetches all sources through a bounded worker pool, then applies
// the purge and every admitted insert inside one store transaction. A
// failing source is logged and counted; it never aborts the run. A
// store failure does abort: the cycle rolls back and the error is
// returned.
func (c *Collector) Run(ctx context.Context, now time.Time) (*Result, error) {
	r := &Result{Sources: make(map[string]int)}

	jobs := make(chan Source)
	results := make(chan sourceResult)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				sctx, cancel := context.WithTimeout(ctx, c.timeout)
				candidates, err := src.Fetch(sctx)
				cancel()
				results <- sourceResult{name: src.Name(), candidates: candidates, err: err}
			}
		}()
	}

	go func() {
		for _, src := range c.sources {
			jobs <- src
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Drain all fetches before touching the store, so the transaction
	// below never waits on the network.
	var fetched []sourceResult
	for sr := range results {
		if sr.err != nil {
			log.Printf("source %s failed: %v", sr.name, sr.err)
			r.SourceErrors++
			if c.metrics != nil {
				c.metrics.SourceErrors.WithLabelValues(sr.name).Inc()
			}
			// Partial results from a failed source still count.
		}
		if c.metrics != nil {
			c.metrics.EventsFound.WithLabelValues(sr.name).Add(float64(len(sr.candidates)))
		}
		r.Found += len(sr.candidates)
		fetched = append(fetched, sr)
	}

	cutoff := now.AddDate(0, 0, -c.windowDays).Format(time.RFC3339)
	cycle, err := c.db.BeginCycle()
	if err != nil {
		return nil, err
	}

	purged, err := cycle.PurgeEventsBefore(cutoff)
	if err != nil {
		cycle.Rollback()
		return nil, err
	}
	r.Purged = int(purged)

	for _, sr := range fetched {
		for _, cand := range sr.candidates {
			if err := c.admit(cycle, r, sr.name, cand, now); err != nil {
				cycle.Rollback()
				return nil, err
			}
		}
	}

	if err := cycle.Commit(); err != nil {
		return nil, fmt.Errorf("committing ingest cycle: %w", err)
	}
	if c.metrics != nil {
		c.metrics.EventsPurged.Add(float64(purged))
	}

	log.Printf("ingest complete: %d found, %d admitted, %d duplicates, %d purged",
		r.Found, r.Admitted, r.Duplicates, r.Purged)
	return r, nil
}

// admit applies the admission pipeline to one candidate: timestamp
// normalization, window check, relevance filter, then deduplicated
// insert into the cycle's transaction. Only a store failure returns an
// error; rejected candidates are counted and dropped.
func (c *Collector) admit(cycle *database.Cycle, r *Result, source string, cand Candidate, now time.Time) error {
	published, err := timeparse.Parse(cand.PublishedRaw)
	if err != nil {
		r.ParseDrops++
		c.drop(metrics.ReasonUnparsable)
		return nil
	}
	if published.After(now) {
		r.Future++
		c.drop(metrics.ReasonFuture)
		return nil
	}
	if now.Sub(published) > time.Duration(c.windowDays)*24*time.Hour {
		r.Expired++
		c.drop(metrics.ReasonExpired)
		return nil
	}

	if !cand.SkipFilter {
		if ok, _ := classify.Relevant(cand.Title, cand.Description); !ok {
			r.Filtered++
			c.drop(metrics.ReasonIrrelevant)
			return nil
		}
	}

	country := geo.DetectCountry(cand.Title + " " + cand.Description)
	if country == "" {
		country = cand.CountryHint
	}

	publishedAt := published.Format(time.RFC3339)
	event := &database.Event{
		ContentHash: ContentHash(source, cand.Title, publishedAt),
		Title:       cand.Title,
		Source:      source,
		PublishedAt: publishedAt,
		EventType:   classify.TypeOf(cand.Title, cand.Description),
		Signal:      string(classify.Grade(cand.Title, cand.Description)),
	}
	if cand.Description != "" {
		event.Description = &cand.Description
	}
	if cand.URL != "" {
		event.URL = &cand.URL
	}
	if country != "" {
		event.Country = &country
	}

	id, err := cycle.InsertEvent(event)
	if err != nil {
		return err
	}
	if id == 0 {
		r.Duplicates++
		if c.metrics != nil {
			c.metrics.EventsDuplicate.Inc()
		}
		return nil
	}

	r.Admitted++
	r.Sources[source]++
	if c.metrics != nil {
		c.metrics.EventsAdmitted.WithLabelValues(source).Inc()
	}
	return nil
}

func (c *Collector) drop(reason string) {
	if c.metrics != nil {
		c.metrics.EventsDropped.WithLabelValues(reason).Inc()
	}
}
