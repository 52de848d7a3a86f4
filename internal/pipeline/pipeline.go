// Package pipeline orchestrates the full monitoring cycle: ingest,
// content fetch, scoring, alerts, digest.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/riskwatch/riskwatch/internal/alert"
	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/digest"
	"github.com/riskwatch/riskwatch/internal/fetch"
	"github.com/riskwatch/riskwatch/internal/ingest"
	"github.com/riskwatch/riskwatch/internal/metrics"
	"github.com/riskwatch/riskwatch/internal/risk"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
}

// Pipeline orchestrates the 5-step monitoring cycle.
type Pipeline struct {
	cfg     *config.Config
	db      *database.DB
	metrics *metrics.Metrics
}

// New creates a new pipeline. Metrics are registered on reg; pass nil
// to skip instrumentation.
func New(cfg *config.Config, db *database.DB, reg prometheus.Registerer) *Pipeline {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}
	return &Pipeline{cfg: cfg, db: db, metrics: m}
}

// Metrics exposes the pipeline's metric set for sharing with the server.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Run executes the full cycle. Ingest failure aborts the run; later
// steps degrade independently.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{}
	now := time.Now().UTC()

	step, ingestResult := p.runIngest(ctx, now)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	if p.cfg.Ingest.FetchContent {
		r.Steps = append(r.Steps, p.runFetch())
	}

	step, results := p.runScore(now)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	r.Steps = append(r.Steps, p.runAlerts(results, now))
	r.Steps = append(r.Steps, p.runDigest(results, ingestResult, now))

	return r
}

// DryRun reports what a run would work with, without side effects.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	suppliers, _ := p.db.CountSuppliers()
	events, _ := p.db.CountEvents()
	r.Steps = append(r.Steps, StepResult{
		Name: "Ingest",
		Summary: fmt.Sprintf("[dry-run] %d sources configured, %d events stored",
			len(p.cfg.Sources.Feeds), events),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("[dry-run] would score %d suppliers", suppliers),
	})
	return r
}

func (p *Pipeline) runIngest(ctx context.Context, now time.Time) (StepResult, *ingest.Result) {
	start := time.Now()
	suppliers, err := p.db.GetSuppliers()
	if err != nil {
		return StepResult{Name: "Ingest", Err: err}, nil
	}

	sources := ingest.BuildSources(p.cfg, suppliers)
	collector := ingest.NewCollector(
		p.db, sources,
		p.cfg.Ingest.WindowDays, p.cfg.Ingest.Workers,
		p.cfg.SourceTimeout(), p.metrics,
	)

	result, err := collector.Run(ctx, now)
	if err != nil {
		return StepResult{Name: "Ingest", Err: err}, nil
	}
	if p.metrics != nil {
		p.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}

	p.recordRun(result, now, time.Now().UTC())

	return StepResult{
		Name: "Ingest",
		Summary: fmt.Sprintf("%d found, %d admitted, %d duplicates, %d purged, %d source errors",
			result.Found, result.Admitted, result.Duplicates, result.Purged, result.SourceErrors),
	}, result
}

func (p *Pipeline) runFetch() StepResult {
	fetcher := fetch.NewContentFetcher(p.db, p.cfg.SourceTimeout(), 100)
	result := fetcher.FetchMissingContent()
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("%d fetched, %d failed", result.Fetched, result.Failed),
	}
}

func (p *Pipeline) runScore(now time.Time) (StepResult, []risk.Result) {
	start := time.Now()

	suppliers, err := p.db.GetSuppliers()
	if err != nil {
		return StepResult{Name: "Score", Err: err}, nil
	}
	cutoff := now.AddDate(0, 0, -p.cfg.Ingest.WindowDays).Format(time.RFC3339)
	events, err := p.db.GetEventsSince(cutoff)
	if err != nil {
		return StepResult{Name: "Score", Err: err}, nil
	}

	engine := risk.NewEngine(p.cfg.Scoring, p.cfg.Ingest.WindowDays)
	results := make([]risk.Result, 0, len(suppliers))
	for i := range suppliers {
		s := &suppliers[i]
		result := engine.ScoreSupplier(s, events, now)
		results = append(results, result)

		if err := p.db.UpdateSupplierRisk(s.ID, result.Score, result.Level, result.Summary()); err != nil {
			log.Printf("updating risk for %s: %v", s.Name, err)
		}
	}

	if p.metrics != nil {
		p.metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}

	return StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("%d suppliers scored against %d events", len(suppliers), len(events)),
	}, results
}

func (p *Pipeline) runAlerts(results []risk.Result, now time.Time) StepResult {
	evaluator := alert.NewEvaluator(p.db, p.cfg.Alerts.Threshold, p.cfg.AlertCooldown())
	out, err := evaluator.Evaluate(results, now)
	if err != nil {
		return StepResult{Name: "Alerts", Err: err}
	}
	if p.metrics != nil {
		p.metrics.AlertsRaised.Add(float64(out.Raised))
	}
	return StepResult{
		Name:    "Alerts",
		Summary: fmt.Sprintf("%d raised, %d suppressed by cooldown", out.Raised, out.Suppressed),
	}
}

func (p *Pipeline) runDigest(results []risk.Result, ingestResult *ingest.Result, now time.Time) StepResult {
	eventCount, err := p.db.CountEvents()
	if err != nil {
		return StepResult{Name: "Digest", Err: err}
	}

	composer := digest.NewComposer(p.db)
	d, err := composer.ComposeDigest(results, eventCount, now)
	if err != nil {
		return StepResult{Name: "Digest", Err: err}
	}
	return StepResult{
		Name:    "Digest",
		Summary: fmt.Sprintf("digest for %s: %s", d.DigestDate, d.TLDR),
	}
}

func (p *Pipeline) recordRun(r *ingest.Result, started, finished time.Time) {
	finishedAt := finished.Format(time.RFC3339)
	run := &database.IngestRun{
		StartedAt:    started.Format(time.RFC3339),
		FinishedAt:   &finishedAt,
		Found:        r.Found,
		Admitted:     r.Admitted,
		Duplicates:   r.Duplicates,
		Purged:       r.Purged,
		ParseDrops:   r.ParseDrops,
		Filtered:     r.Filtered + r.Expired + r.Future,
		SourceErrors: r.SourceErrors,
	}
	if _, err := p.db.InsertIngestRun(run); err != nil {
		log.Printf("recording ingest run: %v", err)
	}
}
