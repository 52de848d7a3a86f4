// Package metrics exposes Prometheus instrumentation for ingestion and
// scoring. A single Metrics value is shared by the pipeline and the
// HTTP server, which serves it on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons recorded on events_dropped_total.
const (
	ReasonUnparsable = "unparsable_timestamp"
	ReasonFuture     = "future_dated"
	ReasonExpired    = "outside_window"
	ReasonIrrelevant = "irrelevant"
)

type Metrics struct {
	EventsFound     *prometheus.CounterVec
	EventsAdmitted  *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	EventsDuplicate prometheus.Counter
	EventsPurged    prometheus.Counter
	SourceErrors    *prometheus.CounterVec
	AlertsRaised    prometheus.Counter
	ScoringDuration prometheus.Histogram
	IngestDuration  prometheus.Histogram
}

// New creates the metric set and registers it on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "events_found_total",
			Help:      "Candidates pulled from sources before admission.",
		}, []string{"source"}),
		EventsAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "events_admitted_total",
			Help:      "Events stored after passing admission.",
		}, []string{"source"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "events_dropped_total",
			Help:      "Candidates rejected during admission, by reason.",
		}, []string{"reason"}),
		EventsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "events_duplicate_total",
			Help:      "Candidates already present in the event store.",
		}),
		EventsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "events_purged_total",
			Help:      "Stored events removed after leaving the window.",
		}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "source_errors_total",
			Help:      "Fetch failures per source.",
		}, []string{"source"}),
		AlertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "alerts_raised_total",
			Help:      "Threshold alerts created.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskwatch",
			Name:      "scoring_duration_seconds",
			Help:      "Wall time of a full scoring pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskwatch",
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of a full ingestion run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
	}

	reg.MustRegister(
		m.EventsFound, m.EventsAdmitted, m.EventsDropped, m.EventsDuplicate,
		m.EventsPurged, m.SourceErrors, m.AlertsRaised,
		m.ScoringDuration, m.IngestDuration,
	)
	return m
}
