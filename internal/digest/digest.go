// Package digest renders a daily markdown summary of supplier risk
// from scored results and stored events, entirely rule-based.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/risk"
)

// Composer assembles and stores daily digests.
type Composer struct {
	db *database.DB
}

func NewComposer(db *database.DB) *Composer {
	return &Composer{db: db}
}

// ComposeDigest builds the digest for the given day from scored
// results and stores it, replacing any earlier digest for that day.
func (c *Composer) ComposeDigest(results []risk.Result, eventCount int, day time.Time) (*database.Digest, error) {
	date := day.UTC().Format("2006-01-02")

	d := &database.Digest{
		DigestDate:    date,
		TLDR:          tldr(results),
		BodyMarkdown:  assembleBody(results, eventCount, date),
		SupplierCount: len(results),
		EventCount:    eventCount,
	}

	if err := c.db.SaveDigest(d); err != nil {
		return nil, fmt.Errorf("saving digest for %s: %w", date, err)
	}
	return d, nil
}

// tldr summarizes the risk landscape in one or two sentences.
func tldr(results []risk.Result) string {
	if len(results) == 0 {
		return "No suppliers are being monitored."
	}

	high, medium := 0, 0
	var topName string
	var topScore float64
	for _, r := range results {
		switch r.Level {
		case "High":
			high++
		case "Medium":
			medium++
		}
		if r.Score > topScore {
			topScore = r.Score
			topName = r.Supplier
		}
	}

	if high == 0 && medium == 0 {
		return fmt.Sprintf("All %d suppliers at low risk.", len(results))
	}

	summary := fmt.Sprintf("%d of %d suppliers elevated: %d high, %d medium.",
		high+medium, len(results), high, medium)
	if topName != "" && topScore > 0 {
		summary += fmt.Sprintf(" Highest: %s (%.0f).", topName, topScore)
	}
	return summary
}

// assembleBody renders the full digest markdown: elevated suppliers
// first with their contributing events, then a one-line roll-up of the
// quiet ones.
func assembleBody(results []risk.Result, eventCount int, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Supplier Risk Digest: %s\n\n", date)
	fmt.Fprintf(&b, "%d suppliers scored against %d events in window.\n", len(results), eventCount)

	var elevated, quiet []risk.Result
	for _, r := range results {
		if r.Level == "Low" {
			quiet = append(quiet, r)
		} else {
			elevated = append(elevated, r)
		}
	}

	for _, r := range elevated {
		fmt.Fprintf(&b, "\n## %s: %s (%.1f)\n\n", r.Supplier, r.Level, r.Score)
		fmt.Fprintf(&b, "Country: %s\n", r.Country)
		if len(r.TopEvents) > 0 {
			b.WriteString("\nContributing events:\n\n")
			for _, ev := range r.TopEvents {
				fmt.Fprintf(&b, "- **%s** (%s, %s, %.1f pts): %s\n",
					ev.Title, ev.Source, ev.Signal, ev.EventScore, ev.Proximity)
			}
		}
	}

	if len(quiet) > 0 {
		names := make([]string, 0, len(quiet))
		for _, r := range quiet {
			names = append(names, r.Supplier)
		}
		fmt.Fprintf(&b, "\n## Low risk\n\n%s\n", strings.Join(names, ", "))
	}

	return b.String()
}
