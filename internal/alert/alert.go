// Package alert raises records when a supplier's risk crosses the
// configured threshold. A per-supplier cooldown keeps repeated scoring
// runs from stacking alerts for the same ongoing situation.
package alert

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/risk"
)

// sqlite's datetime('now') format.
const storedTimeLayout = "2006-01-02 15:04:05"

// Result summarizes one alert evaluation pass.
type Result struct {
	Raised     int
	Suppressed int
}

// Evaluator decides which scored suppliers get an alert.
type Evaluator struct {
	db        *database.DB
	threshold float64
	cooldown  time.Duration
}

func NewEvaluator(db *database.DB, threshold int, cooldown time.Duration) *Evaluator {
	return &Evaluator{
		db:        db,
		threshold: float64(threshold),
		cooldown:  cooldown,
	}
}

// Evaluate raises alerts for every result at or above the threshold,
// unless the supplier alerted within the cooldown.
func (e *Evaluator) Evaluate(results []risk.Result, now time.Time) (*Result, error) {
	out := &Result{}
	for i := range results {
		r := &results[i]
		if r.Score < e.threshold {
			continue
		}

		suppressed, err := e.inCooldown(r.SupplierID, now)
		if err != nil {
			return out, fmt.Errorf("checking cooldown for supplier %d: %w", r.SupplierID, err)
		}
		if suppressed {
			out.Suppressed++
			continue
		}

		body := r.Summary()
		a := &database.Alert{
			ID:         uuid.NewString(),
			SupplierID: r.SupplierID,
			Score:      r.Score,
			Level:      r.Level,
			Title:      fmt.Sprintf("%s risk %s (%.0f)", r.Supplier, r.Level, r.Score),
			Body:       &body,
		}
		if err := e.db.InsertAlert(a); err != nil {
			return out, fmt.Errorf("inserting alert for supplier %d: %w", r.SupplierID, err)
		}
		log.Printf("alert raised: %s", a.Title)
		out.Raised++
	}
	return out, nil
}

func (e *Evaluator) inCooldown(supplierID int64, now time.Time) (bool, error) {
	last, err := e.db.LastAlertTime(supplierID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}
	t, err := time.Parse(storedTimeLayout, *last)
	if err != nil {
		// Unreadable timestamp: err toward alerting.
		return false, nil
	}
	return now.Sub(t.UTC()) < e.cooldown, nil
}
