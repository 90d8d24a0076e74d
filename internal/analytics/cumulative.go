package analytics

import (
	"context"
	"time"

	"radmon/internal/domain"
	"radmon/internal/units"
)

// DoseSegment is the dose accumulated between two consecutive readings.
type DoseSegment struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Dose float64   `json:"dose"` // µSv
}

// CumulativeDoseResult total absorbed dose over a window with a
// per-segment breakdown.
type CumulativeDoseResult struct {
	TotalDose float64       `json:"total_dose"` // µSv
	Breakdown []DoseSegment `json:"breakdown"`
}

// CumulativeDose integrates the dose rate over [from, to] using the
// trapezoid rule between consecutive readings. Fewer than two readings
// yields a zero dose with an empty breakdown.
func (e *Engine) CumulativeDose(ctx context.Context, deviceID string, from, to time.Time) (*CumulativeDoseResult, error) {
	readings, err := e.fetch(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	return computeDose(readings), nil
}

// computeDose runs the trapezoid integration over an already-fetched,
// ascending series. Segments with a non-positive time delta are skipped
// so duplicate or out-of-order timestamps cannot produce negative dose.
func computeDose(readings []domain.Reading) *CumulativeDoseResult {
	result := &CumulativeDoseResult{Breakdown: []DoseSegment{}}
	if len(readings) < 2 {
		return result
	}

	for i := 1; i < len(readings); i++ {
		prev := readings[i-1]
		curr := readings[i]

		deltaHours := curr.MeasuredAt.Sub(prev.MeasuredAt).Hours()
		if deltaHours <= 0 {
			continue
		}

		v1 := units.Normalize(prev.Value, prev.Unit)
		v2 := units.Normalize(curr.Value, curr.Unit)
		dose := (v1 + v2) / 2 * deltaHours

		result.TotalDose += dose
		result.Breakdown = append(result.Breakdown, DoseSegment{
			From: prev.MeasuredAt,
			To:   curr.MeasuredAt,
			Dose: dose,
		})
	}

	return result
}
