package analytics

import (
	"context"
	"time"

	"radmon/internal/units"
)

// EWMAPoint pairs a normalized reading with its smoothed value.
type EWMAPoint struct {
	MeasuredAt time.Time `json:"measured_at"`
	Value      float64   `json:"value"`    // normalized µSv/h
	Smoothed   float64   `json:"smoothed"` // EWMA at this point
}

// EWMAResult exponentially weighted moving average of a series.
type EWMAResult struct {
	Alpha  float64     `json:"alpha"`
	Points []EWMAPoint `json:"points"`
}

// EWMA smooths the series over [from, to]. The average is seeded with
// the first value; alpha outside (0, 1] falls back to the configured
// default. An empty window yields an empty point list.
func (e *Engine) EWMA(ctx context.Context, deviceID string, from, to time.Time, alpha float64) (*EWMAResult, error) {
	if alpha <= 0 || alpha > 1 {
		alpha = e.ewmaAlpha
	}

	readings, err := e.fetch(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}

	result := &EWMAResult{Alpha: alpha, Points: []EWMAPoint{}}
	if len(readings) == 0 {
		return result, nil
	}

	smoothed := units.Normalize(readings[0].Value, readings[0].Unit)
	for i, r := range readings {
		value := units.Normalize(r.Value, r.Unit)
		if i > 0 {
			smoothed = alpha*value + (1-alpha)*smoothed
		}
		result.Points = append(result.Points, EWMAPoint{
			MeasuredAt: r.MeasuredAt,
			Value:      value,
			Smoothed:   smoothed,
		})
	}

	return result, nil
}
