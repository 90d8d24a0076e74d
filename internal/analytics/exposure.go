package analytics

import (
	"context"
	"time"

	"radmon/internal/domain"
)

// ExposureWindow is a scanned window whose accumulated dose reached
// the limit.
type ExposureWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Dose  float64   `json:"dose"` // µSv
}

// ExposureResult windows found by the exposure scan.
type ExposureResult struct {
	Limit    float64          `json:"limit"` // µSv
	MaxHours int              `json:"max_hours"`
	Windows  []ExposureWindow `json:"windows"`
}

// ExposureScan slides a window of at most maxHours across [from, to) in
// one-hour steps and reports every window whose trapezoid-integrated
// dose reaches the limit. Windows are clamped at to. maxHours outside
// (0, configured max] falls back to the configured default.
func (e *Engine) ExposureScan(ctx context.Context, deviceID string, from, to time.Time, limit float64, maxHours int) (*ExposureResult, error) {
	if maxHours <= 0 || maxHours > e.exposureMaxHours {
		maxHours = e.exposureMaxHours
	}

	readings, err := e.fetch(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}

	result := &ExposureResult{Limit: limit, MaxHours: maxHours, Windows: []ExposureWindow{}}

	for start := from; start.Before(to); start = start.Add(time.Hour) {
		end := start.Add(time.Duration(maxHours) * time.Hour)
		if end.After(to) {
			end = to
		}

		dose := computeDose(sliceWindow(readings, start, end))
		if dose.TotalDose >= limit {
			result.Windows = append(result.Windows, ExposureWindow{
				Start: start,
				End:   end,
				Dose:  dose.TotalDose,
			})
		}
	}

	return result, nil
}

// sliceWindow returns the readings in [start, end). The input is
// ascending, so the result stays ascending.
func sliceWindow(readings []domain.Reading, start, end time.Time) []domain.Reading {
	window := []domain.Reading{}
	for _, r := range readings {
		if r.MeasuredAt.Before(start) {
			continue
		}
		if !r.MeasuredAt.Before(end) {
			break
		}
		window = append(window, r)
	}
	return window
}
