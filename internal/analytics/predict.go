package analytics

import (
	"context"
	"time"

	"radmon/internal/units"
)

// PredictionResult linear-trend extrapolation toward a threshold.
// Slope is in µSv/h per hour; ETA is set only when the trend actually
// crosses the threshold.
type PredictionResult struct {
	Threshold  float64    `json:"threshold"`
	Slope      float64    `json:"slope"`
	Intercept  float64    `json:"intercept"`
	WillExceed bool       `json:"will_exceed"`
	ETA        *time.Time `json:"eta,omitempty"`
}

// PredictThreshold fits an ordinary least squares line over the
// normalized series in [from, to] and extrapolates when the dose rate
// will reach the threshold. With fewer than two points, a degenerate
// time axis, or a flat or falling trend, no crossing is predicted.
func (e *Engine) PredictThreshold(ctx context.Context, deviceID string, from, to time.Time, threshold float64) (*PredictionResult, error) {
	readings, err := e.fetch(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}

	result := &PredictionResult{Threshold: threshold}
	if len(readings) < 2 {
		return result, nil
	}

	// x axis is hours since the Unix epoch, matching the slope unit
	n := float64(len(readings))
	var sumX, sumY, sumXY, sumXX float64
	for _, r := range readings {
		x := float64(r.MeasuredAt.Unix()) / 3600.0
		y := units.Normalize(r.Value, r.Unit)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return result, nil
	}

	result.Slope = (n*sumXY - sumX*sumY) / denom
	result.Intercept = (sumY - result.Slope*sumX) / n

	if result.Slope <= 0 {
		return result, nil
	}

	xTarget := (threshold - result.Intercept) / result.Slope
	eta := time.Unix(0, 0).UTC().Add(time.Duration(xTarget * float64(time.Hour)))

	result.WillExceed = true
	result.ETA = &eta
	return result, nil
}
