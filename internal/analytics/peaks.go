package analytics

import (
	"context"
	"math"
	"time"

	"radmon/internal/domain"
	"radmon/internal/units"
)

// Peak is a strict local maximum sitting above the anomaly threshold.
type Peak struct {
	MeasuredAt time.Time `json:"measured_at"`
	Value      float64   `json:"value"` // normalized µSv/h
}

// PeakCluster groups peaks whose gaps stay within the cluster window.
type PeakCluster struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	MaxValue float64   `json:"max_value"`
	Count    int       `json:"count"`
}

// PeaksResult anomalous peaks and their clusters over a window.
type PeaksResult struct {
	Mean      float64       `json:"mean"`
	StdDev    float64       `json:"std_dev"`
	Threshold float64       `json:"threshold"` // mean + 2*std_dev
	Peaks     []Peak        `json:"peaks"`
	Clusters  []PeakCluster `json:"clusters"`
}

// Peaks detects strict local maxima above mean + 2σ (population σ) in
// [from, to], then merges consecutive peaks into clusters when the gap
// between them is at most the configured cluster window. Fewer than
// three readings can hold no interior maximum and yields an empty result.
func (e *Engine) Peaks(ctx context.Context, deviceID string, from, to time.Time) (*PeaksResult, error) {
	readings, err := e.fetch(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	return e.detectPeaks(readings), nil
}

func (e *Engine) detectPeaks(readings []domain.Reading) *PeaksResult {
	result := &PeaksResult{Peaks: []Peak{}, Clusters: []PeakCluster{}}
	if len(readings) < 3 {
		return result
	}

	values := make([]float64, len(readings))
	var sum float64
	for i, r := range readings {
		values[i] = units.Normalize(r.Value, r.Unit)
		sum += values[i]
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	result.Mean = mean
	result.StdDev = math.Sqrt(variance)
	result.Threshold = mean + 2*result.StdDev

	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] && values[i] >= result.Threshold {
			result.Peaks = append(result.Peaks, Peak{
				MeasuredAt: readings[i].MeasuredAt,
				Value:      values[i],
			})
		}
	}

	result.Clusters = clusterPeaks(result.Peaks, e.peakClusterWindow)
	return result
}

func clusterPeaks(peaks []Peak, window time.Duration) []PeakCluster {
	clusters := []PeakCluster{}
	if len(peaks) == 0 {
		return clusters
	}

	current := PeakCluster{
		Start:    peaks[0].MeasuredAt,
		End:      peaks[0].MeasuredAt,
		MaxValue: peaks[0].Value,
		Count:    1,
	}

	for _, p := range peaks[1:] {
		if p.MeasuredAt.Sub(current.End) <= window {
			current.End = p.MeasuredAt
			current.Count++
			if p.Value > current.MaxValue {
				current.MaxValue = p.Value
			}
			continue
		}
		clusters = append(clusters, current)
		current = PeakCluster{
			Start:    p.MeasuredAt,
			End:      p.MeasuredAt,
			MaxValue: p.Value,
			Count:    1,
		}
	}

	return append(clusters, current)
}
