package domain

import (
	"encoding/json"
	"time"
)

// Metric type tags for computed_readings rows.
const (
	MetricCumulativeDose  = "cumulative_dose"
	MetricEWMA            = "ewma"
	MetricPeaks           = "peaks"
	MetricPrediction      = "prediction"
	MetricExposureWindows = "exposure_windows"
)

// ComputedMetric one analytics result over a time window (computed_readings
// table). One row per invocation; overlapping windows are not deduplicated.
type ComputedMetric struct {
	ID       string `db:"id"`        // UUID, PRIMARY KEY
	DeviceID string `db:"device_id"` // UUID

	WindowStart time.Time `db:"window_start"` // TIMESTAMPTZ, NOT NULL
	WindowEnd   time.Time `db:"window_end"`   // TIMESTAMPTZ, NOT NULL
	MetricType  string    `db:"metric_type"`  // VARCHAR, NOT NULL

	// Structured result payload, shape depends on metric_type.
	Value json.RawMessage `db:"value"` // JSONB

	CreatedAt time.Time `db:"created_at"`
}
