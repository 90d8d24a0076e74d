package domain

import (
	"encoding/json"
	"time"
)

// Reading is a single radiation sensor measurement (sensor_readings table).
// Rows are immutable once created; ordering is by measured_at per device,
// but arrival order and timestamp uniqueness are not guaranteed.
type Reading struct {
	ID       string    `db:"id"`        // UUID, PRIMARY KEY
	DeviceID string    `db:"device_id"` // UUID, NOT NULL
	MeasuredAt time.Time `db:"measured_at"` // TIMESTAMPTZ, NOT NULL
	Value    float64   `db:"value"` // FLOAT, NOT NULL, in the unit below
	Unit     string    `db:"unit"`  // VARCHAR, e.g. "µSv/h" or "mSv/h"

	// Opaque device-supplied payload (battery, temperature, ...).
	Metadata json.RawMessage `db:"metadata"` // JSONB

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
