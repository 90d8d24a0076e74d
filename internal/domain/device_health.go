package domain

import "time"

// DeviceHealthSnapshot latest health snapshot for a device (device_health
// table). Exactly one logical row per device; each computation overwrites
// the previous one (upsert keyed by device_id, last writer wins).
type DeviceHealthSnapshot struct {
	DeviceID string `db:"device_id"` // UUID, UNIQUE

	LastSeen     *time.Time `db:"last_seen"`     // TIMESTAMPTZ, nullable
	MissingCount int        `db:"missing_count"` // INTEGER, DEFAULT 0
	UptimePct    int        `db:"uptime_pct"`    // DECIMAL

	// Placeholders until devices report battery/error telemetry.
	AvgBattery *float64 `db:"avg_battery"` // DECIMAL, always NULL
	ErrorCount int      `db:"error_count"` // INTEGER, always 0

	Notes     *string   `db:"notes"`      // JSONB, nullable
	CheckedAt time.Time `db:"checked_at"` // TIMESTAMPTZ
}
