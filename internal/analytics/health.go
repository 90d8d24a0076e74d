package analytics

import (
	"context"
	"math"
	"time"

	"radmon/internal/domain"
)

// DeviceHealth computes and stores the device's health snapshot from
// its reading history: last_seen from the most recent reading, uptime
// from the trailing 24-hour reading count against the expected rate.
// Battery and error telemetry are not reported by devices yet, so
// avg_battery stays NULL and error_count stays 0.
func (e *Engine) DeviceHealth(ctx context.Context, deviceID string) (*domain.DeviceHealthSnapshot, error) {
	now := time.Now()

	latest, err := e.readings.LatestByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	count, err := e.readings.CountByDeviceSince(ctx, deviceID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	expected := e.expectedPerDay
	uptime := int(math.Round(100 * float64(count) / float64(expected)))
	if uptime > 100 {
		uptime = 100
	}
	missing := expected - count
	if missing < 0 {
		missing = 0
	}

	snapshot := &domain.DeviceHealthSnapshot{
		DeviceID:     deviceID,
		MissingCount: missing,
		UptimePct:    uptime,
		CheckedAt:    now,
	}
	if latest != nil {
		measuredAt := latest.MeasuredAt
		snapshot.LastSeen = &measuredAt
	}

	if err := e.health.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}
