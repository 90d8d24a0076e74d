package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// DeviceHealthRepository device_health table access. One row per device;
// writes are upserts keyed by device_id with last-writer-wins semantics.
type DeviceHealthRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeviceHealthRepository creates the device health repository.
func NewDeviceHealthRepository(db *sql.DB, logger *zap.Logger) *DeviceHealthRepository {
	return &DeviceHealthRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert overwrites the device's health snapshot.
func (r *DeviceHealthRepository) Upsert(ctx context.Context, snapshot *domain.DeviceHealthSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	if snapshot.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	query := `
		INSERT INTO device_health (
			device_id, last_seen, missing_count, uptime_pct,
			avg_battery, error_count, notes, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (device_id) DO UPDATE SET
			last_seen = EXCLUDED.last_seen,
			missing_count = EXCLUDED.missing_count,
			uptime_pct = EXCLUDED.uptime_pct,
			avg_battery = EXCLUDED.avg_battery,
			error_count = EXCLUDED.error_count,
			notes = EXCLUDED.notes,
			checked_at = EXCLUDED.checked_at
	`

	_, err := r.db.ExecContext(ctx, query,
		snapshot.DeviceID,
		snapshot.LastSeen,
		snapshot.MissingCount,
		snapshot.UptimePct,
		snapshot.AvgBattery,
		snapshot.ErrorCount,
		snapshot.Notes,
		snapshot.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device health: %w", err)
	}

	return nil
}

// Get returns the device's health snapshot, or nil when none has been
// computed yet.
func (r *DeviceHealthRepository) Get(ctx context.Context, deviceID string) (*domain.DeviceHealthSnapshot, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	query := `
		SELECT device_id, last_seen, missing_count, uptime_pct,
		       avg_battery, error_count, notes, checked_at
		FROM device_health
		WHERE device_id = $1
	`

	var snapshot domain.DeviceHealthSnapshot
	var lastSeen sql.NullTime
	var avgBattery sql.NullFloat64
	var notes sql.NullString

	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&snapshot.DeviceID,
		&lastSeen,
		&snapshot.MissingCount,
		&snapshot.UptimePct,
		&avgBattery,
		&snapshot.ErrorCount,
		&notes,
		&snapshot.CheckedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device health: %w", err)
	}

	if lastSeen.Valid {
		snapshot.LastSeen = &lastSeen.Time
	}
	if avgBattery.Valid {
		snapshot.AvgBattery = &avgBattery.Float64
	}
	if notes.Valid {
		snapshot.Notes = &notes.String
	}

	return &snapshot, nil
}
