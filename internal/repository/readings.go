package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// ReadingsRepository sensor_readings table access.
type ReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingsRepository creates the readings repository.
func NewReadingsRepository(db *sql.DB, logger *zap.Logger) *ReadingsRepository {
	return &ReadingsRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new reading. Readings are immutable; there is no update path.
func (r *ReadingsRepository) Insert(ctx context.Context, reading *domain.Reading) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}
	if reading.ID == "" {
		return fmt.Errorf("reading id is required")
	}
	if reading.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	query := `
		INSERT INTO sensor_readings (
			id, device_id, measured_at, value, unit, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	metadata := reading.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx, query,
		reading.ID,
		reading.DeviceID,
		reading.MeasuredAt,
		reading.Value,
		reading.Unit,
		[]byte(metadata),
		reading.CreatedAt,
		reading.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

// ListByDeviceBetween returns a device's readings with measured_at in
// [from, to], ordered ascending by measured_at. Timestamps are not
// guaranteed unique; ties keep insertion order via created_at.
func (r *ReadingsRepository) ListByDeviceBetween(ctx context.Context, deviceID string, from, to time.Time) ([]domain.Reading, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	query := `
		SELECT id, device_id, measured_at, value, unit, metadata, created_at, updated_at
		FROM sensor_readings
		WHERE device_id = $1
		  AND measured_at BETWEEN $2 AND $3
		ORDER BY measured_at ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := []domain.Reading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// LatestByDevice returns the most recent reading for a device, or nil when
// the device has never reported.
func (r *ReadingsRepository) LatestByDevice(ctx context.Context, deviceID string) (*domain.Reading, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	query := `
		SELECT id, device_id, measured_at, value, unit, metadata, created_at, updated_at
		FROM sensor_readings
		WHERE device_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, deviceID)
	reading, err := scanReading(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return reading, nil
}

// CountByDeviceSince counts a device's readings with measured_at >= since.
func (r *ReadingsRepository) CountByDeviceSince(ctx context.Context, deviceID string, since time.Time) (int, error) {
	if deviceID == "" {
		return 0, fmt.Errorf("device_id is required")
	}

	query := `
		SELECT COUNT(*)
		FROM sensor_readings
		WHERE device_id = $1
		  AND measured_at >= $2
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, deviceID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}

	return count, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReading(s scanner) (*domain.Reading, error) {
	var reading domain.Reading
	var metadata []byte

	err := s.Scan(
		&reading.ID,
		&reading.DeviceID,
		&reading.MeasuredAt,
		&reading.Value,
		&reading.Unit,
		&metadata,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan reading: %w", err)
	}

	if len(metadata) > 0 {
		reading.Metadata = metadata
	} else {
		reading.Metadata = json.RawMessage("{}")
	}

	return &reading, nil
}
