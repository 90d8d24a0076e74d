package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// AlertsRepository alerts table access.
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertsRepository creates the alerts repository.
func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new alert row.
func (r *AlertsRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}
	if alert.ID == "" {
		return fmt.Errorf("alert id is required")
	}
	if alert.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	query := `
		INSERT INTO alerts (
			id, device_id, reading_id, level, message,
			acknowledged, acknowledged_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.DeviceID,
		alert.ReadingID,
		string(alert.Level),
		alert.Message,
		alert.Acknowledged,
		alert.AcknowledgedAt,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// GetByID returns a single alert.
func (r *AlertsRepository) GetByID(ctx context.Context, alertID string) (*domain.Alert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alert id is required")
	}

	query := `
		SELECT id, device_id, reading_id, level, message,
		       acknowledged, acknowledged_at, created_at, updated_at
		FROM alerts
		WHERE id = $1
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert not found: id=%s", alertID)
		}
		return nil, err
	}

	return alert, nil
}

// ListByDevice returns a device's alerts, newest first.
func (r *AlertsRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]domain.Alert, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, device_id, reading_id, level, message,
		       acknowledged, acknowledged_at, created_at, updated_at
		FROM alerts
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}

// Acknowledge marks an alert acknowledged and stamps acknowledged_at.
// Acknowledgment is the only mutation the alerts table supports.
func (r *AlertsRepository) Acknowledge(ctx context.Context, alertID string) error {
	if alertID == "" {
		return fmt.Errorf("alert id is required")
	}

	query := `
		UPDATE alerts
		SET acknowledged = true,
		    acknowledged_at = $1,
		    updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), alertID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found: id=%s", alertID)
	}

	return nil
}

func scanAlert(s scanner) (*domain.Alert, error) {
	var alert domain.Alert
	var readingID sql.NullString
	var acknowledgedAt sql.NullTime
	var level string

	err := s.Scan(
		&alert.ID,
		&alert.DeviceID,
		&readingID,
		&level,
		&alert.Message,
		&alert.Acknowledged,
		&acknowledgedAt,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert.Level = domain.AlertLevel(level)
	if readingID.Valid {
		alert.ReadingID = &readingID.String
	}
	if acknowledgedAt.Valid {
		alert.AcknowledgedAt = &acknowledgedAt.Time
	}

	return &alert, nil
}
