package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// ComputedMetricsRepository computed_readings table access.
type ComputedMetricsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewComputedMetricsRepository creates the computed metrics repository.
func NewComputedMetricsRepository(db *sql.DB, logger *zap.Logger) *ComputedMetricsRepository {
	return &ComputedMetricsRepository{
		db:     db,
		logger: logger,
	}
}

// ComputedMetricFilters optional list filters.
type ComputedMetricFilters struct {
	DeviceID   *string
	MetricType *string
}

// Create stores one analytics result. Overlapping windows are not
// deduplicated; every invocation produces its own row.
func (r *ComputedMetricsRepository) Create(ctx context.Context, metric *domain.ComputedMetric) error {
	if metric == nil {
		return fmt.Errorf("metric is required")
	}
	if metric.ID == "" {
		return fmt.Errorf("metric id is required")
	}
	if metric.MetricType == "" {
		return fmt.Errorf("metric_type is required")
	}

	query := `
		INSERT INTO computed_readings (
			id, device_id, window_start, window_end, metric_type, value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	value := metric.Value
	if len(value) == 0 {
		value = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx, query,
		metric.ID,
		metric.DeviceID,
		metric.WindowStart,
		metric.WindowEnd,
		metric.MetricType,
		[]byte(value),
		metric.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create computed metric: %w", err)
	}

	return nil
}

// ListRecent returns the latest computed metrics, newest window first,
// capped at 100 rows.
func (r *ComputedMetricsRepository) ListRecent(ctx context.Context, filters ComputedMetricFilters) ([]domain.ComputedMetric, error) {
	where := []string{}
	args := []interface{}{}
	argN := 1

	if filters.DeviceID != nil {
		where = append(where, fmt.Sprintf("device_id = $%d", argN))
		args = append(args, *filters.DeviceID)
		argN++
	}
	if filters.MetricType != nil {
		where = append(where, fmt.Sprintf("metric_type = $%d", argN))
		args = append(args, *filters.MetricType)
		argN++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, device_id, window_start, window_end, metric_type, value, created_at
		FROM computed_readings
		%s
		ORDER BY window_start DESC
		LIMIT 100
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query computed metrics: %w", err)
	}
	defer rows.Close()

	metrics := []domain.ComputedMetric{}
	for rows.Next() {
		var metric domain.ComputedMetric
		var deviceID sql.NullString
		var value []byte

		err := rows.Scan(
			&metric.ID,
			&deviceID,
			&metric.WindowStart,
			&metric.WindowEnd,
			&metric.MetricType,
			&value,
			&metric.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan computed metric: %w", err)
		}

		if deviceID.Valid {
			metric.DeviceID = deviceID.String
		}
		if len(value) > 0 {
			metric.Value = json.RawMessage(value)
		} else {
			metric.Value = json.RawMessage("{}")
		}

		metrics = append(metrics, metric)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate computed metrics: %w", err)
	}

	return metrics, nil
}
