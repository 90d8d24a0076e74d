package compute

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"radmon/internal/analytics"
	"radmon/internal/domain"
	"radmon/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetricStore persists computed analytics results.
type MetricStore interface {
	Create(ctx context.Context, metric *domain.ComputedMetric) error
	ListRecent(ctx context.Context, filters repository.ComputedMetricFilters) ([]domain.ComputedMetric, error)
}

// AuditStore records administrative actions.
type AuditStore interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// ComputeService runs analytics on demand, persists each result as a
// computed metric row, and writes an audit entry. Auditing is
// best-effort: a failed audit write is logged, never surfaced.
type ComputeService struct {
	engine  *analytics.Engine
	metrics MetricStore
	audit   AuditStore
	logger  *zap.Logger
}

// NewComputeService wires the compute service.
func NewComputeService(engine *analytics.Engine, metrics MetricStore, audit AuditStore, logger *zap.Logger) *ComputeService {
	return &ComputeService{
		engine:  engine,
		metrics: metrics,
		audit:   audit,
		logger:  logger,
	}
}

// CumulativeDose computes and records total dose over a window.
func (s *ComputeService) CumulativeDose(ctx context.Context, deviceID string, from, to time.Time) (*analytics.CumulativeDoseResult, error) {
	result, err := s.engine.CumulativeDose(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, deviceID, from, to, domain.MetricCumulativeDose, result); err != nil {
		return nil, err
	}
	return result, nil
}

// EWMA computes and records the smoothed series.
func (s *ComputeService) EWMA(ctx context.Context, deviceID string, from, to time.Time, alpha float64) (*analytics.EWMAResult, error) {
	result, err := s.engine.EWMA(ctx, deviceID, from, to, alpha)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, deviceID, from, to, domain.MetricEWMA, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Peaks computes and records anomalous peaks.
func (s *ComputeService) Peaks(ctx context.Context, deviceID string, from, to time.Time) (*analytics.PeaksResult, error) {
	result, err := s.engine.Peaks(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, deviceID, from, to, domain.MetricPeaks, result); err != nil {
		return nil, err
	}
	return result, nil
}

// PredictThreshold computes and records the trend prediction.
func (s *ComputeService) PredictThreshold(ctx context.Context, deviceID string, from, to time.Time, threshold float64) (*analytics.PredictionResult, error) {
	result, err := s.engine.PredictThreshold(ctx, deviceID, from, to, threshold)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, deviceID, from, to, domain.MetricPrediction, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ExposureScan computes and records over-limit exposure windows.
func (s *ComputeService) ExposureScan(ctx context.Context, deviceID string, from, to time.Time, limit float64, maxHours int) (*analytics.ExposureResult, error) {
	result, err := s.engine.ExposureScan(ctx, deviceID, from, to, limit, maxHours)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, deviceID, from, to, domain.MetricExposureWindows, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeviceHealth recomputes the device's health snapshot. The snapshot
// lives in its own table, so only the audit entry is written here.
func (s *ComputeService) DeviceHealth(ctx context.Context, deviceID string) (*domain.DeviceHealthSnapshot, error) {
	snapshot, err := s.engine.DeviceHealth(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.writeAudit(ctx, "compute_device_health", "device_health", deviceID, snapshot)
	return snapshot, nil
}

// ListComputed returns recent computed metric rows.
func (s *ComputeService) ListComputed(ctx context.Context, deviceID, metricType *string) ([]domain.ComputedMetric, error) {
	return s.metrics.ListRecent(ctx, repository.ComputedMetricFilters{
		DeviceID:   deviceID,
		MetricType: metricType,
	})
}

func (s *ComputeService) record(ctx context.Context, deviceID string, from, to time.Time, metricType string, result interface{}) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal %s result: %w", metricType, err)
	}

	metric := &domain.ComputedMetric{
		ID:          uuid.New().String(),
		DeviceID:    deviceID,
		WindowStart: from,
		WindowEnd:   to,
		MetricType:  metricType,
		Value:       value,
		CreatedAt:   time.Now(),
	}

	if err := s.metrics.Create(ctx, metric); err != nil {
		return fmt.Errorf("failed to store %s result: %w", metricType, err)
	}

	s.writeAudit(ctx, "compute_"+metricType, "computed_readings", metric.ID, nil)
	return nil
}

func (s *ComputeService) writeAudit(ctx context.Context, action, resource, resourceID string, details interface{}) {
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		ActorType: "admin",
		Action:    action,
		Resource:  resource,
		CreatedAt: time.Now(),
	}
	if resourceID != "" {
		id := resourceID
		entry.ResourceID = &id
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("action", action),
			zap.Error(err))
	}
}
