package analytics

import (
	"context"
	"time"

	"radmon/internal/config"
	"radmon/internal/domain"

	"go.uber.org/zap"
)

// ReadingSource fetches stored readings for analysis. Window queries
// return readings ordered by measured_at ascending.
type ReadingSource interface {
	ListByDeviceBetween(ctx context.Context, deviceID string, from, to time.Time) ([]domain.Reading, error)
	LatestByDevice(ctx context.Context, deviceID string) (*domain.Reading, error)
	CountByDeviceSince(ctx context.Context, deviceID string, since time.Time) (int, error)
}

// HealthSink persists device health snapshots.
type HealthSink interface {
	Upsert(ctx context.Context, snapshot *domain.DeviceHealthSnapshot) error
}

// Engine runs the series analytics over stored readings. All values are
// normalized to µSv/h before any computation.
type Engine struct {
	readings ReadingSource
	health   HealthSink
	logger   *zap.Logger

	ewmaAlpha         float64
	peakClusterWindow time.Duration
	exposureMaxHours  int
	expectedPerDay    int
}

// NewEngine creates the analytics engine with configured defaults.
func NewEngine(cfg *config.Config, readings ReadingSource, health HealthSink, logger *zap.Logger) *Engine {
	return &Engine{
		readings:          readings,
		health:            health,
		logger:            logger,
		ewmaAlpha:         cfg.Analytics.EWMAAlpha,
		peakClusterWindow: time.Duration(cfg.Analytics.PeakClusterWindowMin) * time.Minute,
		exposureMaxHours:  cfg.Analytics.ExposureMaxHours,
		expectedPerDay:    cfg.Analytics.HealthExpectedPerDay,
	}
}

func (e *Engine) fetch(ctx context.Context, deviceID string, from, to time.Time) ([]domain.Reading, error) {
	return e.readings.ListByDeviceBetween(ctx, deviceID, from, to)
}
