package analytics

import (
	"context"
	"testing"
	"time"

	"radmon/internal/config"
	"radmon/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReadingSource serves a fixed ascending series.
type fakeReadingSource struct {
	readings []domain.Reading
	count    int
}

func (f *fakeReadingSource) ListByDeviceBetween(_ context.Context, _ string, from, to time.Time) ([]domain.Reading, error) {
	out := []domain.Reading{}
	for _, r := range f.readings {
		if !r.MeasuredAt.Before(from) && !r.MeasuredAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReadingSource) LatestByDevice(_ context.Context, _ string) (*domain.Reading, error) {
	if len(f.readings) == 0 {
		return nil, nil
	}
	latest := f.readings[len(f.readings)-1]
	return &latest, nil
}

func (f *fakeReadingSource) CountByDeviceSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.count, nil
}

type fakeHealthSink struct {
	snapshots []*domain.DeviceHealthSnapshot
}

func (f *fakeHealthSink) Upsert(_ context.Context, snapshot *domain.DeviceHealthSnapshot) error {
	f.snapshots = append(f.snapshots, snapshot)
	return nil
}

func setupEngine(t *testing.T, readings []domain.Reading) (*Engine, *fakeReadingSource, *fakeHealthSink) {
	cfg, err := config.Load()
	require.NoError(t, err)

	source := &fakeReadingSource{readings: readings}
	sink := &fakeHealthSink{}
	return NewEngine(cfg, source, sink, zap.NewNop()), source, sink
}

// series builds an ascending µSv/h series starting at base, one reading
// per step.
func series(base time.Time, step time.Duration, values ...float64) []domain.Reading {
	readings := make([]domain.Reading, len(values))
	deviceID := uuid.New().String()
	for i, v := range values {
		at := base.Add(time.Duration(i) * step)
		readings[i] = domain.Reading{
			ID:         uuid.New().String(),
			DeviceID:   deviceID,
			MeasuredAt: at,
			Value:      v,
			Unit:       "µSv/h",
			CreatedAt:  at,
			UpdatedAt:  at,
		}
	}
	return readings
}

var testBase = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
