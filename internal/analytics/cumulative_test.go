package analytics

import (
	"context"
	"testing"
	"time"

	"radmon/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeDose_TwoPointsOneHour(t *testing.T) {
	readings := series(testBase, time.Hour, 1.0, 1.0)
	engine, _, _ := setupEngine(t, readings)

	result, err := engine.CumulativeDose(context.Background(), readings[0].DeviceID,
		testBase, testBase.Add(time.Hour))

	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.TotalDose, 1e-9)
	require.Len(t, result.Breakdown, 1)
	assert.InDelta(t, 1.0, result.Breakdown[0].Dose, 1e-9)
}

func TestCumulativeDose_TrapezoidAveragesEndpoints(t *testing.T) {
	// 1 µSv/h rising to 3 µSv/h over 30 minutes: (1+3)/2 * 0.5 = 1
	readings := series(testBase, 30*time.Minute, 1.0, 3.0)
	engine, _, _ := setupEngine(t, readings)

	result, err := engine.CumulativeDose(context.Background(), readings[0].DeviceID,
		testBase, testBase.Add(time.Hour))

	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.TotalDose, 1e-9)
}

func TestCumulativeDose_FewerThanTwoReadings(t *testing.T) {
	single := series(testBase, time.Hour, 2.0)
	engine, _, _ := setupEngine(t, single)

	result, err := engine.CumulativeDose(context.Background(), single[0].DeviceID,
		testBase, testBase.Add(time.Hour))

	require.NoError(t, err)
	assert.Zero(t, result.TotalDose)
	assert.Empty(t, result.Breakdown)

	engine, _, _ = setupEngine(t, nil)
	result, err = engine.CumulativeDose(context.Background(), "dev",
		testBase, testBase.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, result.TotalDose)
	assert.Empty(t, result.Breakdown)
}

func TestCumulativeDose_SkipsZeroDeltaSegments(t *testing.T) {
	readings := series(testBase, time.Hour, 1.0, 1.0, 1.0)
	// duplicate timestamp in the middle
	readings[1].MeasuredAt = readings[0].MeasuredAt
	engine, _, _ := setupEngine(t, readings)

	result, err := engine.CumulativeDose(context.Background(), readings[0].DeviceID,
		testBase, testBase.Add(3*time.Hour))

	require.NoError(t, err)
	// only the second segment (2h apart) contributes
	assert.InDelta(t, 2.0, result.TotalDose, 1e-9)
	require.Len(t, result.Breakdown, 1)
}

func TestCumulativeDose_NormalizesMixedUnits(t *testing.T) {
	readings := series(testBase, time.Hour, 1.0, 1.0)
	readings[1].Value = 0.001
	readings[1].Unit = "mSv/h" // 1 µSv/h
	engine, _, _ := setupEngine(t, readings)

	result, err := engine.CumulativeDose(context.Background(), readings[0].DeviceID,
		testBase, testBase.Add(time.Hour))

	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.TotalDose, 1e-9)
}

func TestComputeDose_DirectSeries(t *testing.T) {
	readings := []domain.Reading{}
	assert.Zero(t, computeDose(readings).TotalDose)
}
