package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"radmon/internal/domain"
	"radmon/internal/notifier"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAlertStore struct {
	alerts []*domain.Alert
	err    error
}

func (f *fakeAlertStore) Create(_ context.Context, alert *domain.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

type fakeDeviceStore struct {
	device *domain.Device
	err    error
}

func (f *fakeDeviceStore) GetByID(_ context.Context, _ string) (*domain.Device, error) {
	return f.device, f.err
}

type fakeSubscriptionStore struct {
	subscriptions []domain.Subscription
	err           error
}

func (f *fakeSubscriptionStore) ListActiveByUser(_ context.Context, _ string) ([]domain.Subscription, error) {
	return f.subscriptions, f.err
}

type fakeNotifier struct {
	intents []*notifier.Intent
	failFor string // subscription ID that fails delivery
}

func (f *fakeNotifier) Notify(_ context.Context, intent *notifier.Intent) error {
	if f.failFor != "" && intent.SubscriptionID == f.failFor {
		return fmt.Errorf("delivery refused")
	}
	f.intents = append(f.intents, intent)
	return nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	alerts   *fakeAlertStore
	devices  *fakeDeviceStore
	subs     *fakeSubscriptionStore
	notifier *fakeNotifier
}

func setupPipeline(t *testing.T) *pipelineFixture {
	ownerID := uuid.New().String()

	f := &pipelineFixture{
		alerts: &fakeAlertStore{},
		devices: &fakeDeviceStore{
			device: &domain.Device{
				ID:      uuid.New().String(),
				Name:    "lab-geiger-01",
				OwnerID: ownerID,
			},
		},
		subs:     &fakeSubscriptionStore{},
		notifier: &fakeNotifier{},
	}
	f.pipeline = NewPipeline(
		newTestEvaluator(t),
		f.alerts, f.devices, f.subs, f.notifier,
		zap.NewNop(),
	)
	return f
}

func testReading(value float64, unit string) *domain.Reading {
	now := time.Now()
	return &domain.Reading{
		ID:         uuid.New().String(),
		DeviceID:   uuid.New().String(),
		MeasuredAt: now,
		Value:      value,
		Unit:       unit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestOnReading_BelowThresholdsNoAlert(t *testing.T) {
	f := setupPipeline(t)

	alert, err := f.pipeline.OnReading(context.Background(), testReading(0.2, "µSv/h"))

	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Empty(t, f.alerts.alerts)
	assert.Empty(t, f.notifier.intents)
}

func TestOnReading_NormalizesMilliSievert(t *testing.T) {
	f := setupPipeline(t)

	// 0.015 mSv/h is 15 µSv/h, over the critical threshold
	alert, err := f.pipeline.OnReading(context.Background(), testReading(0.015, "mSv/h"))

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, domain.AlertLevelCritical, alert.Level)
	assert.Equal(t, "CRITICAL: Radiation level 15 µSv/h detected", alert.Message)
	require.NotNil(t, alert.ReadingID)
}

func TestOnReading_StorageFailurePropagates(t *testing.T) {
	f := setupPipeline(t)
	f.alerts.err = fmt.Errorf("connection reset")

	alert, err := f.pipeline.OnReading(context.Background(), testReading(3, "µSv/h"))

	assert.Error(t, err)
	assert.Nil(t, alert)
	assert.Empty(t, f.notifier.intents)
}

func TestOnReading_FanOutMatchingSubscriptions(t *testing.T) {
	f := setupPipeline(t)
	matching := uuid.New().String()
	f.subs.subscriptions = []domain.Subscription{
		{
			ID:       matching,
			UserID:   f.devices.device.OwnerID,
			Channel:  "email",
			Criteria: json.RawMessage(`{"levels": ["danger", "critical"]}`),
			Active:   true,
		},
		{
			ID:       uuid.New().String(),
			UserID:   f.devices.device.OwnerID,
			Channel:  "webhook",
			Criteria: json.RawMessage(`{"levels": ["critical"]}`),
			Active:   true,
		},
		{
			// nil criteria never matches
			ID:      uuid.New().String(),
			UserID:  f.devices.device.OwnerID,
			Channel: "sms",
			Active:  true,
		},
	}

	alert, err := f.pipeline.OnReading(context.Background(), testReading(3, "µSv/h"))

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, domain.AlertLevelDanger, alert.Level)

	require.Len(t, f.notifier.intents, 1)
	intent := f.notifier.intents[0]
	assert.Equal(t, matching, intent.SubscriptionID)
	assert.Equal(t, "email", intent.Channel)
	assert.Equal(t, alert.ID, intent.AlertID)
	assert.Equal(t, 3.0, intent.Value)
}

func TestOnReading_FanOutSkipsFailedDelivery(t *testing.T) {
	f := setupPipeline(t)
	first := uuid.New().String()
	second := uuid.New().String()
	f.subs.subscriptions = []domain.Subscription{
		{ID: first, UserID: f.devices.device.OwnerID, Channel: "email",
			Criteria: json.RawMessage(`{"threshold": 1}`), Active: true},
		{ID: second, UserID: f.devices.device.OwnerID, Channel: "email",
			Criteria: json.RawMessage(`{"threshold": 1}`), Active: true},
	}
	f.notifier.failFor = first

	alert, err := f.pipeline.OnReading(context.Background(), testReading(3, "µSv/h"))

	// the alert stands and the second subscription is still served
	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Len(t, f.notifier.intents, 1)
	assert.Equal(t, second, f.notifier.intents[0].SubscriptionID)
}

func TestOnReading_FanOutSkipsBadCriteria(t *testing.T) {
	f := setupPipeline(t)
	good := uuid.New().String()
	f.subs.subscriptions = []domain.Subscription{
		{ID: uuid.New().String(), UserID: f.devices.device.OwnerID, Channel: "email",
			Criteria: json.RawMessage(`{"levels": 42}`), Active: true},
		{ID: good, UserID: f.devices.device.OwnerID, Channel: "email",
			Criteria: json.RawMessage(`{"levels": ["warning"]}`), Active: true},
	}

	alert, err := f.pipeline.OnReading(context.Background(), testReading(0.6, "µSv/h"))

	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Len(t, f.notifier.intents, 1)
	assert.Equal(t, good, f.notifier.intents[0].SubscriptionID)
}

func TestOnReading_DeviceLookupFailureKeepsAlert(t *testing.T) {
	f := setupPipeline(t)
	f.devices.device = nil
	f.devices.err = fmt.Errorf("device not found")

	alert, err := f.pipeline.OnReading(context.Background(), testReading(11, "µSv/h"))

	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Len(t, f.alerts.alerts, 1)
	assert.Empty(t, f.notifier.intents)
}
