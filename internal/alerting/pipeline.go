package alerting

import (
	"context"
	"fmt"
	"time"

	"radmon/internal/domain"
	"radmon/internal/notifier"
	"radmon/internal/units"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertStore persists alerts.
type AlertStore interface {
	Create(ctx context.Context, alert *domain.Alert) error
}

// DeviceStore resolves devices for fan-out.
type DeviceStore interface {
	GetByID(ctx context.Context, deviceID string) (*domain.Device, error)
}

// SubscriptionStore lists a user's active subscriptions.
type SubscriptionStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Subscription, error)
}

// Pipeline runs the full alerting flow for one reading: normalize the
// value, classify it, persist the alert, then fan out notification
// intents to the device owner's matching subscriptions.
//
// Alert storage failures abort the flow; fan-out failures are logged
// per subscription and skipped so one bad subscription cannot block
// the rest.
type Pipeline struct {
	evaluator     *Evaluator
	alerts        AlertStore
	devices       DeviceStore
	subscriptions SubscriptionStore
	notifier      notifier.Notifier
	logger        *zap.Logger
}

// NewPipeline wires the alerting pipeline.
func NewPipeline(
	evaluator *Evaluator,
	alerts AlertStore,
	devices DeviceStore,
	subscriptions SubscriptionStore,
	n notifier.Notifier,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		evaluator:     evaluator,
		alerts:        alerts,
		devices:       devices,
		subscriptions: subscriptions,
		notifier:      n,
		logger:        logger,
	}
}

// OnReading processes one stored reading. Returns the created alert, or
// nil when the reading is below every threshold. Each invocation alerts
// independently; a redelivered reading produces a duplicate alert, so
// callers own at-most-once delivery.
func (p *Pipeline) OnReading(ctx context.Context, reading *domain.Reading) (*domain.Alert, error) {
	if reading == nil {
		return nil, fmt.Errorf("reading is required")
	}

	value := units.Normalize(reading.Value, reading.Unit)

	level, ok := p.evaluator.Evaluate(value)
	if !ok {
		return nil, nil
	}

	now := time.Now()
	readingID := reading.ID
	alert := &domain.Alert{
		ID:        uuid.New().String(),
		DeviceID:  reading.DeviceID,
		Level:     level,
		Message:   Message(level, value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if readingID != "" {
		alert.ReadingID = &readingID
	}

	if err := p.alerts.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to store alert: %w", err)
	}

	p.logger.Info("alert created",
		zap.String("alert_id", alert.ID),
		zap.String("device_id", alert.DeviceID),
		zap.String("level", string(level)),
		zap.Float64("value", value))

	p.fanOut(ctx, alert, value)

	return alert, nil
}

// fanOut emits one notification intent per matching active subscription
// of the device owner.
func (p *Pipeline) fanOut(ctx context.Context, alert *domain.Alert, value float64) {
	device, err := p.devices.GetByID(ctx, alert.DeviceID)
	if err != nil {
		p.logger.Error("fan-out: failed to resolve device",
			zap.String("device_id", alert.DeviceID),
			zap.Error(err))
		return
	}

	subscriptions, err := p.subscriptions.ListActiveByUser(ctx, device.OwnerID)
	if err != nil {
		p.logger.Error("fan-out: failed to list subscriptions",
			zap.String("owner_id", device.OwnerID),
			zap.Error(err))
		return
	}

	for _, sub := range subscriptions {
		criteria, err := ParseCriteria(sub.Criteria)
		if err != nil {
			p.logger.Warn("fan-out: bad subscription criteria, skipping",
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}

		if !criteria.Matches(alert.Level, value) {
			continue
		}

		intent := &notifier.Intent{
			AlertID:        alert.ID,
			DeviceID:       alert.DeviceID,
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			Channel:        sub.Channel,
			Level:          string(alert.Level),
			Message:        alert.Message,
			Value:          value,
			CreatedAt:      alert.CreatedAt,
		}

		if err := p.notifier.Notify(ctx, intent); err != nil {
			p.logger.Error("fan-out: notification failed, skipping",
				zap.String("subscription_id", sub.ID),
				zap.String("channel", sub.Channel),
				zap.Error(err))
			continue
		}
	}
}
