package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Intent is a notification request produced by the alerting pipeline for
// one matched subscription. Delivery itself (mail, SMS, push) happens
// downstream; the core only emits intents.
type Intent struct {
	AlertID        string    `json:"alert_id"`
	DeviceID       string    `json:"device_id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	Channel        string    `json:"channel"`
	Level          string    `json:"level"`
	Message        string    `json:"message"`
	Value          float64   `json:"value"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notifier delivers one notification intent.
type Notifier interface {
	Notify(ctx context.Context, intent *Intent) error
}

// LogNotifier writes intents to the service log. Used as the fallback
// sink for channels that have no dedicated notifier configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates the log sink.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the intent.
func (n *LogNotifier) Notify(ctx context.Context, intent *Intent) error {
	n.logger.Info("notification intent",
		zap.String("alert_id", intent.AlertID),
		zap.String("device_id", intent.DeviceID),
		zap.String("subscription_id", intent.SubscriptionID),
		zap.String("user_id", intent.UserID),
		zap.String("channel", intent.Channel),
		zap.String("level", intent.Level),
		zap.Float64("value", intent.Value))
	return nil
}
