package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamNotifier publishes intents to a Redis stream so downstream
// delivery workers can consume them at their own pace.
type StreamNotifier struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamNotifier creates the Redis stream sink.
func NewStreamNotifier(client *redis.Client, stream string, logger *zap.Logger) *StreamNotifier {
	return &StreamNotifier{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Notify appends the intent to the stream as a JSON payload.
func (n *StreamNotifier) Notify(ctx context.Context, intent *Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish intent to stream %s: %w", n.stream, err)
	}

	n.logger.Debug("intent published",
		zap.String("stream", n.stream),
		zap.String("alert_id", intent.AlertID),
		zap.String("subscription_id", intent.SubscriptionID))

	return nil
}
