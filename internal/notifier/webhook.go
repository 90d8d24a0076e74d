package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier posts intents to a configured HTTP endpoint.
type WebhookNotifier struct {
	client *resty.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates the webhook sink for the given endpoint URL.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		client: client,
		logger: logger,
	}
}

// Notify POSTs the intent as JSON.
func (n *WebhookNotifier) Notify(ctx context.Context, intent *Intent) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(intent).
		Post("")
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug("webhook delivered",
		zap.String("alert_id", intent.AlertID),
		zap.Int("status", resp.StatusCode()))

	return nil
}
