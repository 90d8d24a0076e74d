package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"radmon/internal/config"
	"radmon/internal/domain"
	"radmon/internal/mqtt"
	"radmon/internal/units"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceResolver authenticates an ingest token.
type DeviceResolver interface {
	GetByToken(ctx context.Context, token string) (*domain.Device, error)
}

// ReadingWriter persists readings.
type ReadingWriter interface {
	Insert(ctx context.Context, reading *domain.Reading) error
}

// ReadingCache keeps the device's latest reading warm.
type ReadingCache interface {
	SetLatestReading(ctx context.Context, reading *domain.Reading) error
}

// AlertRunner runs the alerting flow for one stored reading.
type AlertRunner interface {
	OnReading(ctx context.Context, reading *domain.Reading) (*domain.Alert, error)
}

// readingPayload is the JSON a device publishes on its reading topic.
type readingPayload struct {
	Value      float64         `json:"value"`
	Unit       string          `json:"unit"`
	MeasuredAt *time.Time      `json:"measured_at"`
	Metadata   json.RawMessage `json:"metadata"`
}

// MQTTConsumer ingests sensor readings from the broker. Topic layout is
// radmon/{device_token}/reading; the token segment authenticates the
// device.
type MQTTConsumer struct {
	config   *config.Config
	client   *mqtt.Client
	devices  DeviceResolver
	readings ReadingWriter
	cache    ReadingCache
	pipeline AlertRunner
	logger   *zap.Logger
}

// NewMQTTConsumer creates the ingest consumer.
func NewMQTTConsumer(
	cfg *config.Config,
	client *mqtt.Client,
	devices DeviceResolver,
	readings ReadingWriter,
	cache ReadingCache,
	pipeline AlertRunner,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:   cfg,
		client:   client,
		devices:  devices,
		readings: readings,
		cache:    cache,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Start subscribes to the reading topic.
func (c *MQTTConsumer) Start() error {
	return c.client.Subscribe(c.config.MQTT.Topic, c.config.MQTT.QoS, c.HandleMessage)
}

// HandleMessage processes one published reading: authenticate the
// device, store the reading, refresh the cache, then run alerting.
func (c *MQTTConsumer) HandleMessage(topic string, payload []byte) error {
	ctx := context.Background()

	token, err := tokenFromTopic(topic)
	if err != nil {
		return err
	}

	device, err := c.devices.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("unknown device token: %w", err)
	}
	if !device.IsActive {
		c.logger.Warn("reading from inactive device dropped",
			zap.String("device_id", device.ID))
		return nil
	}

	var p readingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse reading payload: %w", err)
	}

	now := time.Now()
	measuredAt := now
	if p.MeasuredAt != nil {
		measuredAt = *p.MeasuredAt
	}
	unit := p.Unit
	if unit == "" {
		unit = units.CanonicalUnit
	}

	reading := &domain.Reading{
		ID:         uuid.New().String(),
		DeviceID:   device.ID,
		MeasuredAt: measuredAt,
		Value:      p.Value,
		Unit:       unit,
		Metadata:   p.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.readings.Insert(ctx, reading); err != nil {
		return fmt.Errorf("failed to store reading: %w", err)
	}

	// cache refresh is best-effort
	if err := c.cache.SetLatestReading(ctx, reading); err != nil {
		c.logger.Warn("failed to update latest reading cache",
			zap.String("device_id", device.ID),
			zap.Error(err))
	}

	if _, err := c.pipeline.OnReading(ctx, reading); err != nil {
		return fmt.Errorf("alerting failed for reading %s: %w", reading.ID, err)
	}

	return nil
}

func tokenFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[1] == "" {
		return "", fmt.Errorf("unexpected topic format: %s", topic)
	}
	return parts[1], nil
}
