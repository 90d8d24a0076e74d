package mqtt

import (
	"fmt"
	"time"

	"radmon/internal/config"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MessageHandler processes one inbound message. Returning an error only
// logs it; the broker connection stays up.
type MessageHandler func(topic string, payload []byte) error

// Client thin wrapper around the paho MQTT client.
type Client struct {
	client paho.Client
	cfg    *config.MQTTConfig
	logger *zap.Logger
}

// NewClient builds an MQTT client from configuration. Connect must be
// called before Subscribe.
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) *Client {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(_ paho.Client) {
		logger.Info("mqtt connected", zap.String("broker", cfg.Broker))
	})

	return &Client{
		client: paho.NewClient(opts),
		cfg:    cfg,
		logger: logger,
	}
}

// Connect establishes the broker connection.
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout: %s", c.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect mqtt broker: %w", err)
	}
	return nil
}

// Subscribe registers a handler for the topic pattern.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Error("mqtt message handler failed",
				zap.String("topic", msg.Topic()),
				zap.Error(err))
		}
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", topic, err)
	}

	c.logger.Info("mqtt subscribed", zap.String("topic", topic))
	return nil
}

// Disconnect closes the broker connection gracefully.
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}
