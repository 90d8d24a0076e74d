package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT broker settings for the reading ingest consumer.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // reading topic pattern, e.g. "radmon/+/reading"
	QoS      byte
}

// Config radiation monitoring service configuration.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// Alerting thresholds and fan-out settings. Thresholds are canonical
	// µSv/h dose rates; evaluation is inclusive (value >= threshold).
	Alert struct {
		WarningThreshold  float64 // default 0.5
		DangerThreshold   float64 // default 2.0
		CriticalThreshold float64 // default 10.0

		// Notification intent routing.
		IntentStream string // Redis stream for emitted intents
		WebhookURL   string // optional webhook endpoint, empty disables
	}

	// Analytics defaults; callers may override per request.
	Analytics struct {
		EWMAAlpha            float64 // default 0.3
		PeakClusterWindowMin int     // default 5 minutes
		ExposureMaxHours     int     // default 24
		HealthExpectedPerDay int     // expected readings in trailing 24h, default 24
	}

	// Latest-reading cache settings.
	Cache struct {
		LatestKeyPrefix string // e.g. "radmon:device:"
		LatestSuffix    string // e.g. ":latest"
		LatestTTL       int    // seconds
	}

	// HTTP admin API.
	HTTP struct {
		Addr string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "radmon")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "radmon")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_READING_TOPIC", "radmon/+/reading")
	cfg.MQTT.QoS = 1

	cfg.Alert.WarningThreshold = getEnvFloat("ALERT_WARNING_THRESHOLD", 0.5)
	cfg.Alert.DangerThreshold = getEnvFloat("ALERT_DANGER_THRESHOLD", 2.0)
	cfg.Alert.CriticalThreshold = getEnvFloat("ALERT_CRITICAL_THRESHOLD", 10.0)
	cfg.Alert.IntentStream = getEnv("ALERT_INTENT_STREAM", "radmon:alerts:intents")
	cfg.Alert.WebhookURL = getEnv("ALERT_WEBHOOK_URL", "")

	cfg.Analytics.EWMAAlpha = getEnvFloat("ANALYTICS_EWMA_ALPHA", 0.3)
	cfg.Analytics.PeakClusterWindowMin = getEnvInt("ANALYTICS_PEAK_CLUSTER_WINDOW_MIN", 5)
	cfg.Analytics.ExposureMaxHours = getEnvInt("ANALYTICS_EXPOSURE_MAX_HOURS", 24)
	cfg.Analytics.HealthExpectedPerDay = getEnvInt("ANALYTICS_HEALTH_EXPECTED_PER_DAY", 24)

	cfg.Cache.LatestKeyPrefix = getEnv("CACHE_LATEST_PREFIX", "radmon:device:")
	cfg.Cache.LatestSuffix = ":latest"
	cfg.Cache.LatestTTL = getEnvInt("CACHE_LATEST_TTL", 3600)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
