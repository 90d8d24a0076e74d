package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"radmon/internal/alerting"
	"radmon/internal/analytics"
	"radmon/internal/config"
	"radmon/internal/consumer"
	"radmon/internal/database"
	"radmon/internal/export"
	radhttp "radmon/internal/http"
	"radmon/internal/mqtt"
	"radmon/internal/notifier"
	"radmon/internal/repository"
	"radmon/internal/service/compute"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MonitorService assembles the whole radiation monitoring core: MQTT
// ingest, alerting, notification fan-out, analytics and the admin API.
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqtt.Client
	logger      *zap.Logger

	cacheManager *consumer.CacheManager
	mqttConsumer *consumer.MQTTConsumer
	pipeline     *alerting.Pipeline
	engine       *analytics.Engine
	compute      *compute.ComputeService
	httpServer   *http.Server
}

// NewMonitorService connects the backing stores and wires every layer.
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	readingsRepo := repository.NewReadingsRepository(db, logger)
	alertsRepo := repository.NewAlertsRepository(db, logger)
	subscriptionsRepo := repository.NewSubscriptionsRepository(db, logger)
	devicesRepo := repository.NewDevicesRepository(db, logger)
	metricsRepo := repository.NewComputedMetricsRepository(db, logger)
	healthRepo := repository.NewDeviceHealthRepository(db, logger)
	auditRepo := repository.NewAuditLogRepository(db, logger)

	cacheManager := consumer.NewCacheManager(cfg, redisClient, logger)

	stream := notifier.NewStreamNotifier(redisClient, cfg.Alert.IntentStream, logger)
	dispatcher := notifier.NewDispatcher(stream, notifier.NewLogNotifier(logger))
	if cfg.Alert.WebhookURL != "" {
		dispatcher.Register("webhook", notifier.NewWebhookNotifier(cfg.Alert.WebhookURL, logger))
	}

	pipeline := alerting.NewPipeline(
		alerting.NewEvaluator(cfg),
		alertsRepo,
		devicesRepo,
		subscriptionsRepo,
		dispatcher,
		logger,
	)

	mqttClient := mqtt.NewClient(&cfg.MQTT, logger)
	mqttConsumer := consumer.NewMQTTConsumer(
		cfg, mqttClient, devicesRepo, readingsRepo, cacheManager, pipeline, logger)

	engine := analytics.NewEngine(cfg, readingsRepo, healthRepo, logger)
	computeSvc := compute.NewComputeService(engine, metricsRepo, auditRepo, logger)

	handler := radhttp.NewAdminHandler(
		computeSvc, alertsRepo, readingsRepo, healthRepo,
		export.NewReadingsExporter(logger), logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      radhttp.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return &MonitorService{
		config:       cfg,
		db:           db,
		redisClient:  redisClient,
		mqttClient:   mqttClient,
		logger:       logger,
		cacheManager: cacheManager,
		mqttConsumer: mqttConsumer,
		pipeline:     pipeline,
		engine:       engine,
		compute:      computeSvc,
		httpServer:   httpServer,
	}, nil
}

// Start connects to the broker, subscribes the ingest consumer and
// serves the admin API until the context is cancelled.
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("starting monitor service",
		zap.String("http_addr", s.config.HTTP.Addr),
		zap.String("mqtt_topic", s.config.MQTT.Topic),
	)

	if err := s.mqttClient.Connect(); err != nil {
		return err
	}
	if err := s.mqttConsumer.Start(); err != nil {
		return fmt.Errorf("failed to start mqtt consumer: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

// Stop shuts everything down gracefully.
func (s *MonitorService) Stop() error {
	s.logger.Info("stopping monitor service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shut down http server", zap.Error(err))
	}

	s.mqttClient.Disconnect()

	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", zap.Error(err))
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("failed to close redis", zap.Error(err))
	}

	return nil
}
