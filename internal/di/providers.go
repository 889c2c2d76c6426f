package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	"AlertPulse/internal/handler/api"
	mid "AlertPulse/internal/middleware"
	internalrepo "AlertPulse/internal/repository"
	"AlertPulse/internal/service/livehub"
	"AlertPulse/internal/service/mailer"
	"AlertPulse/internal/service/push"
	"AlertPulse/internal/service/ratelimit"
	"AlertPulse/internal/usecase"
	"AlertPulse/pkg/cache"
	pkgch "AlertPulse/pkg/clickhouse"
	"AlertPulse/pkg/config"
	pkgkafka "AlertPulse/pkg/kafka"
	applogger "AlertPulse/pkg/logger"
	"AlertPulse/pkg/metrics"
	"AlertPulse/pkg/queue"
	"AlertPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideGormDB opens the Postgres connection and runs migrations.
func ProvideGormDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.AutoMigrate(
		&models.NotificationRecord{},
		&models.AlertSetting{},
		&models.NotificationSettings{},
		&models.DeviceToken{},
	); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return db, nil
}

// ProvideRedisCache creates a Redis cache client, or nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("alertpulse"),
	)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSignalArchive creates the ClickHouse archive, or a noop when
// ClickHouse is disabled.
func ProvideSignalArchive(chClient *pkgch.Client, cfg *config.Config) domrepo.SignalArchive {
	if chClient == nil {
		return internalrepo.NewNoopSignalArchive()
	}
	return internalrepo.NewClickHouseSignalArchive(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideKafkaProducer creates a Kafka producer for the event stream.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the signal ingestion consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideEventPublisher creates the fired-notification event stream.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.EventPublisher {
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideNotificationStore creates the relational notification store.
func ProvideNotificationStore(db *gorm.DB) domrepo.NotificationStore {
	return internalrepo.NewGormNotificationStore(db)
}

// ProvideSettingsStore creates the settings store, cached through Redis when
// available.
func ProvideSettingsStore(db *gorm.DB, redisCache *cache.RedisCache) domrepo.SettingsStore {
	store := internalrepo.NewGormSettingsStore(db)
	if redisCache == nil {
		return store
	}
	layered := cache.NewLayeredCache(redisCache)
	return internalrepo.NewCachedSettingsStore(store, layered)
}

// ProvideHub creates the live WebSocket session hub.
func ProvideHub(logger *applogger.Logger) *livehub.Hub {
	return livehub.New(logger)
}

// ProvidePushSender creates the FCM push channel.
func ProvidePushSender(cfg *config.Config, logger *applogger.Logger) (*push.Sender, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return push.New(ctx, push.Config{
		CredentialsFile: cfg.Push.CredentialsFile,
		RatePerSec:      cfg.Push.RatePerSec,
		SendTimeout:     cfg.Push.SendTimeout,
	}, logger)
}

// ProvideMailer creates the SMTP email channel.
func ProvideMailer(cfg *config.Config, logger *applogger.Logger) *mailer.Mailer {
	return mailer.New(mailer.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, logger)
}

// ProvideDeliveryRouter wires the three delivery channels.
func ProvideDeliveryRouter(
	hub *livehub.Hub,
	sender *push.Sender,
	m *mailer.Mailer,
	settings domrepo.SettingsStore,
	mtr domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.DeliveryRouter {
	opts := []usecase.RouterOption{}
	if cfg.Pipeline.ChannelTimeout > 0 {
		opts = append(opts, usecase.WithChannelTimeout(cfg.Pipeline.ChannelTimeout))
	}
	return usecase.NewDeliveryRouter(hub, sender, m, settings, mtr, logger, opts...)
}

// ProvidePipeline assembles the signal processing pipeline.
func ProvidePipeline(
	router *usecase.DeliveryRouter,
	store domrepo.NotificationStore,
	settings domrepo.SettingsStore,
	archive domrepo.SignalArchive,
	events domrepo.EventPublisher,
	mtr domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.SignalNotificationPipeline {
	opts := []usecase.PipelineOption{}
	if cfg.Pipeline.MaxFanout > 0 {
		opts = append(opts, usecase.WithMaxFanout(cfg.Pipeline.MaxFanout))
	}
	return usecase.NewSignalNotificationPipeline(
		usecase.NewAlertRuleEvaluator(),
		usecase.NewNotificationFactory(),
		usecase.NewGroupingEngine(store),
		ratelimit.New(),
		router,
		store, settings, archive, events, mtr, logger,
		opts...,
	)
}

// ProvideKafkaSignalsHandler registers the handler for the signals topic.
func ProvideKafkaSignalsHandler(pipeline *usecase.SignalNotificationPipeline, mtr domrepo.Metrics, cfg *config.Config) *usecase.KafkaSignalsHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.SignalsTopic, pipeline, mtr)
}

// ProvideIngestGuard throttles the direct HTTP ingestion path.
func ProvideIngestGuard(pipeline *usecase.SignalNotificationPipeline, mtr domrepo.Metrics, cfg *config.Config) *mid.IngestGuard {
	opts := []mid.GuardOption{}
	if cfg.Pipeline.IngestPerSec > 0 {
		opts = append(opts, mid.WithMaxPerSec(cfg.Pipeline.IngestPerSec))
	}
	return mid.NewIngestGuard(pipeline, mtr, opts...)
}

// ProvideAnomalyScheduler creates the periodic mention-burst scanner.
func ProvideAnomalyScheduler(pipeline *usecase.SignalNotificationPipeline, archive domrepo.SignalArchive, logger *applogger.Logger, cfg *config.Config) *usecase.AnomalyScheduler {
	if len(cfg.Scheduler.WatchSymbols) == 0 {
		return nil
	}
	return usecase.NewAnomalyScheduler(pipeline, archive, logger, cfg.Scheduler.AnomalySpec, cfg.Scheduler.WatchSymbols)
}

// ProvideDigestQueue creates the Redis digest job queue, or nil when Redis is
// disabled. One queue handles both the scheduler's publishes and job
// consumption.
func ProvideDigestQueue(
	redisCache *cache.RedisCache,
	store domrepo.NotificationStore,
	settings domrepo.SettingsStore,
	m *mailer.Mailer,
	logger *applogger.Logger,
) *queue.RedisQueue {
	if redisCache == nil {
		return nil
	}
	job := usecase.NewDigestJob(store, settings, m, logger)
	q := queue.NewRedisQueue(logger, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: time.Minute,
	}, redisCache.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideDigestScheduler creates the digest cron, or nil without a queue.
func ProvideDigestScheduler(q *queue.RedisQueue, settings domrepo.SettingsStore, logger *applogger.Logger) *usecase.DigestScheduler {
	if q == nil {
		return nil
	}
	return usecase.NewDigestScheduler(settings, q, logger)
}

// ProvideAPI assembles the HTTP surface.
func ProvideAPI(
	logger *applogger.Logger,
	store domrepo.NotificationStore,
	settings domrepo.SettingsStore,
	guard *mid.IngestGuard,
	archive domrepo.SignalArchive,
	hub *livehub.Hub,
) *api.API {
	return api.New(
		api.NewNotificationsEchoHandler(logger, store),
		api.NewSettingsEchoHandler(logger, settings),
		api.NewSignalsEchoHandler(logger, guard, archive),
		api.NewWSEchoHandler(logger, hub),
	)
}

// ProvideApp creates the application server.
// kafkaLogPublisher forwards aggregated log batches to Kafka.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
	events domrepo.EventPublisher,
	archive domrepo.SignalArchive,
	hub *livehub.Hub,
	anomaly *usecase.AnomalyScheduler,
	digest *usecase.DigestScheduler,
	digestQueue *queue.RedisQueue,
	apiHandler *api.API,
	mtr domrepo.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(mid.NewConsumerMetricsHook(mtr))
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, logger, consumer, kh, events, archive, hub, anomaly, digest, digestQueue)
	app.SetHTTPHandler(apiHandler)
	return app
}
