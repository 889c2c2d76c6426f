//go:build wireinject
// +build wireinject

package di

import (
	"AlertPulse/pkg/config"
	"AlertPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideGormDB,
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideNotificationStore,
		ProvideSettingsStore,
		ProvideSignalArchive,
		ProvideEventPublisher,

		// Delivery channels
		ProvideHub,
		ProvidePushSender,
		ProvideMailer,

		// Use cases
		ProvideDeliveryRouter,
		ProvidePipeline,
		ProvideKafkaSignalsHandler,
		ProvideIngestGuard,
		ProvideAnomalyScheduler,
		ProvideDigestQueue,
		ProvideDigestScheduler,

		// HTTP surface
		ProvideAPI,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
