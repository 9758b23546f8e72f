package main

import (
	providersrepo "slotbook/internal/providers/repository"
	"slotbook/internal/reservations/events"
	"slotbook/internal/reservations/handler"
	"slotbook/internal/reservations/repository"
	"slotbook/internal/reservations/service"
	"slotbook/internal/reservations/validator"
	schedulesrepo "slotbook/internal/schedules/repository"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	reservationService, producer := initServices(cfg)
	if producer != nil {
		defer producer.Close()
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, *kafka.Producer) {
	producer := initProducer(cfg)

	reservationService := service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewMongoSlotLockRepository(cfg),
		schedulesrepo.NewMongoScheduleRepository(cfg),
		providersrepo.NewMongoProviderRepository(cfg),
		validator.NewReservationValidator(cfg.Log),
		newPublisher(producer, cfg),
		clock.NewSystem(),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, producer
}

// initProducer returns nil when Kafka is disabled or misconfigured; event
// publishing is best effort and never a startup blocker.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka configuration invalid, events disabled", "error", err)
		return nil
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.ReservationTopic, kafkaCfg.ReservationDLQTopic)
	if err != nil {
		cfg.Log.Warn("Failed to create Kafka producer, events disabled", "error", err)
		return nil
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Kafka producer initialized",
		"topic", kafkaCfg.ReservationTopic,
		"dlq_topic", kafkaCfg.ReservationDLQTopic,
	)
	return producer
}

func newPublisher(producer *kafka.Producer, cfg *config.Config) *events.Publisher {
	if producer == nil {
		return events.NewPublisher(nil, cfg.Log)
	}
	return events.NewPublisher(producer, cfg.Log)
}
