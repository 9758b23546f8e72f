package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"slotbook/internal/reservations/events"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
	"slotbook/pkg/model"
)

const ServiceName = "notifier"

// The notifier consumes reservation lifecycle events and fans them out as
// customer notifications. Delivery channels hang off notify; today that is
// the structured log, which doubles as the audit trail.
func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Kafka configuration invalid", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Fatal("Notifier requires Kafka, set " + kafka_config.EnvKafkaEnabled + "=true")
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.ReservationTopic,
		"notifier-group",
		kafkaCfg.ReservationDLQTopic,
		notify(cfg),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Notifier started", "topic", kafkaCfg.ReservationTopic)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Fatal("Consumer stopped unexpectedly", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

func notify(cfg *config.Config) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var reservation model.Reservation
		if err := msg.DecodeValue(&reservation); err != nil {
			cfg.Log.Error("Undecodable reservation event",
				"event_id", msg.GetEventID(),
				"error", err,
			)
			return err
		}

		switch msg.GetEventType() {
		case events.EventConfirmed:
			cfg.Log.Info("Notify customer: reservation confirmed",
				"reservation_id", reservation.ID,
				"customer_phone", reservation.CustomerPhone,
				"start_time", reservation.StartTime,
			)
		case events.EventCancelled:
			cfg.Log.Info("Notify customer: reservation cancelled",
				"reservation_id", reservation.ID,
				"customer_phone", reservation.CustomerPhone,
			)
		case events.EventCompleted, events.EventNoShow:
			cfg.Log.Info("Recording post-visit status",
				"reservation_id", reservation.ID,
				"status", reservation.Status,
			)
		default:
			cfg.Log.Warn("Unknown reservation event type",
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
			)
		}
		return nil
	}
}
