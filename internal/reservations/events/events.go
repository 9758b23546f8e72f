package events

import (
	"context"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

const (
	EventConfirmed = "reservation.confirmed"
	EventCancelled = "reservation.cancelled"
	EventCompleted = "reservation.completed"
	EventNoShow    = "reservation.no_show"

	source = "reservations-service"
)

// eventTypes maps a reservation status to its lifecycle event name.
var eventTypes = map[string]string{
	model.StatusConfirmed: EventConfirmed,
	model.StatusCancelled: EventCancelled,
	model.StatusCompleted: EventCompleted,
	model.StatusNoShow:    EventNoShow,
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher emits reservation lifecycle events. Publishing is best effort:
// the admission result is already committed when an event goes out, so a
// broker failure is logged and swallowed, never surfaced to the caller.
type Publisher struct {
	producer producer
	log      *logger.Logger
}

// NewPublisher accepts a nil producer, which turns publishing into a no-op.
// Deployments without a broker run the same code path.
func NewPublisher(p producer, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: p,
		log:      log,
	}
}

func (p *Publisher) ReservationChanged(ctx context.Context, reservation *model.Reservation) {
	if p.producer == nil {
		return
	}

	eventType, ok := eventTypes[reservation.Status]
	if !ok {
		p.log.Warn("No event type for reservation status",
			"reservation_id", reservation.ID,
			"status", reservation.Status,
		)
		return
	}

	msg := kafka.NewMessage().
		WithKey(reservation.ProviderID).
		WithValue(reservation).
		WithEventType(eventType).
		WithSource(source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"reservation_id", reservation.ID,
			"event_type", eventType,
			"error", err,
		)
		return
	}

	p.log.Debug("Reservation event published",
		"reservation_id", reservation.ID,
		"event_type", eventType,
	)
}
