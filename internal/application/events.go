package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/kafka"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
)

// eventSource is the CloudEvents source of everything this service publishes.
const eventSource = "service-campground"

// Booking event topic and types.
const (
	TopicBookingEvents = "booking.events"

	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
	BookingPaid    = "booking.paid"
)

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

// NoopPublisher returns a publisher that drops every event, used when
// Kafka is not configured.
func NoopPublisher() EventPublisher { return noopPublisher{} }

// BookingEvent is the payload of every booking.* event.
type BookingEvent struct {
	BookingID     uuid.UUID `json:"bookingId"`
	UserID        uuid.UUID `json:"userId"`
	CampgroundID  uuid.UUID `json:"campgroundId"`
	BookingDate   string    `json:"bookingDate"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func newBookingEvent(bk *bookingDomain.Booking) BookingEvent {
	return BookingEvent{
		BookingID:     bk.ID(),
		UserID:        bk.UserID(),
		CampgroundID:  bk.CampgroundID(),
		BookingDate:   bookingDomain.FormatDay(bk.BookingDate()),
		PaymentStatus: bk.PaymentStatus().String(),
		OccurredAt:    time.Now().UTC(),
	}
}

// publishBookingEvent never fails the caller; publish errors are logged.
func publishBookingEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, eventType string, bk *bookingDomain.Booking) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, newBookingEvent(bk))
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := publisher.PublishEvent(ctx, TopicBookingEvents, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
}
