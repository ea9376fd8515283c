package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/domain"
	"github.com/campground-booking/service-campground/internal/common/kafka"
)

const (
	// TopicPaymentEvents carries notifications from the payment processor bridge.
	TopicPaymentEvents = "payment.events"

	// CheckoutCompleted is emitted once a hosted checkout session settles.
	CheckoutCompleted = "payment.checkout.completed"
)

// CheckoutCompletedEvent is the data of a CheckoutCompleted event.
type CheckoutCompletedEvent struct {
	SessionID string `json:"sessionId"`
}

// SessionReconciler turns a paid checkout session into a paid booking.
type SessionReconciler interface {
	ReconcileSession(ctx context.Context, sessionID string) (*application.FinalizeResultDTO, error)
}

// PaymentEventConsumer finalizes bookings for sessions whose customer never
// returned to the success page.
type PaymentEventConsumer struct {
	consumer   *kafka.Consumer
	reconciler SessionReconciler
	logger     *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	reconciler SessionReconciler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer:   kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case CheckoutCompleted:
		return c.handleCheckoutCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleCheckoutCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt CheckoutCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.SessionID == "" {
		c.logger.Error("invalid CheckoutCompletedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	result, err := c.reconciler.ReconcileSession(ctx, evt.SessionID)
	if err != nil {
		if retryable(err) {
			c.logger.Warn("checkout reconciliation failed",
				zap.String("session_id", evt.SessionID),
				zap.Error(err),
			)
			return err
		}
		c.logger.Error("dropping unreconcilable checkout session",
			zap.String("session_id", evt.SessionID),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("checkout session reconciled",
		zap.String("session_id", evt.SessionID),
		zap.String("booking_id", result.Booking.ID.String()),
		zap.Bool("already_exists", result.AlreadyExists),
	)
	return nil
}

// retryable reports whether another attempt could succeed. The processor may
// be briefly unreachable and optimistic writes may race.
func retryable(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindInternal, domain.KindConflict, domain.KindInvalidSession:
		return true
	default:
		return false
	}
}
