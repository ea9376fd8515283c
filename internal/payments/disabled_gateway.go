package payments

import (
	"context"

	"github.com/campground-booking/service-campground/internal/common/domain"
	"github.com/campground-booking/service-campground/internal/domain/payment"
)

// ErrNotConfigured is returned by DisabledGateway for every call.
var ErrNotConfigured = domain.NewConfigurationError("Payment processor is not configured")

// DisabledGateway stands in when no processor key is configured, so the
// rest of the service can run without payments.
type DisabledGateway struct{}

func (DisabledGateway) CreateCheckoutSession(context.Context, payment.CheckoutRequest) (payment.CheckoutSession, error) {
	return payment.CheckoutSession{}, ErrNotConfigured
}

func (DisabledGateway) RetrieveSession(context.Context, string) (payment.SessionStatus, error) {
	return payment.SessionStatus{}, ErrNotConfigured
}
