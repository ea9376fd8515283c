package payment

import (
	"context"
	"strings"
)

// Metadata keys attached to every checkout session.
const (
	MetaCampgroundID   = "campgroundId"
	MetaBookingDate    = "bookingDate"
	MetaCampgroundName = "campgroundName"
	MetaUserID         = "userId"
)

// LineItem is the single purchasable line of a checkout session.
type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64
	Quantity    int64
}

// CheckoutRequest is everything the payment processor needs to host a checkout.
type CheckoutRequest struct {
	Currency      string
	LineItem      LineItem
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
	CustomerEmail string
}

// CheckoutSession is the processor's answer to a checkout request.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionStatus is the processor's view of a checkout session.
type SessionStatus struct {
	ID            string
	PaymentStatus string
	Status        string
	Metadata      map[string]string
}

// IsPaid reports whether the processor considers the session settled.
func (s SessionStatus) IsPaid() bool {
	return strings.EqualFold(s.PaymentStatus, "paid") || strings.EqualFold(s.Status, "complete")
}

// Gateway is the hosted-checkout payment processor.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (SessionStatus, error)
}
