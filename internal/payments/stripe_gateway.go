// Package payments adapts the hosted-checkout Gateway to Stripe.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/domain/payment"
)

const (
	checkoutMode       = "payment"
	checkoutSubmitType = "book"
	paymentMethodCard  = "card"
)

// StripeGateway implements payment.Gateway with Stripe Checkout.
type StripeGateway struct {
	sc     *client.API
	logger *zap.Logger
}

// NewStripeGateway creates a gateway authenticated with secretKey.
func NewStripeGateway(secretKey string, logger *zap.Logger) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	return &StripeGateway{sc: client.New(secretKey, nil), logger: logger}, nil
}

// CreateCheckoutSession opens a single-item card checkout.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	params := checkoutParams(req)
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("stripe checkout session creation failed", zap.Error(err))
		return payment.CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	g.logger.Info("stripe checkout session created", zap.String("session_id", s.ID))
	return payment.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// RetrieveSession fetches a session's payment state and metadata.
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (payment.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			g.logger.Warn("stripe session retrieval failed",
				zap.String("session_id", sessionID),
				zap.Int("status", stripeErr.HTTPStatusCode),
				zap.String("code", string(stripeErr.Code)),
			)
		}
		return payment.SessionStatus{}, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return toSessionStatus(s), nil
}

func checkoutParams(req payment.CheckoutRequest) *stripe.CheckoutSessionParams {
	item := req.LineItem
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(item.Name),
	}
	if item.Description != "" {
		product.Description = stripe.String(item.Description)
	}
	if item.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{item.ImageURL})
	}

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(checkoutMode),
		SubmitType:         stripe.String(checkoutSubmitType),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{paymentMethodCard}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(strings.ToLower(req.Currency)),
					ProductData: product,
					UnitAmount:  stripe.Int64(item.UnitAmount),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func toSessionStatus(s *stripe.CheckoutSession) payment.SessionStatus {
	metadata := make(map[string]string, len(s.Metadata))
	for k, v := range s.Metadata {
		metadata[k] = v
	}
	return payment.SessionStatus{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Status:        string(s.Status),
		Metadata:      metadata,
	}
}
