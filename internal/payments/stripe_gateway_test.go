package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
	"github.com/campground-booking/service-campground/internal/domain/payment"
)

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway("  ", zap.NewNop())
	assert.Error(t, err)

	g, err := NewStripeGateway("sk_test_123", zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, g.sc.CheckoutSessions)
}

func TestCheckoutParams(t *testing.T) {
	req := payment.CheckoutRequest{
		Currency: "THB",
		LineItem: payment.LineItem{
			Name:        "Doi Inthanon Camp booking",
			Description: "Chom Thong, Chiang Mai on 2026-11-01",
			ImageURL:    "https://img.example.com/camp.jpg",
			UnitAmount:  78800,
			Quantity:    1,
		},
		SuccessURL:    "https://app.example.com/my-bookings?status=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://app.example.com/book/abc?status=cancelled",
		CustomerEmail: "camper@example.com",
		Metadata:      map[string]string{payment.MetaUserID: "u-1", payment.MetaBookingDate: "2026-11-01"},
	}

	params := checkoutParams(req)

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "book", *params.SubmitType)
	assert.Equal(t, req.SuccessURL, *params.SuccessURL)
	assert.Equal(t, req.CancelURL, *params.CancelURL)
	assert.Equal(t, "camper@example.com", *params.CustomerEmail)
	require.Len(t, params.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *params.PaymentMethodTypes[0])

	require.Len(t, params.LineItems, 1)
	li := params.LineItems[0]
	assert.Equal(t, int64(1), *li.Quantity)
	assert.Equal(t, "thb", *li.PriceData.Currency)
	assert.Equal(t, int64(78800), *li.PriceData.UnitAmount)
	assert.Equal(t, "Doi Inthanon Camp booking", *li.PriceData.ProductData.Name)
	require.Len(t, li.PriceData.ProductData.Images, 1)
	assert.Equal(t, "https://img.example.com/camp.jpg", *li.PriceData.ProductData.Images[0])

	assert.Equal(t, "u-1", params.Metadata[payment.MetaUserID])
	assert.Equal(t, "2026-11-01", params.Metadata[payment.MetaBookingDate])
}

func TestCheckoutParams_OptionalFields(t *testing.T) {
	params := checkoutParams(payment.CheckoutRequest{
		Currency: "thb",
		LineItem: payment.LineItem{Name: "Camp booking", UnitAmount: 100},
	})

	assert.Nil(t, params.CustomerEmail)
	assert.Nil(t, params.LineItems[0].PriceData.ProductData.Description)
	assert.Empty(t, params.LineItems[0].PriceData.ProductData.Images)
	assert.Equal(t, int64(1), *params.LineItems[0].Quantity)
}

func TestToSessionStatus(t *testing.T) {
	s := &stripe.CheckoutSession{
		ID:            "cs_test_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Status:        stripe.CheckoutSessionStatusComplete,
		Metadata:      map[string]string{payment.MetaCampgroundID: "c-1"},
	}

	st := toSessionStatus(s)

	assert.Equal(t, "cs_test_1", st.ID)
	assert.True(t, st.IsPaid())
	assert.Equal(t, "c-1", st.Metadata[payment.MetaCampgroundID])
}

func TestDisabledGateway(t *testing.T) {
	var g payment.Gateway = DisabledGateway{}

	_, err := g.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	_, err = g.RetrieveSession(context.Background(), "cs_test_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
