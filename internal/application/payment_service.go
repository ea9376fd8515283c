package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	"github.com/campground-booking/service-campground/internal/domain/payment"
)

// DefaultPaymentTimeout bounds each call to the payment processor.
const DefaultPaymentTimeout = 10 * time.Second

// fallbackImageFormat is used for campgrounds without an image.
const fallbackImageFormat = "https://source.unsplash.com/featured/?camping,%s"

// PaymentConfig configures checkout sessions.
type PaymentConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// CheckoutRequest is the input of InitiateCheckout.
type CheckoutRequest struct {
	CampgroundID  string `json:"campgroundId"`
	BookingDate   string `json:"bookingDate"`
	CustomerEmail string `json:"customerEmail"`
}

// CheckoutDTO points the client at the hosted checkout page.
type CheckoutDTO struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// FinalizeRequest is the input of FinalizeBooking.
type FinalizeRequest struct {
	SessionID string `json:"sessionId"`
}

// FinalizeResultDTO is the paid booking plus whether it existed before.
type FinalizeResultDTO struct {
	Booking       BookingDTO `json:"booking"`
	AlreadyExists bool       `json:"alreadyExists"`
}

// PaymentService starts hosted checkouts and reconciles completed
// payments back onto bookings.
type PaymentService struct {
	gateway     payment.Gateway
	bookings    bookingDomain.BookingRepository
	campgrounds campgroundDomain.CampgroundRepository
	locks       *UserLocks
	publisher   EventPublisher
	cfg         PaymentConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	gateway payment.Gateway,
	bookings bookingDomain.BookingRepository,
	campgrounds campgroundDomain.CampgroundRepository,
	locks *UserLocks,
	publisher EventPublisher,
	cfg PaymentConfig,
	logger *zap.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	if cfg.Currency == "" {
		cfg.Currency = domain.CurrencyTHB
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPaymentTimeout
	}
	return &PaymentService{
		gateway:     gateway,
		bookings:    bookings,
		campgrounds: campgrounds,
		locks:       locks,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// InitiateCheckout creates a hosted checkout session for one night at a
// campground and returns where to redirect the client.
func (s *PaymentService) InitiateCheckout(ctx context.Context, req Requester, input CheckoutRequest) (*CheckoutDTO, error) {
	if strings.TrimSpace(input.CampgroundID) == "" || strings.TrimSpace(input.BookingDate) == "" {
		return nil, domain.NewValidationError("campgroundId and bookingDate are required")
	}
	campgroundID, err := uuid.Parse(strings.TrimSpace(input.CampgroundID))
	if err != nil {
		return nil, domain.NewValidationError("invalid campgroundId")
	}
	day, err := parseBookableDay(input.BookingDate, s.now())
	if err != nil {
		return nil, err
	}

	camp, err := s.campgrounds.FindByID(ctx, campgroundID)
	if err != nil {
		return nil, err
	}
	if camp.Price() == nil {
		return nil, domain.NewConfigurationError("Campground price is not configured")
	}
	amount, err := payment.MinorUnits(*camp.Price())
	if err != nil {
		return nil, domain.NewConfigurationError("Campground price is invalid")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(input.CustomerEmail)
	}

	date := bookingDomain.FormatDay(day)
	urls := payment.BuildRedirectURLs(s.cfg.SuccessURL, s.cfg.CancelURL, camp.ID().String())
	checkout := payment.CheckoutRequest{
		Currency: s.cfg.Currency,
		LineItem: payment.LineItem{
			Name:        camp.Name() + " booking",
			Description: lineItemDescription(camp, date),
			ImageURL:    lineItemImage(camp),
			UnitAmount:  amount,
			Quantity:    1,
		},
		SuccessURL: urls.Success,
		CancelURL:  urls.Cancel,
		Metadata: map[string]string{
			payment.MetaCampgroundID:   camp.ID().String(),
			payment.MetaBookingDate:    date,
			payment.MetaCampgroundName: camp.Name(),
			payment.MetaUserID:         req.UserID.String(),
		},
		CustomerEmail: email,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	session, err := s.gateway.CreateCheckoutSession(callCtx, checkout)
	if err != nil {
		if domain.IsKind(err, domain.KindConfiguration) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to create checkout session", err)
	}

	s.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", req.UserID.String()),
		zap.String("campground_id", camp.ID().String()),
		zap.Int64("amount", amount),
	)
	return &CheckoutDTO{SessionID: session.ID, URL: session.URL}, nil
}

// FinalizeBooking reconciles a paid checkout session for the caller.
// Repeated calls converge on the same paid booking, keyed by
// (user, campground, day) rather than by session.
func (s *PaymentService) FinalizeBooking(ctx context.Context, req Requester, sessionID string) (*FinalizeResultDTO, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.NewValidationError("sessionId is required")
	}
	caller := req.UserID
	return s.reconcile(ctx, sessionID, &caller)
}

// ReconcileSession reconciles a paid session reported by the processor
// out of band. The session metadata alone identifies the user.
func (s *PaymentService) ReconcileSession(ctx context.Context, sessionID string) (*FinalizeResultDTO, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("sessionId is required")
	}
	return s.reconcile(ctx, sessionID, nil)
}

func (s *PaymentService) reconcile(ctx context.Context, sessionID string, caller *uuid.UUID) (*FinalizeResultDTO, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	session, err := s.gateway.RetrieveSession(callCtx, sessionID)
	cancel()
	if err != nil {
		if domain.IsKind(err, domain.KindConfiguration) {
			return nil, err
		}
		return nil, domain.NewInvalidSessionError("Invalid checkout session", err)
	}
	if !session.IsPaid() {
		return nil, domain.NewPaymentIncompleteError("Payment has not been completed")
	}

	meta := session.Metadata
	rawCampground := strings.TrimSpace(meta[payment.MetaCampgroundID])
	rawDate := strings.TrimSpace(meta[payment.MetaBookingDate])
	rawUser := strings.TrimSpace(meta[payment.MetaUserID])
	if rawCampground == "" || rawDate == "" || rawUser == "" {
		return nil, domain.NewIncompleteMetadataError("Checkout session is missing booking details")
	}
	if caller != nil && rawUser != caller.String() {
		return nil, domain.NewForbiddenError("Checkout session belongs to another user")
	}

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return nil, domain.NewIncompleteMetadataError("Checkout session has an invalid user")
	}
	campgroundID, err := uuid.Parse(rawCampground)
	if err != nil {
		return nil, domain.NewIncompleteMetadataError("Checkout session has an invalid campground")
	}
	day, err := bookingDomain.ParseBookingDate(rawDate)
	if err != nil {
		return nil, err
	}

	camp, err := s.campgrounds.FindByID(ctx, campgroundID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	bk, alreadyExists, settled, err := s.markPaid(ctx, userID, campgroundID, day)
	unlock()
	if err != nil {
		return nil, err
	}
	if settled {
		publishBookingEvent(ctx, s.publisher, s.logger, BookingPaid, bk)
	}

	s.logger.Info("booking finalized",
		zap.String("session_id", sessionID),
		zap.String("booking_id", bk.ID().String()),
		zap.Bool("already_exists", alreadyExists),
	)
	return &FinalizeResultDTO{
		Booking:       toBookingDTO(bk, camp),
		AlreadyExists: alreadyExists,
	}, nil
}

// markPaid creates a paid booking or settles the existing one. settled
// reports whether this call changed anything.
func (s *PaymentService) markPaid(ctx context.Context, userID, campgroundID uuid.UUID, day time.Time) (bk *bookingDomain.Booking, alreadyExists, settled bool, err error) {
	existing, err := s.bookings.FindByUserCampgroundDate(ctx, userID, campgroundID, day)
	switch {
	case err == nil:
		if !existing.MarkPaid() {
			return existing, true, false, nil
		}
		existing.IncrementVersion()
		if err := s.bookings.Update(ctx, existing); err != nil {
			return nil, false, false, err
		}
		return existing, true, true, nil
	case domain.IsKind(err, domain.KindNotFound):
	default:
		return nil, false, false, fmt.Errorf("failed to look up booking: %w", err)
	}

	bk, err = bookingDomain.NewBooking(userID, campgroundID, day, bookingDomain.PaymentPaid)
	if err != nil {
		return nil, false, false, err
	}
	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, false, false, fmt.Errorf("failed to save booking: %w", err)
	}
	return bk, false, true, nil
}

func lineItemDescription(camp *campgroundDomain.Campground, date string) string {
	d := camp.Details()
	parts := make([]string, 0, 2)
	for _, p := range []string{d.District, d.Province} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Booking on " + date
	}
	return strings.Join(parts, ", ") + " on " + date
}

func lineItemImage(camp *campgroundDomain.Campground) string {
	if img := camp.Details().Image; img != "" {
		return img
	}
	return fmt.Sprintf(fallbackImageFormat, strings.ReplaceAll(strings.ToLower(camp.Details().Province), " ", "-"))
}
