package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/kafka"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	"github.com/campground-booking/service-campground/internal/domain/payment"
	"github.com/campground-booking/service-campground/internal/repository/memstore"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

const futureDay = "2026-11-01"

type fakeGateway struct {
	mu          sync.Mutex
	seq         int
	requests    []payment.CheckoutRequest
	sessions    map[string]payment.SessionStatus
	createErr   error
	retrieveErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]payment.SessionStatus)}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return payment.CheckoutSession{}, g.createErr
	}
	g.seq++
	id := fmt.Sprintf("cs_test_%d", g.seq)
	g.requests = append(g.requests, req)
	g.sessions[id] = payment.SessionStatus{ID: id, PaymentStatus: "unpaid", Status: "open", Metadata: req.Metadata}
	return payment.CheckoutSession{ID: id, URL: "https://checkout.example.com/pay/" + id}, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, sessionID string) (payment.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retrieveErr != nil {
		return payment.SessionStatus{}, g.retrieveErr
	}
	s, ok := g.sessions[sessionID]
	if !ok {
		return payment.SessionStatus{}, errors.New("no such checkout.session: " + sessionID)
	}
	return s, nil
}

func (g *fakeGateway) put(s payment.SessionStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.ID] = s
}

func (g *fakeGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.sessions[sessionID]
	s.PaymentStatus = "paid"
	s.Status = "complete"
	g.sessions[sessionID] = s
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store       *memstore.Store
	gateway     *fakeGateway
	publisher   *recordingPublisher
	aggregator  *RatingAggregator
	bookings    *BookingService
	payments    *PaymentService
	reviews     *ReviewService
	campgrounds *CampgroundService
}

type fixtureOptions struct {
	scope           bookingDomain.LimitScope
	requiresBooking bool
}

func newFixture(t *testing.T, opts ...func(*fixtureOptions)) *fixture {
	t.Helper()
	o := fixtureOptions{scope: bookingDomain.LimitScopeAll, requiresBooking: true}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zap.NewNop()
	store := memstore.New()
	gateway := newFakeGateway()
	publisher := &recordingPublisher{}
	locks := NewUserLocks()

	aggregator := NewRatingAggregator(store.Reviews(), store.Campgrounds(), logger)
	bookings := NewBookingService(store.Bookings(), store.Campgrounds(),
		bookingDomain.NewLimitPolicy(3, o.scope), locks, publisher, logger)
	bookings.now = func() time.Time { return fixedNow }
	payments := NewPaymentService(gateway, store.Bookings(), store.Campgrounds(), locks, publisher,
		PaymentConfig{}, logger)
	payments.now = func() time.Time { return fixedNow }

	return &fixture{
		store:       store,
		gateway:     gateway,
		publisher:   publisher,
		aggregator:  aggregator,
		bookings:    bookings,
		payments:    payments,
		reviews:     NewReviewService(store.Reviews(), store.Campgrounds(), store.Bookings(), aggregator, o.requiresBooking, logger),
		campgrounds: NewCampgroundService(store.Campgrounds(), store.Bookings(), store.Reviews(), logger),
	}
}

func withScope(scope bookingDomain.LimitScope) func(*fixtureOptions) {
	return func(o *fixtureOptions) { o.scope = scope }
}

func withoutBookingRequirement() func(*fixtureOptions) {
	return func(o *fixtureOptions) { o.requiresBooking = false }
}

func (f *fixture) seedCampground(t *testing.T, nightly *float64) *campgroundDomain.Campground {
	t.Helper()
	c, err := campgroundDomain.NewCampground(campgroundDomain.Details{
		Name:       "Doi Inthanon Camp",
		Address:    "119 Moo 3",
		District:   "Chom Thong",
		Province:   "Chiang Mai",
		PostalCode: "50160",
		Region:     "North",
		Price:      nightly,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Campgrounds().Save(context.Background(), c))
	return c
}

func (f *fixture) seedBooking(t *testing.T, userID, campgroundID uuid.UUID, day time.Time, status bookingDomain.PaymentStatus) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(userID, campgroundID, day, status)
	require.NoError(t, err)
	require.NoError(t, f.store.Bookings().Save(context.Background(), bk))
	return bk
}

func user() Requester {
	return Requester{UserID: uuid.New(), Role: auth.RoleUser, Email: "camper@example.com"}
}

func admin() Requester {
	return Requester{UserID: uuid.New(), Role: auth.RoleAdmin, Email: "admin@example.com"}
}

func price(v float64) *float64 { return &v }

// lockCheckingPublisher records, for each event, whether the user's lock
// could be taken while the event was being published.
type lockCheckingPublisher struct {
	locks  *UserLocks
	userID uuid.UUID

	mu   sync.Mutex
	free []bool
}

func (p *lockCheckingPublisher) PublishEvent(_ context.Context, _ string, _ kafka.CloudEvent) error {
	acquired := make(chan struct{})
	go func() {
		unlock := p.locks.Lock(p.userID)
		unlock()
		close(acquired)
	}()

	free := true
	select {
	case <-acquired:
	case <-time.After(200 * time.Millisecond):
		free = false
	}

	p.mu.Lock()
	p.free = append(p.free, free)
	p.mu.Unlock()
	return nil
}

func (p *lockCheckingPublisher) results() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.free...)
}
