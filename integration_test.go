//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/domain"
	campgroundEvents "github.com/campground-booking/service-campground/internal/events"
)

const bookingDay = "2099-06-01"

// TestCheckoutCompleted_FinalizesBooking verifies that a checkout completion
// published to payment.events produces exactly one paid booking and a
// booking.paid event, even when delivered twice.
func TestCheckoutCompleted_FinalizesBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	r := gormRepos(infra.DB)
	stack := setupStack(t, r, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	camp := seedCampground(t, r, "Doi Inthanon Camp")
	user := application.Requester{UserID: uuid.New(), Role: auth.RoleUser, Email: "camper@example.com"}

	checkout, err := stack.Payments.InitiateCheckout(context.Background(), user, application.CheckoutRequest{
		CampgroundID: camp.ID().String(),
		BookingDate:  bookingDay,
	})
	require.NoError(t, err)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := campgroundEvents.CheckoutCompletedEvent{SessionID: checkout.SessionID}
	publishTestEvent(t, infra.KafkaBrokers, campgroundEvents.TopicPaymentEvents,
		"payment-bridge", campgroundEvents.CheckoutCompleted, evt)
	publishTestEvent(t, infra.KafkaBrokers, campgroundEvents.TopicPaymentEvents,
		"payment-bridge", campgroundEvents.CheckoutCompleted, evt)

	model := waitForPaidBooking(t, infra.DB, user.UserID, 15*time.Second)
	assert.Equal(t, camp.ID(), model.CampgroundID)

	ce := consumeOneEvent(t, infra.KafkaBrokers, application.TopicBookingEvents,
		application.BookingPaid, 15*time.Second)
	var paid application.BookingEvent
	require.NoError(t, ce.ParseData(&paid))
	assert.Equal(t, user.UserID, paid.UserID)

	// The browser return path finds the booking the consumer wrote.
	result, err := stack.Payments.FinalizeBooking(context.Background(), user, checkout.SessionID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyExists)

	var count int64
	require.NoError(t, infra.DB.Table("bookings").Where("user_id = ?", user.UserID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_BookingLifecycle(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	exerciseBookingLifecycle(t, gormRepos(db))
}

func TestMongo_BookingLifecycle(t *testing.T) {
	store, cleanup := setupMongo(t)
	defer cleanup()

	exerciseBookingLifecycle(t, mongoRepos(store))
}

func TestPostgres_ReviewAggregate(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	exerciseReviewAggregate(t, gormRepos(db))
}

func TestMongo_ReviewAggregate(t *testing.T) {
	store, cleanup := setupMongo(t)
	defer cleanup()

	exerciseReviewAggregate(t, mongoRepos(store))
}

// exerciseBookingLifecycle runs the cap, update and delete flow against one backend.
func exerciseBookingLifecycle(t *testing.T, r repos) {
	t.Helper()
	ctx := context.Background()
	stack := setupStack(t, r, nil)
	camp := seedCampground(t, r, "Khao Yai Camp")
	user := application.Requester{UserID: uuid.New(), Role: auth.RoleUser}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []application.BookingDTO
		limited int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bk, err := stack.Bookings.CreateBooking(ctx, user, camp.ID(), bookingDay)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if domain.IsKind(err, domain.KindLimitExceeded) {
					limited++
				}
				return
			}
			created = append(created, *bk)
		}()
	}
	wg.Wait()
	require.Len(t, created, 3)
	assert.Equal(t, 3, limited)

	updated, err := stack.Bookings.UpdateBooking(ctx, user, created[0].ID, application.UpdateBookingRequest{BookingDate: "2099-06-02"})
	require.NoError(t, err)
	assert.Equal(t, "2099-06-02", updated.BookingDate[:10])
	assert.Equal(t, created[0].Version+1, updated.Version)

	require.NoError(t, stack.Bookings.DeleteBooking(ctx, user, created[1].ID))
	_, err = stack.Bookings.GetBooking(ctx, user, created[1].ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	page, err := stack.Bookings.ListBookings(ctx, user, nil, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = stack.Bookings.CreateBooking(ctx, user, camp.ID(), bookingDay)
	require.NoError(t, err, "deleting a booking frees a slot")
}

// exerciseReviewAggregate checks duplicate detection and the stored rating against one backend.
func exerciseReviewAggregate(t *testing.T, r repos) {
	t.Helper()
	ctx := context.Background()
	stack := setupStack(t, r, nil)
	camp := seedCampground(t, r, "Phu Kradueng Camp")

	reviewers := []struct {
		rating int
		user   application.Requester
	}{
		{5, application.Requester{UserID: uuid.New(), Role: auth.RoleUser}},
		{4, application.Requester{UserID: uuid.New(), Role: auth.RoleUser}},
		{2, application.Requester{UserID: uuid.New(), Role: auth.RoleUser}},
	}
	var ids []uuid.UUID
	for _, rv := range reviewers {
		_, err := stack.Bookings.CreateBooking(ctx, rv.user, camp.ID(), bookingDay)
		require.NoError(t, err)
		dto, err := stack.Reviews.CreateReview(ctx, rv.user, camp.ID(), application.CreateReviewRequest{Rating: rv.rating, Comment: "Cold nights"})
		require.NoError(t, err)
		ids = append(ids, dto.ID)
	}

	_, err := stack.Reviews.CreateReview(ctx, reviewers[0].user, camp.ID(), application.CreateReviewRequest{Rating: 1, Comment: "Again"})
	assert.True(t, domain.IsKind(err, domain.KindDuplicateReview))

	stored, err := r.campgrounds.FindByID(ctx, camp.ID())
	require.NoError(t, err)
	assert.Equal(t, 3.67, stored.AverageRating())
	assert.Equal(t, int64(3), stored.ReviewsCount())

	require.NoError(t, stack.Reviews.DeleteReview(ctx, reviewers[2].user, ids[2]))
	stored, err = r.campgrounds.FindByID(ctx, camp.ID())
	require.NoError(t, err)
	assert.Equal(t, 4.5, stored.AverageRating())
	assert.Equal(t, int64(2), stored.ReviewsCount())
}
