package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campground-booking/service-campground/internal/common/domain"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
)

func campDetails(name string) campgroundDomain.Details {
	return campgroundDomain.Details{
		Name:       name,
		Address:    "88 Lake Road",
		District:   "Mueang",
		Province:   "Kanchanaburi",
		PostalCode: "71000",
		Region:     "West",
		Price:      price(650),
	}
}

func TestCampgroundService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.campgrounds.CreateCampground(ctx, campDetails("Erawan Falls Camp"))
	require.NoError(t, err)
	assert.Equal(t, "Erawan Falls Camp", created.Name)

	got, err := f.campgrounds.GetCampground(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	details := campDetails("Erawan Riverside")
	details.Price = nil
	updated, err := f.campgrounds.UpdateCampground(ctx, created.ID, details)
	require.NoError(t, err)
	assert.Equal(t, "Erawan Riverside", updated.Name)
	assert.Nil(t, updated.Price)

	_, err = f.campgrounds.UpdateCampground(ctx, created.ID, campgroundDomain.Details{})
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))

	_, err = f.campgrounds.CreateCampground(ctx, campDetails("Second"))
	require.NoError(t, err)
	page, err := f.campgrounds.ListCampgrounds(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasNext())
}

func TestCampgroundService_DeleteCascades(t *testing.T) {
	f := newFixture(t, withoutBookingRequirement())
	camp := f.seedCampground(t, price(500))
	keep := f.seedCampground(t, price(500))
	req := user()
	ctx := context.Background()

	_, err := f.bookings.CreateBooking(ctx, req, camp.ID(), futureDay)
	require.NoError(t, err)
	kept, err := f.bookings.CreateBooking(ctx, req, keep.ID(), futureDay)
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, req, camp.ID(), CreateReviewRequest{Rating: 4, Comment: "Good"})
	require.NoError(t, err)

	require.NoError(t, f.campgrounds.DeleteCampground(ctx, camp.ID()))

	_, err = f.campgrounds.GetCampground(ctx, camp.ID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	list, err := f.bookings.ListBookings(ctx, req, nil, 1, 25)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, kept.ID, list.Items[0].ID)

	reviews, err := f.store.Reviews().List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	err = f.campgrounds.DeleteCampground(ctx, camp.ID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
