package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
)

type bookingDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user"`
	CampgroundID  string    `bson:"campground"`
	BookingDate   time.Time `bson:"bookingDate"`
	PaymentStatus string    `bson:"paymentStatus"`
	Version       int64     `bson:"version"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// BookingRepository implements booking.BookingRepository on MongoDB.
type BookingRepository struct {
	coll *mongo.Collection
}

// FindByID retrieves a booking by its ID.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var doc bookingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return doc.toDomain()
}

// FindByUserCampgroundDate retrieves the oldest booking a user holds for a campground on a day.
func (r *BookingRepository) FindByUserCampgroundDate(ctx context.Context, userID, campgroundID uuid.UUID, day time.Time) (*bookingDomain.Booking, error) {
	day = bookingDomain.NormalizeDay(day)
	filter := bson.M{
		"user":        userID.String(),
		"campground":  campgroundID.String(),
		"bookingDate": day,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	var doc bookingDoc
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("booking", bookingDomain.FormatDay(day))
		}
		return nil, fmt.Errorf("failed to find booking by user, campground and date: %w", err)
	}
	return doc.toDomain()
}

// List retrieves a page of bookings matching the filter, newest first.
func (r *BookingRepository) List(ctx context.Context, filter bookingDomain.Filter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user"] = filter.UserID.String()
	}
	if filter.CampgroundID != nil {
		query["campground"] = filter.CampgroundID.String()
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	cur, err := r.coll.Find(ctx, query, pageOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(docs))
	for i := range docs {
		bk, err := docs[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByUser counts a user's bookings, optionally from a day onwards.
func (r *BookingRepository) CountByUser(ctx context.Context, userID uuid.UUID, from *time.Time) (int64, error) {
	query := bson.M{"user": userID.String()}
	if from != nil {
		query["bookingDate"] = bson.M{"$gte": bookingDomain.NormalizeDay(*from)}
	}
	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return n, nil
}

// ExistsForCampground reports whether the user has booked the campground.
func (r *BookingRepository) ExistsForCampground(ctx context.Context, userID, campgroundID uuid.UUID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx,
		bson.M{"user": userID.String(), "campground": campgroundID.String()},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check campground booking: %w", err)
	}
	return n > 0, nil
}

// CountByPaymentStatus counts bookings grouped by payment status.
func (r *BookingRepository) CountByPaymentStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$paymentStatus"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count by payment status: %w", err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode payment status counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save inserts a new booking.
func (r *BookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if _, err := r.coll.InsertOne(ctx, toBookingDoc(bk)); err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update matches on the previous version so concurrent writers conflict.
func (r *BookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	doc := toBookingDoc(bk)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "version": bk.Version() - 1},
		bson.M{"$set": bson.M{
			"bookingDate":   doc.BookingDate,
			"paymentStatus": doc.PaymentStatus,
			"version":       doc.Version,
			"updatedAt":     doc.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Delete removes a booking by its ID.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFoundError("booking", id.String())
	}
	return nil
}

// DeleteByCampground removes every booking of a campground.
func (r *BookingRepository) DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"campground": campgroundID.String()}); err != nil {
		return fmt.Errorf("failed to delete campground bookings: %w", err)
	}
	return nil
}

func toBookingDoc(bk *bookingDomain.Booking) bookingDoc {
	return bookingDoc{
		ID:            bk.ID().String(),
		UserID:        bk.UserID().String(),
		CampgroundID:  bk.CampgroundID().String(),
		BookingDate:   bk.BookingDate(),
		PaymentStatus: bk.PaymentStatus().String(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func (d bookingDoc) toDomain() (*bookingDomain.Booking, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking user %q: %w", d.UserID, err)
	}
	campgroundID, err := uuid.Parse(d.CampgroundID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking campground %q: %w", d.CampgroundID, err)
	}
	status, err := bookingDomain.ParsePaymentStatus(d.PaymentStatus)
	if err != nil {
		return nil, err
	}
	return bookingDomain.ReconstructBooking(
		id, userID, campgroundID,
		bookingDomain.NormalizeDay(d.BookingDate.UTC()),
		status, d.Version,
		d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	), nil
}
