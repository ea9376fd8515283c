// Package memstore keeps campgrounds, bookings and reviews in process
// memory. It backs STORE_DRIVER=memory and the service unit tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// Store holds every collection behind one lock.
type Store struct {
	mu          sync.RWMutex
	campgrounds map[uuid.UUID]campgroundRecord
	bookings    map[uuid.UUID]bookingRecord
	reviews     map[uuid.UUID]reviewRecord
}

type campgroundRecord struct {
	id            uuid.UUID
	details       campgroundDomain.Details
	averageRating float64
	reviewsCount  int64
	createdAt     time.Time
	updatedAt     time.Time
}

type bookingRecord struct {
	id            uuid.UUID
	userID        uuid.UUID
	campgroundID  uuid.UUID
	bookingDate   time.Time
	paymentStatus bookingDomain.PaymentStatus
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

type reviewRecord struct {
	id           uuid.UUID
	campgroundID uuid.UUID
	userID       uuid.UUID
	rating       int
	comment      string
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		campgrounds: make(map[uuid.UUID]campgroundRecord),
		bookings:    make(map[uuid.UUID]bookingRecord),
		reviews:     make(map[uuid.UUID]reviewRecord),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Campgrounds returns the campground repository view of the store.
func (s *Store) Campgrounds() *CampgroundRepository { return &CampgroundRepository{s: s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Reviews returns the review repository view of the store.
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s: s} }

// --- Campgrounds ---

// CampgroundRepository implements campground.CampgroundRepository.
type CampgroundRepository struct{ s *Store }

func (r *CampgroundRepository) FindByID(_ context.Context, id uuid.UUID) (*campgroundDomain.Campground, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.campgrounds[id]
	if !ok {
		return nil, domain.NewNotFoundError("campground", id.String())
	}
	return rec.toDomain(), nil
}

func (r *CampgroundRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*campgroundDomain.Campground, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[uuid.UUID]*campgroundDomain.Campground, len(ids))
	for _, id := range ids {
		if rec, ok := r.s.campgrounds[id]; ok {
			out[id] = rec.toDomain()
		}
	}
	return out, nil
}

func (r *CampgroundRepository) List(_ context.Context, page, limit int) ([]*campgroundDomain.Campground, int64, error) {
	r.s.mu.RLock()
	recs := make([]campgroundRecord, 0, len(r.s.campgrounds))
	for _, rec := range r.s.campgrounds {
		recs = append(recs, rec)
	}
	r.s.mu.RUnlock()

	total := int64(len(recs))
	sort.Slice(recs, func(i, j int) bool { return recs[i].createdAt.After(recs[j].createdAt) })
	recs = paginate(recs, page, limit)

	out := make([]*campgroundDomain.Campground, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, total, nil
}

func (r *CampgroundRepository) Save(_ context.Context, c *campgroundDomain.Campground) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.campgrounds[c.ID()] = newCampgroundRecord(c)
	return nil
}

func (r *CampgroundRepository) Update(_ context.Context, c *campgroundDomain.Campground) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.campgrounds[c.ID()]
	if !ok {
		return domain.NewNotFoundError("campground", c.ID().String())
	}
	rec.details = c.Details()
	rec.updatedAt = c.UpdatedAt()
	r.s.campgrounds[c.ID()] = rec
	return nil
}

func (r *CampgroundRepository) UpdateRating(_ context.Context, id uuid.UUID, rating campgroundDomain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.campgrounds[id]
	if !ok {
		return domain.NewNotFoundError("campground", id.String())
	}
	rec.averageRating = rating.AverageRating
	rec.reviewsCount = rating.ReviewsCount
	r.s.campgrounds[id] = rec
	return nil
}

func (r *CampgroundRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campgrounds[id]; !ok {
		return domain.NewNotFoundError("campground", id.String())
	}
	delete(r.s.campgrounds, id)
	return nil
}

func newCampgroundRecord(c *campgroundDomain.Campground) campgroundRecord {
	return campgroundRecord{
		id:            c.ID(),
		details:       c.Details(),
		averageRating: c.AverageRating(),
		reviewsCount:  c.ReviewsCount(),
		createdAt:     c.CreatedAt(),
		updatedAt:     c.UpdatedAt(),
	}
}

func (rec campgroundRecord) toDomain() *campgroundDomain.Campground {
	details := rec.details
	if details.Price != nil {
		p := *details.Price
		details.Price = &p
	}
	return campgroundDomain.Reconstruct(rec.id, details, rec.averageRating, rec.reviewsCount, rec.createdAt, rec.updatedAt)
}

// --- Bookings ---

// BookingRepository implements booking.BookingRepository.
type BookingRepository struct{ s *Store }

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return rec.toDomain(), nil
}

// FindByUserCampgroundDate returns the oldest booking for the user,
// campground and day. Ties on createdAt fall back to the id.
func (r *BookingRepository) FindByUserCampgroundDate(_ context.Context, userID, campgroundID uuid.UUID, day time.Time) (*bookingDomain.Booking, error) {
	day = bookingDomain.NormalizeDay(day)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var oldest *bookingRecord
	for id := range r.s.bookings {
		rec := r.s.bookings[id]
		if rec.userID != userID || rec.campgroundID != campgroundID || !rec.bookingDate.Equal(day) {
			continue
		}
		if oldest == nil || rec.createdAt.Before(oldest.createdAt) ||
			(rec.createdAt.Equal(oldest.createdAt) && rec.id.String() < oldest.id.String()) {
			oldest = &rec
		}
	}
	if oldest == nil {
		return nil, domain.NewNotFoundError("booking", bookingDomain.FormatDay(day))
	}
	return oldest.toDomain(), nil
}

func (r *BookingRepository) List(_ context.Context, filter bookingDomain.Filter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.s.mu.RLock()
	recs := make([]bookingRecord, 0)
	for _, rec := range r.s.bookings {
		if filter.UserID != nil && rec.userID != *filter.UserID {
			continue
		}
		if filter.CampgroundID != nil && rec.campgroundID != *filter.CampgroundID {
			continue
		}
		recs = append(recs, rec)
	}
	r.s.mu.RUnlock()

	total := int64(len(recs))
	sort.Slice(recs, func(i, j int) bool { return recs[i].createdAt.After(recs[j].createdAt) })
	recs = paginate(recs, page, limit)

	out := make([]*bookingDomain.Booking, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, total, nil
}

func (r *BookingRepository) CountByUser(_ context.Context, userID uuid.UUID, from *time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, rec := range r.s.bookings {
		if rec.userID != userID {
			continue
		}
		if from != nil && rec.bookingDate.Before(*from) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *BookingRepository) ExistsForCampground(_ context.Context, userID, campgroundID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.bookings {
		if rec.userID == userID && rec.campgroundID == campgroundID {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepository) CountByPaymentStatus(_ context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, rec := range r.s.bookings {
		counts[rec.paymentStatus.String()]++
	}
	return counts, nil
}

func (r *BookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bookings[bk.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.s.bookings[bk.ID()] = newBookingRecord(bk)
	return nil
}

func (r *BookingRepository) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.bookings[bk.ID()]
	if !ok || rec.version != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.s.bookings[bk.ID()] = newBookingRecord(bk)
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return domain.NewNotFoundError("booking", id.String())
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *BookingRepository) DeleteByCampground(_ context.Context, campgroundID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.bookings {
		if rec.campgroundID == campgroundID {
			delete(r.s.bookings, id)
		}
	}
	return nil
}

func newBookingRecord(bk *bookingDomain.Booking) bookingRecord {
	return bookingRecord{
		id:            bk.ID(),
		userID:        bk.UserID(),
		campgroundID:  bk.CampgroundID(),
		bookingDate:   bk.BookingDate(),
		paymentStatus: bk.PaymentStatus(),
		version:       bk.Version(),
		createdAt:     bk.CreatedAt(),
		updatedAt:     bk.UpdatedAt(),
	}
}

func (rec bookingRecord) toDomain() *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		rec.id, rec.userID, rec.campgroundID,
		rec.bookingDate, rec.paymentStatus,
		rec.version, rec.createdAt, rec.updatedAt,
	)
}

// --- Reviews ---

// ReviewRepository implements review.ReviewRepository. Save enforces one
// review per (campground, user).
type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) FindByID(_ context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.reviews[id]
	if !ok {
		return nil, domain.NewNotFoundError("review", id.String())
	}
	return rec.toDomain(), nil
}

func (r *ReviewRepository) List(_ context.Context, campgroundID *uuid.UUID) ([]*reviewDomain.Review, error) {
	r.s.mu.RLock()
	recs := make([]reviewRecord, 0)
	for _, rec := range r.s.reviews {
		if campgroundID != nil && rec.campgroundID != *campgroundID {
			continue
		}
		recs = append(recs, rec)
	}
	r.s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].createdAt.After(recs[j].createdAt) })
	out := make([]*reviewDomain.Review, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, nil
}

func (r *ReviewRepository) Save(_ context.Context, rv *reviewDomain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.reviews {
		if rec.campgroundID == rv.CampgroundID() && rec.userID == rv.UserID() {
			return domain.NewDuplicateReviewError("You have already submitted a review for this campground")
		}
	}
	r.s.reviews[rv.ID()] = newReviewRecord(rv)
	return nil
}

func (r *ReviewRepository) Update(_ context.Context, rv *reviewDomain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID()]; !ok {
		return domain.NewNotFoundError("review", rv.ID().String())
	}
	r.s.reviews[rv.ID()] = newReviewRecord(rv)
	return nil
}

func (r *ReviewRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return domain.NewNotFoundError("review", id.String())
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepository) DeleteByCampground(_ context.Context, campgroundID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.reviews {
		if rec.campgroundID == campgroundID {
			delete(r.s.reviews, id)
		}
	}
	return nil
}

func (r *ReviewRepository) StatsForCampground(_ context.Context, campgroundID uuid.UUID) (reviewDomain.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum, count int64
	for _, rec := range r.s.reviews {
		if rec.campgroundID == campgroundID {
			sum += int64(rec.rating)
			count++
		}
	}
	if count == 0 {
		return reviewDomain.Stats{}, nil
	}
	return reviewDomain.Stats{Mean: float64(sum) / float64(count), Count: count}, nil
}

func newReviewRecord(rv *reviewDomain.Review) reviewRecord {
	return reviewRecord{
		id:           rv.ID(),
		campgroundID: rv.CampgroundID(),
		userID:       rv.UserID(),
		rating:       rv.Rating(),
		comment:      rv.Comment(),
		createdAt:    rv.CreatedAt(),
		updatedAt:    rv.UpdatedAt(),
	}
}

func (rec reviewRecord) toDomain() *reviewDomain.Review {
	return reviewDomain.Reconstruct(rec.id, rec.campgroundID, rec.userID, rec.rating, rec.comment, rec.createdAt, rec.updatedAt)
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
