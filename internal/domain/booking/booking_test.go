package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

func TestNewBooking_NormalisesDayAndStartsPending(t *testing.T) {
	userID, campID := uuid.New(), uuid.New()
	day := time.Date(2026, 11, 3, 17, 45, 0, 0, time.FixedZone("ICT", 7*3600))

	bk, err := NewBooking(userID, campID, day, PaymentPending)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), bk.BookingDate())
	assert.Equal(t, PaymentPending, bk.PaymentStatus())
	assert.False(t, bk.IsPaid())
	assert.Equal(t, int64(1), bk.Version())
	assert.True(t, bk.IsOwnedBy(userID))
}

func TestNewBooking_Validation(t *testing.T) {
	day := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)

	_, err := NewBooking(uuid.Nil, uuid.New(), day, PaymentPending)
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))

	_, err = NewBooking(uuid.New(), uuid.Nil, day, PaymentPending)
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))

	_, err = NewBooking(uuid.New(), uuid.New(), time.Time{}, PaymentPending)
	assert.True(t, domain.IsKind(err, domain.KindInvalidDate))

	_, err = NewBooking(uuid.New(), uuid.New(), day, PaymentStatus("refunded"))
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))
}

func TestBooking_MarkPaidIsIdempotent(t *testing.T) {
	bk, err := NewBooking(uuid.New(), uuid.New(), time.Now(), PaymentPending)
	require.NoError(t, err)

	assert.True(t, bk.MarkPaid())
	assert.True(t, bk.IsPaid())
	assert.False(t, bk.MarkPaid(), "second call is a no-op")
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestBooking_CanBeManagedBy(t *testing.T) {
	owner := uuid.New()
	bk, err := NewBooking(owner, uuid.New(), time.Now(), PaymentPending)
	require.NoError(t, err)

	assert.True(t, bk.CanBeManagedBy(owner, false))
	assert.True(t, bk.CanBeManagedBy(uuid.New(), true))
	assert.False(t, bk.CanBeManagedBy(uuid.New(), false))
}

func TestBooking_Reschedule(t *testing.T) {
	bk, err := NewBooking(uuid.New(), uuid.New(), time.Now(), PaymentPending)
	require.NoError(t, err)

	require.NoError(t, bk.Reschedule(time.Date(2027, 1, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2027-01-02", FormatDay(bk.BookingDate()))

	err = bk.Reschedule(time.Time{})
	assert.True(t, domain.IsKind(err, domain.KindInvalidDate))
}

func TestParseBookingDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"calendar day", "2026-12-24", "2026-12-24"},
		{"utc timestamp", "2026-12-24T00:00:00.000Z", "2026-12-24"},
		{"offset keeps its own day", "2026-12-24T01:00:00+07:00", "2026-12-24"},
		{"local timestamp", "2026-12-24T18:30:00", "2026-12-24"},
		{"surrounding space", "  2026-12-24 ", "2026-12-24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBookingDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDay(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, raw := range []string{"", "tomorrow", "2026-13-40"} {
		_, err := ParseBookingDate(raw)
		assert.True(t, domain.IsKind(err, domain.KindInvalidDate), "raw=%q", raw)
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentPaid))
	assert.False(t, PaymentPaid.CanTransitionTo(PaymentPending))
	assert.True(t, PaymentPaid.IsTerminal())

	_, err := ParsePaymentStatus("unknown")
	assert.Error(t, err)
	s, err := ParsePaymentStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, s)
}

func TestLimitPolicy(t *testing.T) {
	now := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

	all := NewLimitPolicy(0, "")
	assert.Equal(t, DefaultMaxBookings, all.Max)
	assert.Nil(t, all.CountFrom(now))
	assert.False(t, all.Exceeded(2))
	assert.True(t, all.Exceeded(3))

	active := NewLimitPolicy(3, LimitScopeActive)
	from := active.CountFrom(now)
	require.NotNil(t, from)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), *from)

	_, err := ParseLimitScope("forever")
	assert.Error(t, err)
}
