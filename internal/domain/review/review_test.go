package review

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

func TestNewReview(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), 4, "  Lovely lake view  ")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating())
	assert.Equal(t, "Lovely lake view", r.Comment())
}

func TestNewReview_Validation(t *testing.T) {
	camp, user := uuid.New(), uuid.New()
	tests := []struct {
		name    string
		camp    uuid.UUID
		user    uuid.UUID
		rating  int
		comment string
	}{
		{"missing campground", uuid.Nil, user, 3, "ok"},
		{"missing user", camp, uuid.Nil, 3, "ok"},
		{"rating too low", camp, user, 0, "ok"},
		{"rating too high", camp, user, 6, "ok"},
		{"blank comment", camp, user, 3, "   "},
		{"comment too long", camp, user, 3, strings.Repeat("x", MaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReview(tt.camp, tt.user, tt.rating, tt.comment)
			assert.True(t, domain.IsKind(err, domain.KindInvalidRequest), "got %v", err)
		})
	}
}

func TestReview_EditPartial(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), 2, "meh")
	require.NoError(t, err)

	rating := 5
	require.NoError(t, r.Edit(&rating, nil))
	assert.Equal(t, 5, r.Rating())
	assert.Equal(t, "meh", r.Comment())

	comment := "changed my mind"
	require.NoError(t, r.Edit(nil, &comment))
	assert.Equal(t, "changed my mind", r.Comment())

	bad := 9
	err = r.Edit(&bad, &comment)
	assert.Error(t, err)
	assert.Equal(t, 5, r.Rating(), "failed edit leaves review unchanged")
}

func TestReview_CanBeManagedBy(t *testing.T) {
	owner := uuid.New()
	r, err := NewReview(uuid.New(), owner, 3, "fine")
	require.NoError(t, err)

	assert.True(t, r.CanBeManagedBy(owner, false))
	assert.True(t, r.CanBeManagedBy(uuid.New(), true))
	assert.False(t, r.CanBeManagedBy(uuid.New(), false))
}
