package booking

import (
	"strings"
	"time"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

// DateLayout is the wire format of a booking day.
const DateLayout = "2006-01-02"

var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseBookingDate accepts a calendar day or a timestamp and returns the
// day it names, normalised to UTC midnight. Timestamps keep the calendar
// day of their own offset.
func ParseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.NewInvalidDateError("booking date is required")
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return NormalizeDay(t), nil
		}
	}
	return time.Time{}, domain.NewInvalidDateError("Invalid booking date")
}

// NormalizeDay truncates t to midnight UTC of its calendar day.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a booking day in DateLayout.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
