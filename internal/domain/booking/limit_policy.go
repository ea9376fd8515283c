package booking

import (
	"fmt"
	"time"
)

// LimitScope selects which bookings count toward the per-user cap.
type LimitScope string

const (
	// LimitScopeAll counts every booking the user holds.
	LimitScopeAll LimitScope = "all"
	// LimitScopeActive counts only bookings dated today or later.
	LimitScopeActive LimitScope = "active"
)

// DefaultMaxBookings is the cap applied to non-admin users.
const DefaultMaxBookings = 3

// ParseLimitScope converts a string to a LimitScope.
func ParseLimitScope(s string) (LimitScope, error) {
	switch LimitScope(s) {
	case LimitScopeAll, LimitScopeActive:
		return LimitScope(s), nil
	case "":
		return LimitScopeAll, nil
	}
	return "", fmt.Errorf("invalid booking limit scope: %s", s)
}

// LimitPolicy caps how many bookings a non-admin user may hold.
type LimitPolicy struct {
	Max   int
	Scope LimitScope
}

// NewLimitPolicy creates a LimitPolicy, defaulting a non-positive max.
func NewLimitPolicy(max int, scope LimitScope) LimitPolicy {
	if max <= 0 {
		max = DefaultMaxBookings
	}
	if scope == "" {
		scope = LimitScopeAll
	}
	return LimitPolicy{Max: max, Scope: scope}
}

// CountFrom returns the earliest booking day that counts toward the cap,
// or nil when every booking counts.
func (p LimitPolicy) CountFrom(now time.Time) *time.Time {
	if p.Scope != LimitScopeActive {
		return nil
	}
	today := NormalizeDay(now.UTC())
	return &today
}

// Exceeded reports whether holding count bookings blocks another one.
func (p LimitPolicy) Exceeded(count int64) bool {
	return count >= int64(p.Max)
}
