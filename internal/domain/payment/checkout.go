package payment

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"
)

// SessionPlaceholder is substituted by the processor with the session ID.
const SessionPlaceholder = "{CHECKOUT_SESSION_ID}"

const (
	DefaultSuccessURL = "http://localhost:8080/my-bookings"
	// DefaultCancelURLFormat takes the campground ID.
	DefaultCancelURLFormat = "http://localhost:8080/book/%s"

	statusParam    = "status"
	sessionIDParam = "session_id"
	statusSuccess  = "success"
	statusCancel   = "cancelled"
)

// MinorUnits converts a price to the smallest currency unit, rounding
// half up on the price's decimal representation and flooring at zero.
// 19.995 becomes 2000.
func MinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price is not a finite number")
	}
	if price <= 0 {
		return 0, nil
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(price, 'f', -1, 64))
	if !ok {
		return 0, fmt.Errorf("price %v is not a decimal number", price)
	}
	r.Mul(r, big.NewRat(100, 1))

	// floor(x + 1/2) = (2*num + den) / (2*den) for x > 0
	num := new(big.Int).Mul(r.Num(), big.NewInt(2))
	num.Add(num, r.Denom())
	den := new(big.Int).Mul(r.Denom(), big.NewInt(2))
	q := new(big.Int).Quo(num, den)
	if !q.IsInt64() {
		return 0, fmt.Errorf("price %v overflows minor units", price)
	}
	return q.Int64(), nil
}

// RedirectURLs is the success/cancel pair handed to the processor.
type RedirectURLs struct {
	Success string
	Cancel  string
}

// BuildRedirectURLs derives the redirect pair from configured bases. A
// missing or malformed base falls back to the default. The success URL
// carries status=success and the session placeholder; the cancel URL
// carries status=cancelled.
func BuildRedirectURLs(successBase, cancelBase, campgroundID string) RedirectURLs {
	success := ensureURL(successBase, DefaultSuccessURL)
	success = withSessionPlaceholder(withStatus(success, statusSuccess))

	cancel := ensureURL(cancelBase, fmt.Sprintf(DefaultCancelURLFormat, url.PathEscape(campgroundID)))
	cancel = withStatus(cancel, statusCancel)

	return RedirectURLs{Success: success, Cancel: cancel}
}

func ensureURL(raw, fallback string) string {
	if u, ok := parseAbsolute(raw); ok {
		return u.String()
	}
	u, _ := parseAbsolute(fallback)
	return u.String()
}

func parseAbsolute(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// withStatus adds a status query parameter unless one is already present.
func withStatus(href, status string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	if q.Has(statusParam) {
		return href
	}
	q.Set(statusParam, status)
	u.RawQuery = q.Encode()
	return u.String()
}

// withSessionPlaceholder appends session_id={CHECKOUT_SESSION_ID} before
// any fragment. The placeholder must stay unescaped.
func withSessionPlaceholder(href string) string {
	u, err := url.Parse(href)
	if err == nil && u.Query().Has(sessionIDParam) {
		return href
	}
	base, fragment, hasFragment := strings.Cut(href, "#")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	out := base + sep + sessionIDParam + "=" + SessionPlaceholder
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
