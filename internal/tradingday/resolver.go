package tradingday

import (
	"time"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// DateLayout is the ISO 8601 date layout used for every TradingDate
const DateLayout = "2006-01-02"

// Resolver determines the trading date a run collects data for
// ⭐ SSOT: 수집 기준일 결정은 여기서만
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a resolver evaluating "now" in loc.
// A nil clock means time.Now.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// LoadLocation loads a market time zone, falling back to UTC
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Resolve returns explicit verbatim when given, otherwise the most recent
// completed trading day. Explicit dates are not validated.
func (r *Resolver) Resolve(explicit *string) contracts.TradingDate {
	if explicit != nil {
		return contracts.TradingDate(*explicit)
	}
	return PreviousTradingDate(r.now().In(r.loc))
}

// Now returns the resolver's current time in its market time zone
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// PreviousTradingDate returns the day before now, rolled back to Friday when
// that day falls on a weekend. Holidays are not considered.
func PreviousTradingDate(now time.Time) contracts.TradingDate {
	date := now.AddDate(0, 0, -1)

	switch date.Weekday() {
	case time.Sunday:
		date = date.AddDate(0, 0, -2)
	case time.Saturday:
		date = date.AddDate(0, 0, -1)
	}

	return contracts.TradingDate(date.Format(DateLayout))
}

// IsWeekday reports whether t falls Monday through Friday
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
