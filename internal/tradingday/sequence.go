package tradingday

import (
	"time"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// Default bounds of the range generator (2020-11-29 exclusive → 2022-06-10 inclusive)
var (
	DefaultRangeStart = time.Date(2020, 11, 29, 0, 0, 0, 0, time.UTC)
	DefaultRangeEnd   = time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
)

// DefaultLookbackDays covers four years of sessions (~1,040 dates)
const DefaultLookbackDays = 4 * 365

// DayFilter decides whether a calendar day is a trading day
type DayFilter func(time.Time) bool

// Sequencer produces lists of candidate trading dates, newest first.
// The two generators keep their own boundary contracts; see Range and Lookback.
type Sequencer struct {
	filter DayFilter
	logger *logger.Logger
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithFilter replaces the default weekday filter
func WithFilter(filter DayFilter) Option {
	return func(s *Sequencer) {
		if filter != nil {
			s.filter = filter
		}
	}
}

// NewSequencer creates a sequencer that keeps weekdays unless configured otherwise
func NewSequencer(log *logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		filter: IsWeekday,
		logger: log.WithModule("tradingday"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Range walks backward from end while the cursor is strictly after start:
// end is included, start is excluded.
func (s *Sequencer) Range(start, end time.Time) []contracts.TradingDate {
	dates := s.walk(end, start)
	s.logMetadata("range", dates)
	return dates
}

// Lookback walks backward from now over the given number of days:
// today is included, the day exactly `days` ago is excluded.
func (s *Sequencer) Lookback(now time.Time, days int) []contracts.TradingDate {
	dates := s.walk(now, now.AddDate(0, 0, -days))
	s.logMetadata("lookback", dates)
	return dates
}

func (s *Sequencer) walk(from, stop time.Time) []contracts.TradingDate {
	dates := []contracts.TradingDate{}
	for current := from; current.After(stop); current = current.AddDate(0, 0, -1) {
		if s.filter(current) {
			dates = append(dates, contracts.TradingDate(current.Format(DateLayout)))
		}
	}
	return dates
}

// logMetadata records count and bounds without changing the returned list
func (s *Sequencer) logMetadata(kind string, dates []contracts.TradingDate) {
	fields := map[string]interface{}{
		"generator":  kind,
		"date_count": len(dates),
		"start":      nil,
		"end":        nil,
	}
	if len(dates) > 0 {
		fields["start"] = dates[0]
		fields["end"] = dates[len(dates)-1]
	}
	s.logger.WithFields(fields).Info("Generated trading dates")
}
