package tradingday

import (
	"fmt"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// HolidayFilter returns a DayFilter backed by the exchange calendar for mic
// (ISO 10383, e.g. "xnys"). Opt-in: the default filter is weekdays only.
func HolidayFilter(mic string) (DayFilter, error) {
	cal := calendar.GetCalendar(strings.ToLower(mic))
	if cal == nil {
		return nil, fmt.Errorf("unknown market calendar: %s", mic)
	}

	loc := cal.Loc
	if loc == nil {
		loc = time.UTC
	}

	return func(t time.Time) bool {
		// 달력 날짜를 거래소 시간대의 정오로 옮겨 시간대 경계 문제를 피함
		day := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
		return cal.IsBusinessDay(day)
	}, nil
}
