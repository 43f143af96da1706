package utils

import (
	"fmt"
	"math"
	"time"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Quote is the price computation for a booking date range.
type Quote struct {
	Days       int32
	TotalCents int64
}

// ParseDate converts a yyyy-mm-dd formatted string into a time.Time
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %v", err)
	}
	return t, nil
}

// TruncateToDay drops the time-of-day component. Overlap and duration
// calculations operate at day granularity.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PriceQuote computes the chargeable day count and total price for a range.
// Days is the ceiling of the elapsed duration in whole days, never below 1.
func PriceQuote(start, end time.Time, pricePerDayCents int64) (Quote, error) {
	if !end.After(start) {
		return Quote{}, fmt.Errorf("end date must be after start date")
	}

	elapsedMillis := end.Sub(start).Milliseconds()
	days := int32(math.Ceil(float64(elapsedMillis) / float64(millisPerDay)))
	if days < 1 {
		days = 1
	}

	return Quote{
		Days:       days,
		TotalCents: int64(days) * pricePerDayCents,
	}, nil
}

// Overlaps reports whether the date ranges [aStart, aEnd] and [bStart, bEnd]
// share at least one calendar day. Boundaries are inclusive: a range ending on
// the day another begins still conflicts.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = TruncateToDay(aStart), TruncateToDay(aEnd)
	bStart, bEnd = TruncateToDay(bStart), TruncateToDay(bEnd)
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
