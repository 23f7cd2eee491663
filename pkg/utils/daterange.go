package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// MonthRange returns the first and last day of the given month as
// YYYY-MM-DD strings. Both bounds are inclusive.
func MonthRange(year, month int) (string, string, error) {
	if month < 1 || month > 12 {
		return "", "", fmt.Errorf("month out of range: %d", month)
	}
	if year < 1 || year > 9999 {
		return "", "", fmt.Errorf("year out of range: %d", year)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout), nil
}

// YearRange returns January 1st and December 31st of the given year.
func YearRange(year int) (string, string, error) {
	if year < 1 || year > 9999 {
		return "", "", fmt.Errorf("year out of range: %d", year)
	}
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year), nil
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate validates a YYYY-MM-DD string and returns it normalized.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
