package util

import "time"

// PeriodOf returns the UTC year and month t falls in
func PeriodOf(t time.Time) (int, int) {
	u := t.UTC()
	return u.Year(), int(u.Month())
}

// MonthBounds returns the half-open range [start, end) covering the given
// month in UTC. end is the first instant of the following month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ValidPeriod reports whether year and month fall inside the accepted budget range
func ValidPeriod(year, month, minYear, maxYear int) bool {
	return year >= minYear && year <= maxYear && month >= 1 && month <= 12
}

// YearBounds returns the half-open range [start, end) covering the given year in UTC
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// FilterBounds returns the UTC range selected by an optional year and month.
// ok is false when year is nil, since a month alone spans many ranges.
func FilterBounds(year, month *int) (start, end time.Time, ok bool) {
	if year == nil {
		return time.Time{}, time.Time{}, false
	}
	if month == nil {
		start, end = YearBounds(*year)
		return start, end, true
	}
	start, end = MonthBounds(*year, *month)
	return start, end, true
}
