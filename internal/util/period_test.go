package util

import (
	"testing"
	"time"
)

func TestPeriodOf_ConvertsToUTC(t *testing.T) {
	// 23:30 on Jan 31 at UTC-3 is already February in UTC
	loc := time.FixedZone("BRT", -3*60*60)
	year, month := PeriodOf(time.Date(2026, 1, 31, 23, 30, 0, 0, loc))
	if year != 2026 || month != 2 {
		t.Errorf("PeriodOf = (%d, %d), want (2026, 2)", year, month)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year, month int
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{2026, 3, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{2026, 12, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{2028, 2, time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		start, end := MonthBounds(tt.year, tt.month)
		if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
			t.Errorf("MonthBounds(%d, %d) = (%v, %v), want (%v, %v)",
				tt.year, tt.month, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestMonthBounds_LastInstantBelongsToMonth(t *testing.T) {
	start, end := MonthBounds(2026, 3)
	last := end.Add(-time.Nanosecond)
	if last.Before(start) || !last.Before(end) {
		t.Errorf("last instant %v not in [%v, %v)", last, start, end)
	}
	if y, m := PeriodOf(end); y != 2026 || m != 4 {
		t.Errorf("end %v should belong to April, got (%d, %d)", end, y, m)
	}
}

func TestFilterBounds(t *testing.T) {
	year, month := 2026, 3

	if _, _, ok := FilterBounds(nil, &month); ok {
		t.Error("month without year should not produce a range")
	}

	start, end, ok := FilterBounds(&year, nil)
	if !ok || !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FilterBounds(2026, nil) = (%v, %v, %v)", start, end, ok)
	}

	start, end, ok = FilterBounds(&year, &month)
	wantStart, wantEnd := MonthBounds(2026, 3)
	if !ok || !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("FilterBounds(2026, 3) = (%v, %v, %v)", start, end, ok)
	}
}

func TestValidPeriod(t *testing.T) {
	tests := []struct {
		year, month int
		want        bool
	}{
		{2026, 1, true},
		{2026, 12, true},
		{2020, 6, true},
		{2100, 6, true},
		{2019, 6, false},
		{2101, 6, false},
		{2026, 0, false},
		{2026, 13, false},
	}

	for _, tt := range tests {
		if got := ValidPeriod(tt.year, tt.month, 2020, 2100); got != tt.want {
			t.Errorf("ValidPeriod(%d, %d) = %v, want %v", tt.year, tt.month, got, tt.want)
		}
	}
}
