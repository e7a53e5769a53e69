package intent

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	// Wednesday 2024-05-01
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		ref  DateReference
		from time.Time
		to   time.Time
	}{
		{"today", DateReference{Kind: DateToday}, date(2024, 5, 1), date(2024, 5, 1)},
		{"tomorrow", DateReference{Kind: DateTomorrow}, date(2024, 5, 2), date(2024, 5, 2)},
		{"this week starts monday", DateReference{Kind: DateThisWeek}, date(2024, 4, 29), date(2024, 5, 5)},
		{"next week", DateReference{Kind: DateNextWeek}, date(2024, 5, 6), date(2024, 5, 12)},
		{"this month", DateReference{Kind: DateThisMonth}, date(2024, 5, 1), date(2024, 5, 31)},
		{"friday this week", DateReference{Kind: DateWeekday, Weekday: time.Friday}, date(2024, 5, 3), date(2024, 5, 3)},
		{"sunday maps to end of week", DateReference{Kind: DateWeekday, Weekday: time.Sunday}, date(2024, 5, 5), date(2024, 5, 5)},
		{"thursday next week", DateReference{Kind: DateWeekday, Weekday: time.Thursday, NextWeek: true}, date(2024, 5, 9), date(2024, 5, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, to := tt.ref.Resolve(now)
			if !from.Equal(tt.from) || !to.Equal(tt.to) {
				t.Errorf("Resolve() = (%v, %v), want (%v, %v)", from, to, tt.from, tt.to)
			}
		})
	}
}

func TestResolveAbsoluteYearRoll(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ref  DateReference
		want time.Time
	}{
		{"future date stays this year", DateReference{Kind: DateAbsolute, Day: 15, Month: 6}, date(2024, 6, 15)},
		{"past date rolls to next year", DateReference{Kind: DateAbsolute, Day: 10, Month: 1}, date(2025, 1, 10)},
		{"today does not roll", DateReference{Kind: DateAbsolute, Day: 1, Month: 5}, date(2024, 5, 1)},
		{"explicit year never rolls", DateReference{Kind: DateAbsolute, Day: 10, Month: 1, Year: 2023}, date(2023, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, to := tt.ref.Resolve(now)
			if !from.Equal(tt.want) || !to.Equal(tt.want) {
				t.Errorf("Resolve() = (%v, %v), want %v", from, to, tt.want)
			}
		})
	}
}

func TestResolveDependsOnlyOnNow(t *testing.T) {
	t.Parallel()

	ref := DateReference{Kind: DateTomorrow}

	from1, _ := ref.Resolve(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	from2, _ := ref.Resolve(time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC))

	if !from1.Equal(date(2024, 5, 2)) {
		t.Errorf("first resolve = %v", from1)
	}
	if !from2.Equal(date(2024, 5, 3)) {
		t.Errorf("second resolve = %v", from2)
	}
}
