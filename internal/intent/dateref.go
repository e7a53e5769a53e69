package intent

import (
	"fmt"
	"time"
)

// DateKind enumerates the ways a message can refer to a date.
type DateKind int

const (
	DateToday DateKind = iota
	DateTomorrow
	DateThisWeek
	DateNextWeek
	DateThisMonth
	DateWeekday  // a named weekday, optionally of next week
	DateAbsolute // an explicit day/month[/year]
)

// DateReference is a still-relative date mention. It is resolved
// against a reference clock only at query time, because "now" changes
// between turns and a cached absolute date would go stale.
type DateReference struct {
	Kind DateKind

	// DateWeekday fields.
	Weekday  time.Weekday
	NextWeek bool

	// DateAbsolute fields. Year 0 means the year was not stated.
	Day   int
	Month int
	Year  int
}

func (r DateReference) String() string {
	switch r.Kind {
	case DateToday:
		return "today"
	case DateTomorrow:
		return "tomorrow"
	case DateThisWeek:
		return "this_week"
	case DateNextWeek:
		return "next_week"
	case DateThisMonth:
		return "this_month"
	case DateWeekday:
		if r.NextWeek {
			return fmt.Sprintf("weekday_%d_next", int(r.Weekday))
		}
		return fmt.Sprintf("weekday_%d", int(r.Weekday))
	case DateAbsolute:
		if r.Year > 0 {
			return fmt.Sprintf("%04d-%02d-%02d", r.Year, r.Month, r.Day)
		}
		return fmt.Sprintf("--%02d-%02d", r.Month, r.Day)
	default:
		return "unspecified"
	}
}

// Resolve turns the reference into an inclusive calendar-day range,
// both bounds at midnight in now's location. Weeks start on Monday.
// An absolute day/month without a year resolves to now's year, rolling
// to the next year when the date already passed; the day itself counts
// as not passed.
func (r DateReference) Resolve(now time.Time) (from, to time.Time) {
	day := startOfDay(now)

	switch r.Kind {
	case DateToday:
		return day, day
	case DateTomorrow:
		d := day.AddDate(0, 0, 1)
		return d, d
	case DateThisWeek:
		ws := startOfWeek(day)
		return ws, ws.AddDate(0, 0, 6)
	case DateNextWeek:
		ws := startOfWeek(day).AddDate(0, 0, 7)
		return ws, ws.AddDate(0, 0, 6)
	case DateThisMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		return first, last
	case DateWeekday:
		ws := startOfWeek(day)
		offset := int(r.Weekday) - 1
		if r.Weekday == time.Sunday {
			offset = 6
		}
		d := ws.AddDate(0, 0, offset)
		if r.NextWeek {
			d = d.AddDate(0, 0, 7)
		}
		return d, d
	case DateAbsolute:
		year := r.Year
		if year == 0 {
			year = day.Year()
			d := time.Date(year, time.Month(r.Month), r.Day, 0, 0, 0, 0, day.Location())
			if d.Before(day) {
				d = time.Date(year+1, time.Month(r.Month), r.Day, 0, 0, 0, 0, day.Location())
			}
			return d, d
		}
		d := time.Date(year, time.Month(r.Month), r.Day, 0, 0, 0, 0, day.Location())
		return d, d
	default:
		return day, day
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDate(0, 0, -offset)
}
