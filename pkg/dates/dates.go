// Package dates provides calendar-date helpers shared by the dossier engine
// and the timeline analyzer. Dates are plain calendar days: parsing an ISO
// string yields midnight UTC and all arithmetic stays day-granular, so a
// value is never shifted across a day boundary by timezone conversion.
package dates

import (
	"strings"
	"time"
)

// ISO is the wire format for all dates crossing the API.
const ISO = "2006-01-02"

// Human is the format used inside user-facing messages.
const Human = "02/01/2006"

// Parse decodes an ISO calendar date. The boolean is false for empty or
// malformed input; callers treat that as "date absent" rather than an error.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ISO, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParsePtr is Parse for optional fields: nil when absent or malformed.
func ParsePtr(raw string) *time.Time {
	t, ok := Parse(raw)
	if !ok {
		return nil
	}
	return &t
}

// FormatHuman renders a date for messages, or an ellipsis when absent.
func FormatHuman(t *time.Time) string {
	if t == nil {
		return "…"
	}
	return t.Format(Human)
}

// MonthsBetween returns the number of whole calendar months from 'from' to
// 'to'. A started month does not count: 10 Jan to 9 Feb is 0 months.
func MonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// AddMonths shifts a date by whole months, rolling over month-end the way
// the calendar does (31 Jan +1 month lands in early March).
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// DaysBetween returns the signed number of days from 'from' to 'to'.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Within reports whether t falls inside the inclusive range [start, end].
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Midpoint returns the day halfway between two dates.
func Midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

// Max returns the later of two dates.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
