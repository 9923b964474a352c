// Package calendar provides timezone-free calendar date arithmetic for
// recurring schedules. Dates carry only year, month and day, so two records
// on the same calendar day always compare equal regardless of origin.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frequency is the calendar step between recurring occurrences.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// ParseFrequency validates a frequency string at the boundary. Expansion code
// never sees a value that did not pass through here.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("invalid frequency %q", s)
}

// Valid reports whether f is one of the enumerated frequencies.
func (f Frequency) Valid() bool {
	_, err := ParseFrequency(string(f))
	return err == nil
}

// PerYear returns how many occurrences of f fit in a year.
func (f Frequency) PerYear() int {
	switch f {
	case Weekly:
		return 52
	case Biweekly:
		return 26
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Yearly:
		return 1
	}
	return 0
}

// Date is a calendar-local date with no time-of-day or timezone component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns a Date. The day is clamped to the month's last valid day.
func New(year int, month time.Month, day int) Date {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date{Year: year, Month: month, Day: day}
}

// FromTime strips the time-of-day and zone from t.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current wall-clock date. The engine itself never calls
// this; callers pass an explicit as-of date so computation stays deterministic.
func Today() Date {
	return FromTime(time.Now())
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns the date at midnight UTC, for interval math only.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Compare returns -1 if a is before b, 0 if equal, +1 if after.
func Compare(a, b Date) int {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(int(a.Month) - int(b.Month))
	default:
		return sign(a.Day - b.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return Compare(d, other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return Compare(d, other) > 0 }

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool { return Compare(d, other) == 0 }

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths returns d shifted by n months, clamping to the target month's
// last valid day (Jan 31 + 1 month is Feb 28 or 29).
func (d Date) AddMonths(n int) Date {
	total := (d.Year*12 + int(d.Month) - 1) + n
	year := total / 12
	month := time.Month(total%12 + 1)
	if total < 0 && total%12 != 0 {
		year--
		month = time.Month(total%12 + 13)
	}
	return New(year, month, d.Day)
}

// AddYears returns d shifted by n years, clamping Feb 29 to Feb 28 when the
// target year is not a leap year.
func (d Date) AddYears(n int) Date {
	return New(d.Year+n, d.Month, d.Day)
}

// AddPeriod returns d advanced by count steps of the given frequency.
// It cannot fail for a valid frequency; an invalid one returns d unchanged,
// which boundary validation makes unreachable in practice.
func (d Date) AddPeriod(f Frequency, count int) Date {
	switch f {
	case Weekly:
		return d.AddDays(7 * count)
	case Biweekly:
		return d.AddDays(14 * count)
	case Monthly:
		return d.AddMonths(count)
	case Quarterly:
		return d.AddMonths(3 * count)
	case Yearly:
		return d.AddYears(count)
	}
	return d
}

// DaysBetween returns the number of calendar days from a to b,
// negative when b is before a.
func DaysBetween(a, b Date) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
