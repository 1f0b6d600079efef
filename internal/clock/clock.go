// Package clock provides the logical-day time arithmetic the rest of the
// application is built on. A "logical day" starts at a configurable hour
// rather than at calendar midnight, so a schedule running past midnight
// still belongs to the day it started in.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of one logical day in minutes.
const MinutesPerDay = 24 * 60

// ErrInvalidDayStart is returned when a day-start hour lies outside [0, 23].
var ErrInvalidDayStart = errors.New("day start hour must be in [0, 23]")

// Clock supplies the current time. The application never reads the system
// clock directly; it always goes through a Clock so tests and the --now
// flag can substitute a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }

// Date is a calendar date without a time component, used to key completion
// history by logical day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as ISO "YYYY-MM-DD", the form stored in the
// completion database.
func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// Time returns the date at midnight UTC. Only used for arithmetic; the
// location never leaks into stored values.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// LogicalDate maps a wall-clock instant to the logical day it belongs to.
// Instants before dayStartHour count as the previous calendar day.
func LogicalDate(t time.Time, dayStartHour int) (Date, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return Date{}, fmt.Errorf("logical date: %w (got %d)", ErrInvalidDayStart, dayStartHour)
	}
	d := DateOf(t)
	if t.Hour() < dayStartHour {
		d = d.AddDays(-1)
	}
	return d, nil
}

// DayOffset returns the minutes elapsed since the most recent occurrence of
// dayStartHour, in [0, MinutesPerDay). This is the coordinate activities are
// positioned in.
func DayOffset(t time.Time, dayStartHour int) (int, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return 0, fmt.Errorf("day offset: %w (got %d)", ErrInvalidDayStart, dayStartHour)
	}
	offset := (t.Hour()-dayStartHour)*60 + t.Minute()
	if offset < 0 {
		offset += MinutesPerDay
	}
	return offset, nil
}

// ParseHHMM parses "HH:MM" (or "H:MM") into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatHHMM renders minutes since midnight as "HH:MM". The input is
// normalized into [0, MinutesPerDay).
func FormatHHMM(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseShift parses a signed "±HH:MM" shift into signed minutes. A missing
// sign means a forward shift.
func ParseShift(s string) (int, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	minutes, err := ParseHHMM(s)
	if err != nil {
		return 0, fmt.Errorf("invalid shift: %w", err)
	}
	if negative {
		minutes = -minutes
	}
	return minutes, nil
}

// OffsetFromWallClock converts minutes-since-midnight into minutes since the
// logical day start.
func OffsetFromWallClock(wallMinutes, dayStartHour int) (int, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return 0, fmt.Errorf("wall clock offset: %w (got %d)", ErrInvalidDayStart, dayStartHour)
	}
	offset := wallMinutes - dayStartHour*60
	if offset < 0 {
		offset += MinutesPerDay
	}
	return offset, nil
}

// WallClockFromOffset is the inverse of OffsetFromWallClock.
func WallClockFromOffset(offset, dayStartHour int) int {
	wall := (offset + dayStartHour*60) % MinutesPerDay
	if wall < 0 {
		wall += MinutesPerDay
	}
	return wall
}

// SnapMinutes rounds minutes to the nearest multiple of step. A step of zero
// or less leaves the value untouched.
func SnapMinutes(minutes, step int) int {
	if step <= 0 {
		return minutes
	}
	half := step / 2
	if minutes < 0 {
		return -SnapMinutes(-minutes, step)
	}
	return ((minutes + half) / step) * step
}
