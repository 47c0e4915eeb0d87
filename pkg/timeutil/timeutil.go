// Package timeutil provides time zone and day-boundary helpers for LevelUp.
//
// A "day key" is the YYYY-MM-DD label of a user's logical day. Users may
// start their day later than midnight: with a day-start hour of 4, activity at
// 02:30 still belongs to the previous day.
// No external dependencies - uses only standard library. The zone database
// is embedded so headless hosts without /usr/share/zoneinfo still resolve
// user time zones.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Common date/time formats.
const (
	// FormatDate is the day key format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatClock is the wall-clock format used by schedules (HH:MM).
	FormatClock = "15:04"
)

// Day-start hour boundaries.
const (
	MinDayStartHour = 0
	MaxDayStartHour = 23
)

var (
	// ErrInvalidDayKey is returned when a day key cannot be parsed.
	ErrInvalidDayKey = errors.New("timeutil: invalid day key, expected YYYY-MM-DD")

	// ErrInvalidClock is returned when a wall-clock value cannot be parsed.
	ErrInvalidClock = errors.New("timeutil: invalid clock, expected HH:MM")
)

// LoadLocation resolves an IANA zone name. Empty or unknown names fall back
// to UTC so that a bad setting never blocks scheduling.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsValidTimeZone reports whether name is a loadable IANA zone.
func IsValidTimeZone(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// ClampDayStartHour clamps an hour into [0, 23].
func ClampDayStartHour(hour int) int {
	if hour < MinDayStartHour {
		return MinDayStartHour
	}
	if hour > MaxDayStartHour {
		return MaxDayStartHour
	}
	return hour
}

// ══════════════════════════════════════════════════════════════════════════════
// DAY KEYS
// ══════════════════════════════════════════════════════════════════════════════

// DayKey returns the logical day key of t. When the local wall-clock hour in
// loc is before dayStartHour, the instant is moved back 24 hours before
// formatting. dayStartHour is expected to be clamped by the caller.
func DayKey(t time.Time, dayStartHour int, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if local.Hour() < dayStartHour {
		return t.Add(-24 * time.Hour).In(loc).Format(FormatDate)
	}
	return local.Format(FormatDate)
}

// TodayKey returns the day key for now.
func TodayKey(dayStartHour int, loc *time.Location, now time.Time) string {
	return DayKey(now, dayStartHour, loc)
}

// ParseDayKey parses a day key into midnight UTC of that calendar date.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(FormatDate, strings.TrimSpace(key), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDayKey, key)
	}
	return t, nil
}

// IsValidDayKey reports whether key is a well-formed day key.
func IsValidDayKey(key string) bool {
	_, err := ParseDayKey(key)
	return err == nil
}

// PreviousDayKey returns the calendar day before key.
func PreviousDayKey(key string) (string, error) {
	t, err := ParseDayKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(FormatDate), nil
}

// DaysBetweenKeys returns to - from in whole calendar days.
func DaysBetweenKeys(from, to string) (int, error) {
	a, err := ParseDayKey(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseDayKey(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WALL CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse(FormatClock, strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return t.Hour(), t.Minute(), nil
}

// ClockOnDay returns the instant at wall-clock "HH:MM" on the logical day
// dayKey. Times earlier than dayStartHour belong to the next calendar date,
// since the logical day runs from dayStartHour to dayStartHour.
func ClockOnDay(dayKey, clock string, dayStartHour int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := ParseDayKey(dayKey)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	offset := 0
	if hour < dayStartHour {
		offset = 1
	}
	return time.Date(day.Year(), day.Month(), day.Day()+offset, hour, minute, 0, 0, loc), nil
}

// FormatCountdown renders a positive duration as HH:MM:SS. Hours wrap at 24,
// matching the dashboard countdown.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := (total / 3600) % 24
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
