package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock is returned for anything that is not a HH:MM 24-hour clock value
var ErrInvalidClock = errors.New("invalid clock value")

const (
	// DateKeyLayout is the layout of calendar-date keys used for reminder bookkeeping
	DateKeyLayout = "2006-01-02"
	// MinutesPerDay is the number of minutes in a calendar day
	MinutesPerDay = 24 * 60
)

// ToMinutes converts a HH:MM clock value into minutes since midnight
func ToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}

	return hours*60 + minutes, nil
}

// Valid reports whether clock is a well-formed HH:MM value
func Valid(clock string) bool {
	if len(clock) != 5 {
		return false
	}
	_, err := ToMinutes(clock)
	return err == nil
}

// MinutesUntil returns the signed number of minutes from current to target.
// The result is not wrapped across midnight: 23:55 -> 00:05 yields -1430.
func MinutesUntil(current, target string) (int, error) {
	c, err := ToMinutes(current)
	if err != nil {
		return 0, err
	}
	t, err := ToMinutes(target)
	if err != nil {
		return 0, err
	}
	return t - c, nil
}

// FormatDisplay renders a HH:MM value as "h:MM AM/PM".
// Malformed input is returned unchanged.
func FormatDisplay(clock string) string {
	total, err := ToMinutes(clock)
	if err != nil {
		return clock
	}
	hour := total / 60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour12, total%60, suffix)
}

// Clock returns the HH:MM wall-clock value of t
func Clock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DateKey returns the calendar date of t as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// WeekdayTag returns the three-letter lowercase weekday of t ("mon", "tue", ...)
func WeekdayTag(t time.Time) string {
	return strings.ToLower(t.Weekday().String()[:3])
}
