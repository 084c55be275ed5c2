package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day in seconds since midnight. Feeds may publish
// values past 24:00:00 for services running after midnight.
type Clock int

func (c Clock) String() string {
	return FormatClock(c)
}

// ParseClock parses an HH:MM:SS time of day. An empty string is the valid
// "not published" value and returns ok=false with a nil error.
func ParseClock(value string) (clock Clock, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	hours, err := parseClockPart(parts[0], 0, -1)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	minutes, err := parseClockPart(parts[1], 2, 59)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	seconds, err := parseClockPart(parts[2], 2, 59)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	return Clock(hours*3600 + minutes*60 + seconds), true, nil
}

// parseClockPart accepts only ASCII digits. A width of 0 allows any
// non-empty length and a max below 0 disables the upper bound.
func parseClockPart(part string, width int, max int) (int, error) {
	if part == "" || (width > 0 && len(part) != width) {
		return 0, ErrInvalidTimeFormat
	}

	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTimeFormat
		}
	}

	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, err
	}
	if max >= 0 && n > max {
		return 0, ErrInvalidTimeFormat
	}

	return n, nil
}

// FormatClock renders a time of day as HH:MM:SS.
func FormatClock(c Clock) string {
	return FormatDuration(int(c))
}

// FormatDuration renders a number of seconds as HH:MM:SS. Hours are not
// wrapped at 24.
func FormatDuration(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	return fmt.Sprintf("%s%02d:%02d:%02d", sign, seconds/3600, (seconds%3600)/60, seconds%60)
}
