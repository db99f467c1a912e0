package models

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeSlot represents one candidate or reserved interval within a single day.
// Start and End are minutes from midnight (e.g. 480 for 8:00 AM). Slots are
// produced fresh on every availability query and never persisted.
type TimeSlot struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	Available bool `json:"available"`
}

// Overlaps reports whether the half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Touching boundaries (a.End == b.Start) do not
// count as overlap, which is what allows back-to-back bookings.
func Overlaps(a, b TimeSlot) bool {
	return a.Start < b.End && b.Start < a.End
}

// MinutesToClock formats minutes from midnight as "HH:MM".
func MinutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// MinutesToDisplay formats minutes from midnight as a 12-hour string
// such as "2:30 PM", the form read back to callers over the phone.
func MinutesToDisplay(m int) string {
	h, min := m/60, m%60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, min, suffix)
}

// ClockToMinutes parses an "HH:MM" string into minutes from midnight.
func ClockToMinutes(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}
