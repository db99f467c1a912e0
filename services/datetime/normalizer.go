package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"autobook/models"
)

// Result is the canonical form of a free-text date/time preference.
type Result struct {
	Date    string // "2006-01-02"
	Time    int    // minutes from midnight, clamped into business hours
	Matched bool   // false when no date or time expression was recognized
}

// Normalizer converts spoken date/time expressions ("next Friday around
// 2pm") into a canonical calendar day and start time. Out-of-hours times
// are pulled to the nearest bookable boundary rather than rejected; see the
// open-question note in DESIGN.md before changing that.
type Normalizer struct {
	Hours    models.BusinessHours
	Fallback int // minutes from midnight assumed when no time is mentioned
}

// New returns a Normalizer for the given business day. fallback is the
// start time assumed when the caller names no time at all.
func New(hours models.BusinessHours, fallback int) *Normalizer {
	return &Normalizer{Hours: hours, Fallback: fallback}
}

var (
	weekdayNames = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	monthNames = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}

	weekdayRe  = regexp.MustCompile(`\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	monthDayRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	time12Re   = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	time24Re   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// Normalize resolves text against ref. Date resolution order: relative
// keyword, weekday name, explicit month-and-day; first match wins. A bare
// weekday naming today's weekday means a week from now, never today. Time
// resolution is independent: 12-hour form first, then 24-hour.
func (n *Normalizer) Normalize(text string, ref time.Time) Result {
	lower := strings.ToLower(text)

	date, dateMatched := n.resolveDate(lower, ref)
	minutes, timeMatched := n.resolveTime(lower)

	return Result{
		Date:    date.Format(models.DateLayout),
		Time:    n.clamp(minutes),
		Matched: dateMatched || timeMatched,
	}
}

func (n *Normalizer) resolveDate(lower string, ref time.Time) (time.Time, bool) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	switch {
	case strings.Contains(lower, "today"):
		return day, true
	case strings.Contains(lower, "tomorrow"):
		return day.AddDate(0, 0, 1), true
	case strings.Contains(lower, "next week"):
		return day.AddDate(0, 0, 7), true
	}

	if m := weekdayRe.FindString(lower); m != "" {
		target := weekdayNames[m]
		delta := (int(target) - int(day.Weekday()) + 7) % 7
		if delta == 0 {
			// "Friday" said on a Friday is ambiguous between today and a
			// week out; always advance a full week.
			delta = 7
		}
		return day.AddDate(0, 0, delta), true
	}

	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		month := monthNames[m[1]]
		dom, _ := strconv.Atoi(m[2])
		candidate := time.Date(day.Year(), month, dom, 0, 0, 0, 0, ref.Location())
		if candidate.Before(day) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate, true
	}

	// No expression recognized; assume the next day.
	return day.AddDate(0, 0, 1), false
}

func (n *Normalizer) resolveTime(lower string) (int, bool) {
	if m := time12Re.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			if hour == 12 {
				hour = 0
			}
			if m[3] == "pm" {
				hour += 12
			}
			return hour*60 + minute, true
		}
	}

	if m := time24Re.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return hour*60 + minute, true
		}
	}

	return n.Fallback, false
}

// clamp pulls a requested start into the bookable window. A 7pm request
// silently becomes the last appointment start of the day.
func (n *Normalizer) clamp(minutes int) int {
	if minutes < n.Hours.Start {
		return n.Hours.Start
	}
	if minutes > n.Hours.LastAppointmentStart {
		return n.Hours.LastAppointmentStart
	}
	return minutes
}
