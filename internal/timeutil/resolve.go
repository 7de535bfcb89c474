// Package timeutil resolves event time-of-day labels into absolute instants.
//
// Events carry only an "HH:MM" label with no date, so all resolution builds a
// local date-time for today in the caller's zone. Functions here are pure:
// the caller supplies "now" and the location, nothing reads the system clock.
package timeutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultLeadMinutes is the default number of minutes a reminder fires before
// its event.
const DefaultLeadMinutes = 5

// timeLabelRegex matches "H:MM" or "HH:MM" on a 24-hour clock.
var timeLabelRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseTimeOfDay parses a time-of-day label after trimming whitespace.
// A label that does not match the clock format is not an error, just not
// parseable; callers treat it as "this event cannot be scheduled".
func ParseTimeOfDay(label string) (hour, minute int, ok bool) {
	m := timeLabelRegex.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, true
}

// IsSchedulable reports whether the label is a well-formed time of day.
func IsSchedulable(label string) bool {
	_, _, ok := ParseTimeOfDay(label)
	return ok
}

// TriggerInstant computes the lead-adjusted instant at which a reminder for
// the label should fire today. The result is returned only if it is strictly
// after now; a trigger that has already passed yields ok == false and is
// never scheduled with a past time.
func TriggerInstant(label string, leadMinutes int, now time.Time, loc *time.Location) (time.Time, bool) {
	event, ok := EventInstant(label, now, loc)
	if !ok {
		return time.Time{}, false
	}
	trigger := event.Add(-time.Duration(leadMinutes) * time.Minute)
	if !trigger.After(now) {
		return time.Time{}, false
	}
	return trigger, true
}

// EventInstant computes the absolute instant of the event itself, today in
// the given location. No lead subtraction and no future check; the result is
// informational and may be in the past.
func EventInstant(label string, now time.Time, loc *time.Location) (time.Time, bool) {
	hour, minute, ok := ParseTimeOfDay(label)
	if !ok {
		return time.Time{}, false
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc), true
}
