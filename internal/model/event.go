package model

import (
	"fmt"
)

// PrefixEvent is the database key prefix for events.
const PrefixEvent = "event"

// Event is one entry in the schedule. TimeLabel holds the start time as a
// 24-hour "HH:MM" string; events without a parseable label stay in the feed
// but never get a reminder.
type Event struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	TimeLabel   string `json:"time_label,omitempty"`
	Place       string `json:"place,omitempty"`
	Category    string `json:"category,omitempty"`
}

// SetKey sets the database key for this event.
func (e *Event) SetKey(key string) {
	e.Key = key
}

// GetKey returns the database key for this event.
func (e *Event) GetKey() string {
	return e.Key
}

// GenerateEventKey generates a database key for an event.
func GenerateEventKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixEvent, id)
}

// EventSection is a titled group of events in the feed.
type EventSection struct {
	Title  string  `json:"title"`
	Events []Event `json:"events"`
}
