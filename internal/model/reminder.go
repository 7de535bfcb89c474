package model

import (
	"fmt"
	"time"
)

// PrefixReminder is the identifier prefix for reminders.
const PrefixReminder = "reminder"

// Reminder is a scheduled notification record derived from one event.
//
// The ID is derived deterministically from the source event ID, so
// re-scheduling the same event replaces the prior registration instead of
// creating a duplicate. Title and Message are rendered once at schedule time.
type Reminder struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ScheduledTime time.Time `json:"scheduled_time"`
	EventTime     time.Time `json:"event_time"`
	CreatedAt     time.Time `json:"created_at"`

	// IsFired is set when the host actually delivered the notification;
	// IsRead when the user acknowledged it. The two are independent: a
	// reminder may be read before it ever fires (user dismisses the card
	// ahead of delivery), and nothing enforces an ordering between them.
	IsRead  bool `json:"is_read"`
	IsFired bool `json:"is_fired"`
}

// ReminderID derives the stable reminder identifier for an event.
func ReminderID(eventID string) string {
	return fmt.Sprintf("%s:%s", PrefixReminder, eventID)
}

// TimeUntil returns the duration from now until the reminder fires.
func (r *Reminder) TimeUntil() time.Duration {
	return time.Until(r.ScheduledTime)
}

// IsPending returns true if the reminder has not fired yet.
func (r *Reminder) IsPending() bool {
	return !r.IsFired
}
