// Package notify fans fired reminders out to configured webhooks.
//
// This is the daemon's delivery surface: when an in-process reminder timer
// fires there is no native notification center to hand off to, so the
// payload goes to chat webhooks instead (Discord, Slack, or any generic
// JSON endpoint).
package notify

import (
	"time"

	"github.com/eventlife/eventlife/internal/model"
)

// Webhook describes one delivery target.
type Webhook struct {
	Name string `koanf:"name" json:"name"`
	Type string `koanf:"type" json:"type"` // discord, slack or generic
	URL  string `koanf:"url" json:"url"`
}

// Webhook types.
const (
	TypeDiscord = "discord"
	TypeSlack   = "slack"
	TypeGeneric = "generic"
)

// Notification is the rendered payload sent to webhooks.
type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	EventID   string    `json:"event_id"`
	EventTime time.Time `json:"event_time"`
	FiredAt   time.Time `json:"fired_at"`
}

// FromReminder builds the delivery payload for a fired reminder.
func FromReminder(r model.Reminder, firedAt time.Time) Notification {
	return Notification{
		Title:     r.Title,
		Message:   r.Message,
		EventID:   r.EventID,
		EventTime: r.EventTime,
		FiredAt:   firedAt,
	}
}
