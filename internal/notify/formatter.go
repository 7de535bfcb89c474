package notify

import (
	"encoding/json"
	"fmt"
)

// Formatter renders a notification into a webhook-specific request body.
type Formatter interface {
	Format(n Notification) ([]byte, error)
	ContentType() string
}

// GetFormatter returns the formatter for a webhook type. Unknown types fall
// back to the generic JSON format.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case TypeDiscord:
		return discordFormatter{}
	case TypeSlack:
		return slackFormatter{}
	default:
		return genericFormatter{}
	}
}

// discordFormatter renders a Discord embed.
type discordFormatter struct{}

// colorWarning is the embed color used for reminder notifications.
const colorWarning = 0xFEE75C

func (discordFormatter) Format(n Notification) ([]byte, error) {
	payload := map[string]any{
		"embeds": []map[string]any{{
			"title":       n.Title,
			"description": n.Message,
			"color":       colorWarning,
			"timestamp":   n.FiredAt.Format("2006-01-02T15:04:05Z07:00"),
		}},
	}
	return json.Marshal(payload)
}

func (discordFormatter) ContentType() string {
	return "application/json"
}

// slackFormatter renders Slack mrkdwn text.
type slackFormatter struct{}

func (slackFormatter) Format(n Notification) ([]byte, error) {
	payload := map[string]any{
		"text": fmt.Sprintf("*%s*\n%s", n.Title, n.Message),
	}
	return json.Marshal(payload)
}

func (slackFormatter) ContentType() string {
	return "application/json"
}

// genericFormatter sends the notification as plain JSON.
type genericFormatter struct{}

func (genericFormatter) Format(n Notification) ([]byte, error) {
	return json.Marshal(n)
}

func (genericFormatter) ContentType() string {
	return "application/json"
}
