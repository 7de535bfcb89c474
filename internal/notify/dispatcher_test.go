package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlife/eventlife/internal/model"
)

func testNotification() Notification {
	return FromReminder(model.Reminder{
		ID:        model.ReminderID("ev1"),
		EventID:   "ev1",
		Title:     "Starting soon: Keynote",
		Message:   "Starts in 5 minutes - Auditorium",
		EventTime: time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC),
	}, time.Date(2026, time.March, 14, 9, 55, 0, 0, time.UTC))
}

func TestFormatters(t *testing.T) {
	n := testNotification()

	t.Run("discord_embed", func(t *testing.T) {
		body, err := GetFormatter(TypeDiscord).Format(n)
		require.NoError(t, err)

		var payload struct {
			Embeds []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Color       int    `json:"color"`
			} `json:"embeds"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Len(t, payload.Embeds, 1)
		assert.Equal(t, n.Title, payload.Embeds[0].Title)
		assert.Equal(t, n.Message, payload.Embeds[0].Description)
		assert.NotZero(t, payload.Embeds[0].Color)
	})

	t.Run("slack_text", func(t *testing.T) {
		body, err := GetFormatter(TypeSlack).Format(n)
		require.NoError(t, err)

		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Contains(t, payload.Text, n.Title)
		assert.Contains(t, payload.Text, n.Message)
	})

	t.Run("unknown_type_falls_back_to_generic", func(t *testing.T) {
		body, err := GetFormatter("carrier-pigeon").Format(n)
		require.NoError(t, err)

		var got Notification
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, n.EventID, got.EventID)
	})
}

func TestDispatcherFanOut(t *testing.T) {
	received := make(chan string, 2)
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
	}))
	defer ok.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer failing.Close()

	d := NewDispatcher([]Webhook{
		{Name: "good", Type: TypeGeneric, URL: ok.URL},
		{Name: "bad", Type: TypeGeneric, URL: failing.URL},
	})

	results := d.Send(context.Background(), testNotification())
	require.Len(t, results, 2)

	byName := make(map[string]DispatchResult)
	for _, res := range results {
		byName[res.WebhookName] = res
	}

	// Partial failure: the bad target fails, the good one still delivers.
	assert.True(t, byName["good"].Success)
	assert.Equal(t, http.StatusOK, byName["good"].StatusCode)
	assert.False(t, byName["bad"].Success)
	assert.Error(t, byName["bad"].Error)

	select {
	case body := <-received:
		assert.Contains(t, body, "Starting soon: Keynote")
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never received the payload")
	}
}

func TestDispatcherNoWebhooks(t *testing.T) {
	d := NewDispatcher(nil)
	assert.Nil(t, d.Send(context.Background(), testNotification()))
}
