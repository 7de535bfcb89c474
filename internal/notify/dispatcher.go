package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventlife/eventlife/internal/logging"
)

// Dispatcher sends notifications to every configured webhook.
type Dispatcher struct {
	webhooks []Webhook
	client   *HTTPClient
}

// NewDispatcher creates a dispatcher for a fixed set of webhooks.
func NewDispatcher(webhooks []Webhook) *Dispatcher {
	return &Dispatcher{
		webhooks: webhooks,
		client:   NewHTTPClient(),
	}
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// Send delivers a notification to all webhooks concurrently. A failure on
// one target never affects the others; per-target outcomes are returned.
func (d *Dispatcher) Send(ctx context.Context, n Notification) []DispatchResult {
	if len(d.webhooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(d.webhooks))

	for i, wh := range d.webhooks {
		wg.Add(1)
		go func(idx int, wh Webhook) {
			defer wg.Done()
			results[idx] = d.sendTo(ctx, n, wh)
		}(i, wh)
	}

	wg.Wait()

	for _, res := range results {
		if res.Error != nil {
			logging.Warn("webhook delivery failed",
				logging.KeyWebhook, res.WebhookName,
				logging.KeyError, res.Error)
		}
	}
	return results
}

func (d *Dispatcher) sendTo(ctx context.Context, n Notification, wh Webhook) DispatchResult {
	result := DispatchResult{WebhookName: wh.Name}

	formatter := GetFormatter(wh.Type)
	payload, err := formatter.Format(n)
	if err != nil {
		result.Error = fmt.Errorf("format notification: %w", err)
		return result
	}

	sendResult := d.client.Send(ctx, wh.URL, formatter.ContentType(), payload)
	result.StatusCode = sendResult.StatusCode
	result.Duration = sendResult.Duration
	result.Error = sendResult.Error
	result.Success = sendResult.Error == nil
	return result
}
