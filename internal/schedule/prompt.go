package schedule

import (
	"context"
	"sync"

	"github.com/eventlife/eventlife/internal/model"
)

// PromptFunc asks the user whether notifications may be shown. It may block
// indefinitely pending interaction.
type PromptFunc func(ctx context.Context) bool

// PromptCapability wraps another capability behind an explicit grant/deny
// prompt, the way mobile notification centers gate delivery. Until the
// prompt grants, Schedule fails and nothing reaches the inner capability.
type PromptCapability struct {
	inner  Capability
	prompt PromptFunc

	mu      sync.Mutex
	granted bool
}

// NewPromptCapability creates a prompt-gated capability. The initial
// permission state is denied.
func NewPromptCapability(inner Capability, prompt PromptFunc) *PromptCapability {
	return &PromptCapability{inner: inner, prompt: prompt}
}

// Schedule delegates to the inner capability only while permission is
// granted.
func (c *PromptCapability) Schedule(ctx context.Context, r model.Reminder) bool {
	if !c.HasPermission(ctx) {
		return false
	}
	return c.inner.Schedule(ctx, r)
}

// Cancel delegates to the inner capability.
func (c *PromptCapability) Cancel(ctx context.Context, id string) {
	c.inner.Cancel(ctx, id)
}

// CancelAll delegates to the inner capability.
func (c *PromptCapability) CancelAll(ctx context.Context) {
	c.inner.CancelAll(ctx)
}

// HasPermission returns the cached grant state without prompting.
func (c *PromptCapability) HasPermission(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted
}

// RequestPermission runs the prompt unless permission was already granted.
// The wait is cancellable: when the context ends first, the current (denied)
// state is returned and a late prompt answer is discarded.
func (c *PromptCapability) RequestPermission(ctx context.Context) bool {
	c.mu.Lock()
	if c.granted {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	answer := make(chan bool, 1)
	go func() {
		answer <- c.prompt(ctx)
	}()

	select {
	case granted := <-answer:
		c.mu.Lock()
		c.granted = granted
		c.mu.Unlock()
		return granted
	case <-ctx.Done():
		return false
	}
}

// Revoke clears the cached grant, modelling the user withdrawing permission
// in host settings.
func (c *PromptCapability) Revoke() {
	c.mu.Lock()
	c.granted = false
	c.mu.Unlock()
}
