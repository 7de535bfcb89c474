package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/eventlife/eventlife/internal/logging"
	"github.com/eventlife/eventlife/internal/model"
)

// FiredFunc is invoked when an armed reminder reaches its trigger instant.
// It runs on the timer goroutine; implementations should hand off quickly.
type FiredFunc func(r model.Reminder)

// TimerCapability arms reminders on in-process timers. It models a host with
// no permission gating: HasPermission and RequestPermission always grant.
type TimerCapability struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	onFired FiredFunc
}

// NewTimerCapability creates a timer-backed capability. onFired may be nil if
// the caller only needs arming semantics.
func NewTimerCapability(onFired FiredFunc) *TimerCapability {
	return &TimerCapability{
		timers:  make(map[string]*time.Timer),
		onFired: onFired,
	}
}

// Schedule arms a timer for the reminder's trigger instant. A reminder whose
// instant is not in the future fails. Re-scheduling an ID replaces the prior
// timer.
func (c *TimerCapability) Schedule(ctx context.Context, r model.Reminder) bool {
	if ctx.Err() != nil {
		return false
	}
	d := time.Until(r.ScheduledTime)
	if d <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.timers[r.ID]; ok {
		prev.Stop()
	}
	c.timers[r.ID] = time.AfterFunc(d, func() {
		c.fire(r)
	})
	return true
}

// Cancel stops and forgets the timer for an ID, if one exists.
func (c *TimerCapability) Cancel(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
}

// CancelAll stops every armed timer.
func (c *TimerCapability) CancelAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

// HasPermission always grants: in-process timers need no host permission.
func (c *TimerCapability) HasPermission(_ context.Context) bool {
	return true
}

// RequestPermission always grants immediately.
func (c *TimerCapability) RequestPermission(_ context.Context) bool {
	return true
}

// Armed returns the number of currently armed timers.
func (c *TimerCapability) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *TimerCapability) fire(r model.Reminder) {
	c.mu.Lock()
	delete(c.timers, r.ID)
	c.mu.Unlock()

	logging.Debug("reminder fired",
		logging.KeyReminderID, r.ID,
		logging.KeyEventID, r.EventID)

	if c.onFired != nil {
		c.onFired(r)
	}
}
