// Package engine orchestrates event reminders: it resolves time-of-day
// labels into trigger instants, arms them through a scheduling capability,
// tracks each reminder's lifecycle, and republishes every state transition
// to any number of observers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventlife/eventlife/internal/logging"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/schedule"
	"github.com/eventlife/eventlife/internal/statechan"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// Engine is the reminder lifecycle orchestrator. All mutating operations are
// serialized: a scheduling batch's cancel-all/schedule sequence runs as one
// critical section relative to every other mutating call. Observation never
// touches the store; it rides the state channels.
type Engine struct {
	cap         schedule.Capability
	loc         *time.Location
	leadMinutes int
	now         func() time.Time

	// batchMu serializes mutating operations end to end, capability I/O
	// included. The store has its own short lock underneath.
	batchMu sync.Mutex
	st      store
	closed  bool

	reminders  *statechan.Channel[[]model.Reminder]
	permission *statechan.Channel[bool]
	count      *statechan.Channel[int]
}

// Options configures an Engine.
type Options struct {
	// Location is the local timezone for resolving time-of-day labels.
	// Defaults to time.Local.
	Location *time.Location

	// LeadMinutes is how many minutes before the event a reminder fires.
	// Defaults to timeutil.DefaultLeadMinutes.
	LeadMinutes int

	// Clock overrides the time source, for tests. Defaults to time.Now.
	Clock func() time.Time
}

// New creates an engine bound to the given scheduling capability. The
// capability is injected here and never reached through any ambient state.
func New(cap schedule.Capability, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LeadMinutes <= 0 {
		opts.LeadMinutes = timeutil.DefaultLeadMinutes
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		cap:         cap,
		loc:         opts.Location,
		leadMinutes: opts.LeadMinutes,
		now:         opts.Clock,
		reminders:   statechan.New([]model.Reminder(nil)),
		permission:  statechan.New(false),
		count:       statechan.New(0),
	}
}

// ScheduleForEvents replaces the tracked reminder set with reminders for
// every schedulable event in the list.
//
// When permission is denied the existing reminders are left untouched and
// only the denied permission state is published. Otherwise all prior
// registrations are cancelled wholesale and each schedulable event is armed
// in turn; events whose label is malformed or whose lead-adjusted trigger
// has already passed are silently skipped, and an individual host rejection
// drops that reminder without aborting the batch.
//
// Cancellation stops further schedule attempts immediately; whatever was
// armed before the cut-off is committed and published, so the reported list
// and count always agree. The context error, if any, is returned.
func (e *Engine) ScheduleForEvents(ctx context.Context, events []model.Event) error {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()

	if !e.cap.HasPermission(ctx) {
		e.publishPermission(false)
		return ctx.Err()
	}
	e.publishPermission(true)

	// Full replace, never incremental: the previous set is gone from this
	// point even if the batch is cut short.
	e.cap.CancelAll(ctx)
	e.st.clear()

	scheduled := make([]model.Reminder, 0, len(events))
	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		r, ok := e.buildReminder(ev)
		if !ok {
			continue
		}
		if !e.cap.Schedule(ctx, r) {
			logging.Debug("host rejected reminder",
				logging.KeyReminderID, r.ID,
				logging.KeyEventID, ev.ID)
			continue
		}
		scheduled = append(scheduled, r)
	}

	e.st.replace(scheduled)
	e.publishReminders()

	logging.Debug("reminder batch committed",
		logging.KeyOperation, "schedule_for_events",
		logging.KeyCount, len(scheduled))
	return ctx.Err()
}

// buildReminder resolves an event into an armed-ready reminder. ok is false
// for events that cannot be scheduled.
func (e *Engine) buildReminder(ev model.Event) (model.Reminder, bool) {
	now := e.now()
	trigger, ok := timeutil.TriggerInstant(ev.TimeLabel, e.leadMinutes, now, e.loc)
	if !ok {
		return model.Reminder{}, false
	}
	// The label parsed above, so the event instant always resolves.
	eventAt, _ := timeutil.EventInstant(ev.TimeLabel, now, e.loc)

	message := fmt.Sprintf("Starts in %d minutes", e.leadMinutes)
	if ev.Place != "" {
		message = fmt.Sprintf("%s - %s", message, ev.Place)
	}

	return model.Reminder{
		ID:            model.ReminderID(ev.ID),
		EventID:       ev.ID,
		Title:         fmt.Sprintf("Starting soon: %s", ev.Title),
		Message:       message,
		ScheduledTime: trigger,
		EventTime:     eventAt,
		CreatedAt:     now,
	}, true
}

// Dismiss cancels and removes one reminder. Unknown IDs are a no-op: the
// host cancel is still attempted (best effort), but nothing is republished.
func (e *Engine) Dismiss(ctx context.Context, id string) {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()

	e.cap.Cancel(ctx, id)
	if e.st.remove(id) {
		e.publishReminders()
	}
}

// MarkRead flags a reminder as acknowledged by the user. No-op for unknown
// IDs. A reminder may be read before it has fired; that permissive ordering
// is inherited behavior and intentionally not tightened here.
func (e *Engine) MarkRead(id string) {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()

	if e.st.update(id, func(r *model.Reminder) { r.IsRead = true }) {
		e.publishReminders()
	}
}

// MarkFired records the external firing signal: the host notification for
// this reminder actually appeared. No-op for unknown IDs.
func (e *Engine) MarkFired(id string) {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()

	if e.st.update(id, func(r *model.Reminder) { r.IsFired = true }) {
		e.publishReminders()
	}
}

// ClearAll cancels every registration and empties the reminder set.
func (e *Engine) ClearAll(ctx context.Context) {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()

	e.cap.CancelAll(ctx)
	e.st.clear()
	e.publishReminders()
}

// CheckPermission refreshes the permission flag from the capability and
// publishes it when it changed.
func (e *Engine) CheckPermission(ctx context.Context) bool {
	granted := e.cap.HasPermission(ctx)

	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()
	e.publishPermission(granted)
	return granted
}

// RequestPermission asks the capability for permission, which may block on a
// user prompt until ctx is cancelled, then publishes the resulting state.
// The prompt wait deliberately happens outside the batch lock so other
// operations are not stalled behind user interaction.
func (e *Engine) RequestPermission(ctx context.Context) bool {
	granted := e.cap.RequestPermission(ctx)

	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	e.ensureOpen()
	e.publishPermission(granted)
	return granted
}

// Reminders returns a copy of the current reminder list, ordered by trigger
// time.
func (e *Engine) Reminders() []model.Reminder {
	return e.st.snapshot()
}

// ScheduledCount returns the number of tracked reminders.
func (e *Engine) ScheduledCount() int {
	return e.st.count()
}

// PermissionGranted returns the last-known permission flag.
func (e *Engine) PermissionGranted() bool {
	return e.st.permissionState()
}

// ObserveReminders subscribes to the reminder list. Delivery is
// replay-then-live: the current list first, then every transition in order.
func (e *Engine) ObserveReminders() *statechan.Subscription[[]model.Reminder] {
	return e.reminders.Subscribe()
}

// ObservePermission subscribes to the permission flag.
func (e *Engine) ObservePermission() *statechan.Subscription[bool] {
	return e.permission.Subscribe()
}

// ObserveCount subscribes to the scheduled-reminder count.
func (e *Engine) ObserveCount() *statechan.Subscription[int] {
	return e.count.Subscribe()
}

// Close tears the engine down and closes all observer channels. Any
// operation after Close is a lifecycle bug in the caller and panics.
func (e *Engine) Close() {
	e.batchMu.Lock()
	defer e.batchMu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.reminders.Close()
	e.permission.Close()
	e.count.Close()
}

func (e *Engine) ensureOpen() {
	if e.closed {
		panic("engine: operation on closed Engine")
	}
}

// publishReminders pushes the current list and count together so observers
// can never see the two disagree.
func (e *Engine) publishReminders() {
	snap := e.st.snapshot()
	e.reminders.Publish(snap)
	e.count.Publish(len(snap))
}

// publishPermission records and publishes the flag, suppressing duplicate
// emissions for an unchanged value.
func (e *Engine) publishPermission(granted bool) {
	if e.st.setPermission(granted) {
		e.permission.Publish(granted)
	}
}
