package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlife/eventlife/internal/model"
)

// fireCollector records fired reminders for assertions.
type fireCollector struct {
	mu    sync.Mutex
	fired []model.Reminder
	ch    chan model.Reminder
}

func newFireCollector() *fireCollector {
	return &fireCollector{ch: make(chan model.Reminder, 16)}
}

func (f *fireCollector) collect(r model.Reminder) {
	f.mu.Lock()
	f.fired = append(f.fired, r)
	f.mu.Unlock()
	f.ch <- r
}

func (f *fireCollector) wait(t *testing.T) model.Reminder {
	t.Helper()
	select {
	case r := <-f.ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reminder to fire")
		panic("unreachable")
	}
}

func (f *fireCollector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fired)
}

func testReminder(id string, in time.Duration) model.Reminder {
	return model.Reminder{
		ID:            model.ReminderID(id),
		EventID:       id,
		Title:         "Starting soon: test",
		ScheduledTime: time.Now().Add(in),
		CreatedAt:     time.Now(),
	}
}

func TestTimerScheduleAndFire(t *testing.T) {
	fc := newFireCollector()
	cap := NewTimerCapability(fc.collect)
	defer cap.CancelAll(context.Background())

	ok := cap.Schedule(context.Background(), testReminder("ev1", 20*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 1, cap.Armed())

	fired := fc.wait(t)
	assert.Equal(t, model.ReminderID("ev1"), fired.ID)
	assert.Equal(t, 0, cap.Armed())
}

func TestTimerRejectsPastTrigger(t *testing.T) {
	cap := NewTimerCapability(nil)
	ok := cap.Schedule(context.Background(), testReminder("ev1", -time.Minute))
	assert.False(t, ok)
	assert.Equal(t, 0, cap.Armed())
}

func TestTimerRejectsCancelledContext(t *testing.T) {
	cap := NewTimerCapability(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, cap.Schedule(ctx, testReminder("ev1", time.Minute)))
}

func TestTimerSameIDReplaces(t *testing.T) {
	fc := newFireCollector()
	cap := NewTimerCapability(fc.collect)
	defer cap.CancelAll(context.Background())

	// First registration is far out; the replacement fires promptly. Only
	// the replacement may fire.
	require.True(t, cap.Schedule(context.Background(), testReminder("ev1", time.Hour)))
	require.True(t, cap.Schedule(context.Background(), testReminder("ev1", 20*time.Millisecond)))
	assert.Equal(t, 1, cap.Armed())

	fc.wait(t)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fc.count())
}

func TestTimerCancel(t *testing.T) {
	fc := newFireCollector()
	cap := NewTimerCapability(fc.collect)

	require.True(t, cap.Schedule(context.Background(), testReminder("ev1", 30*time.Millisecond)))
	cap.Cancel(context.Background(), model.ReminderID("ev1"))
	assert.Equal(t, 0, cap.Armed())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, fc.count())

	// Cancelling an unknown ID is a no-op.
	assert.NotPanics(t, func() {
		cap.Cancel(context.Background(), "reminder:never-scheduled")
	})
}

func TestTimerCancelAll(t *testing.T) {
	fc := newFireCollector()
	cap := NewTimerCapability(fc.collect)

	require.True(t, cap.Schedule(context.Background(), testReminder("ev1", 30*time.Millisecond)))
	require.True(t, cap.Schedule(context.Background(), testReminder("ev2", 30*time.Millisecond)))
	cap.CancelAll(context.Background())
	assert.Equal(t, 0, cap.Armed())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, fc.count())
}

func TestTimerPermissionAlwaysGranted(t *testing.T) {
	cap := NewTimerCapability(nil)
	assert.True(t, cap.HasPermission(context.Background()))
	assert.True(t, cap.RequestPermission(context.Background()))
}
