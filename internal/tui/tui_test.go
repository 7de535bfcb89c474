package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/schedule"
	"github.com/eventlife/eventlife/internal/storage"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestDashboard(t *testing.T) *DashboardModel {
	t.Helper()
	eng := engine.New(schedule.NewTimerCapability(nil), engine.Options{
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
	})
	t.Cleanup(eng.Close)

	m := NewDashboardModel(DashboardConfig{Engine: eng, Location: time.UTC})
	m.width = 100
	m.height = 40
	return m
}

func testReminder(id string, read, fired bool) model.Reminder {
	return model.Reminder{
		ID:            model.ReminderID(id),
		EventID:       id,
		Title:         "Starting soon: Standup",
		Message:       "Starts in 5 minutes",
		ScheduledTime: testNow.Add(25 * time.Minute),
		EventTime:     testNow.Add(30 * time.Minute),
		IsRead:        read,
		IsFired:       fired,
	}
}

func TestDashboardEmptyView(t *testing.T) {
	m := newTestDashboard(t)
	m.permission = true

	view := m.View()
	assert.Contains(t, view, "Eventlife Reminders")
	assert.Contains(t, view, "No reminders scheduled")
}

func TestDashboardShowsPermissionBanner(t *testing.T) {
	m := newTestDashboard(t)
	m.permission = false

	view := m.View()
	assert.Contains(t, view, "permission not granted")
}

func TestDashboardRendersReminders(t *testing.T) {
	m := newTestDashboard(t)
	m.permission = true
	m.reminders = []model.Reminder{
		testReminder("standup", false, false),
		testReminder("lunch", true, true),
	}

	view := m.View()
	assert.Contains(t, view, "Starting soon: Standup")
	assert.Contains(t, view, "10:25")
	assert.Contains(t, view, "read")
	assert.Contains(t, view, "fired")
}

func TestDashboardCursorMovement(t *testing.T) {
	m := newTestDashboard(t)
	m.reminders = []model.Reminder{
		testReminder("a", false, false),
		testReminder("b", false, false),
	}

	require.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, m.cursor)

	// Cursor stops at the last row.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.cursor)
}

func TestDashboardCursorClampedOnShrink(t *testing.T) {
	m := newTestDashboard(t)
	m.reminders = []model.Reminder{
		testReminder("a", false, false),
		testReminder("b", false, false),
	}
	m.cursor = 1

	_, cmd := m.Update(remindersMsg{testReminder("a", false, false)})
	assert.NotNil(t, cmd)
	assert.Equal(t, 0, m.cursor)

	m.Update(remindersMsg{})
	assert.Equal(t, 0, m.cursor)
}

func TestDashboardQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := newTestDashboard(t)
			m.Init()

			var msg tea.Msg
			if key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}

			_, cmd := m.Update(msg)
			require.NotNil(t, cmd)
		})
	}
}

func TestDashboardSchedulePhases(t *testing.T) {
	m := newTestDashboard(t)
	m.permission = true
	// A non-nil repo enables the schedule section; rendering itself never
	// touches the database.
	m.events = &storage.EventRepo{}

	m.schedule = model.EventsLoading()
	assert.Contains(t, m.View(), "Loading")

	m.schedule = model.EventsError("disk gone")
	assert.Contains(t, m.View(), "disk gone")

	m.schedule = model.EventsSuccess(nil)
	assert.Contains(t, m.View(), "No events today")

	m.schedule = model.EventsSuccess([]model.Event{
		{Title: "Standup", TimeLabel: "9:30", Place: "Room 2"},
	})
	view := m.View()
	assert.Contains(t, view, "Standup")
	assert.Contains(t, view, "9:30")
	assert.Contains(t, view, "Room 2")
}

func TestHelpBar(t *testing.T) {
	bar := HelpBar()
	assert.Contains(t, bar, "dismiss")
	assert.Contains(t, bar, "quit")
}
