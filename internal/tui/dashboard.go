package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/statechan"
	"github.com/eventlife/eventlife/internal/storage"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// remindersMsg carries a new reminder list snapshot.
type remindersMsg []model.Reminder

// permissionMsg carries a permission state transition.
type permissionMsg bool

// countMsg carries a scheduled-count transition.
type countMsg int

// streamClosedMsg is sent when an observer stream ends.
type streamClosedMsg struct{}

// scheduleMsg carries the result of loading the event schedule.
type scheduleMsg model.EventsResult

// DashboardModel is the main bubbletea model for the reminder dashboard.
type DashboardModel struct {
	eng    *engine.Engine
	events *storage.EventRepo
	loc    *time.Location

	// Live data
	reminders  []model.Reminder
	permission bool
	count      int
	schedule   model.EventsResult

	// Observer subscriptions
	remSub   *statechan.Subscription[[]model.Reminder]
	permSub  *statechan.Subscription[bool]
	countSub *statechan.Subscription[int]

	// UI state
	cursor     int
	width      int
	height     int
	message    string
	messageExp time.Time
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Engine   *engine.Engine
	Events   *storage.EventRepo
	Location *time.Location
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}

	return &DashboardModel{
		eng:      config.Engine,
		events:   config.Events,
		loc:      loc,
		schedule: model.EventsIdle(),
	}
}

// Init initializes the model and starts the observer streams.
func (m *DashboardModel) Init() tea.Cmd {
	m.remSub = m.eng.ObserveReminders()
	m.permSub = m.eng.ObservePermission()
	m.countSub = m.eng.ObserveCount()

	return tea.Batch(
		m.tickCmd(),
		m.loadScheduleCmd(),
		waitReminders(m.remSub),
		waitPermission(m.permSub),
		waitCount(m.countSub),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Clear expired messages
		if !m.messageExp.IsZero() && time.Now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, m.tickCmd()

	case remindersMsg:
		m.reminders = msg
		if m.cursor >= len(m.reminders) {
			m.cursor = len(m.reminders) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, waitReminders(m.remSub)

	case permissionMsg:
		m.permission = bool(msg)
		return m, waitPermission(m.permSub)

	case countMsg:
		m.count = int(msg)
		return m, waitCount(m.countSub)

	case scheduleMsg:
		m.schedule = model.EventsResult(msg)
		return m, nil

	case streamClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancelSubs()
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.reminders)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "m":
		if r, ok := m.selected(); ok {
			m.eng.MarkRead(r.ID)
			m.setMessage("Marked read", 2*time.Second)
		}
		return m, nil

	case "d":
		if r, ok := m.selected(); ok {
			m.eng.Dismiss(context.Background(), r.ID)
			m.setMessage("Dismissed", 2*time.Second)
		}
		return m, nil

	case "c":
		m.eng.ClearAll(context.Background())
		m.setMessage("Cleared all reminders", 2*time.Second)
		return m, nil

	case "r":
		m.setMessage("Reloading schedule", time.Second)
		return m, m.loadScheduleCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if !m.permission {
		banner := StylePermissionBox.Render(
			StyleWarning.Render("Notification permission not granted. Run 'eventlife notify permission' to request it."))
		sections = append(sections, banner)
	}

	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, m.renderReminders())
	if m.events != nil {
		sections = append(sections, m.renderSchedule())
	}
	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("Eventlife Reminders")
	now := time.Now().In(m.loc).Format("Mon Jan 2, 15:04:05")
	sub := StyleSubtitle.Render(fmt.Sprintf("%s  |  %d scheduled", now, m.count))

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", sub) + "\n"
}

// renderReminders renders the reminder list.
func (m *DashboardModel) renderReminders() string {
	if len(m.reminders) == 0 {
		return StyleListBox.Render(StyleSubtitle.Render("No reminders scheduled"))
	}

	var rows []string
	for i, r := range m.reminders {
		marker := "  "
		if i == m.cursor {
			marker = StyleSelected.Render("> ")
		}

		clock := StyleTime.Render(timeutil.FormatClock(r.ScheduledTime, m.loc))
		title := StyleEventTitle.Render(r.Title)
		body := StyleMessage.Render(r.Message)

		var flags []string
		if r.IsFired {
			flags = append(flags, StyleFired.Render("fired"))
		}
		if r.IsRead {
			flags = append(flags, StyleRead.Render("read"))
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = "  [" + strings.Join(flags, ", ") + "]"
		}

		rows = append(rows, fmt.Sprintf("%s%s  %s\n    %s%s", marker, clock, title, body, suffix))
	}

	return StyleListBox.Render(strings.Join(rows, "\n"))
}

// renderSchedule renders the event schedule section for the current load
// phase. The switch is exhaustive over the phase set.
func (m *DashboardModel) renderSchedule() string {
	header := StyleSubtitle.Render("Today's schedule")

	var body string
	switch m.schedule.Phase {
	case model.PhaseIdle:
		body = StyleSubtitle.Render("...")
	case model.PhaseLoading:
		body = StyleSubtitle.Render("Loading...")
	case model.PhaseError:
		body = StyleError.Render("Failed to load events: " + m.schedule.Err)
	case model.PhaseSuccess:
		if len(m.schedule.Events) == 0 {
			body = StyleSubtitle.Render("No events today")
		} else {
			var rows []string
			for _, ev := range m.schedule.Events {
				label := ev.TimeLabel
				if label == "" {
					label = "--:--"
				}
				row := fmt.Sprintf("%s  %s", StyleTime.Render(label), ev.Title)
				if ev.Place != "" {
					row += StyleSubtitle.Render("  @ " + ev.Place)
				}
				rows = append(rows, row)
			}
			body = strings.Join(rows, "\n")
		}
	}

	return StyleListBox.Render(header + "\n" + body)
}

// loadScheduleCmd loads the event feed off the update loop.
func (m *DashboardModel) loadScheduleCmd() tea.Cmd {
	if m.events == nil {
		return nil
	}
	m.schedule = model.EventsLoading()
	repo := m.events
	return func() tea.Msg {
		events, err := repo.List()
		if err != nil {
			return scheduleMsg(model.EventsError(err.Error()))
		}
		feed := make([]model.Event, 0, len(events))
		for _, ev := range events {
			feed = append(feed, *ev)
		}
		return scheduleMsg(model.EventsSuccess(feed))
	}
}

// selected returns the reminder under the cursor.
func (m *DashboardModel) selected() (model.Reminder, bool) {
	if m.cursor < 0 || m.cursor >= len(m.reminders) {
		return model.Reminder{}, false
	}
	return m.reminders[m.cursor], true
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = time.Now().Add(duration)
}

// cancelSubs tears down the observer subscriptions.
func (m *DashboardModel) cancelSubs() {
	if m.remSub != nil {
		m.remSub.Cancel()
	}
	if m.permSub != nil {
		m.permSub.Cancel()
	}
	if m.countSub != nil {
		m.countSub.Cancel()
	}
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitReminders blocks for the next reminder list transition.
func waitReminders(sub *statechan.Subscription[[]model.Reminder]) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return streamClosedMsg{}
		}
		return remindersMsg(v)
	}
}

// waitPermission blocks for the next permission transition.
func waitPermission(sub *statechan.Subscription[bool]) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return streamClosedMsg{}
		}
		return permissionMsg(v)
	}
}

// waitCount blocks for the next count transition.
func waitCount(sub *statechan.Subscription[int]) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return streamClosedMsg{}
		}
		return countMsg(v)
	}
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	dash := NewDashboardModel(config)
	p := tea.NewProgram(dash, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
