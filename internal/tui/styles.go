// Package tui provides the terminal user interface components for Eventlife.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI dashboard.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the TUI.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleEventTitle is used for event titles in the reminder list.
	StyleEventTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleTime is used for scheduled trigger times.
	StyleTime = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	// StyleMessage is used for reminder body text.
	StyleMessage = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// StyleRead is used for reminders already read.
	StyleRead = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleFired is used for reminders already delivered.
	StyleFired = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorMuted)

	// StyleSelected is used for the cursor row.
	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// StyleWarning is used for warning messages.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleError is used for error messages.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	// StyleHelp is used for help text at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	// StyleHelpKey is used for keyboard shortcut keys.
	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// StyleHelpDesc is used for keyboard shortcut descriptions.
	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Box styles for different sections.
var (
	// StyleListBox frames the reminder list.
	StyleListBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)

	// StylePermissionBox frames the permission banner.
	StylePermissionBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(0, 2).
				MarginBottom(1)
)

// HelpBar renders the keyboard shortcuts line.
func HelpBar() string {
	entries := []struct {
		key  string
		desc string
	}{
		{"j/k", "move"},
		{"m", "mark read"},
		{"d", "dismiss"},
		{"c", "clear all"},
		{"r", "reload"},
		{"q", "quit"},
	}

	bar := ""
	for i, e := range entries {
		if i > 0 {
			bar += StyleHelpDesc.Render("  ")
		}
		bar += StyleHelpKey.Render(e.key) + StyleHelpDesc.Render(" "+e.desc)
	}
	return StyleHelp.Render(bar)
}
