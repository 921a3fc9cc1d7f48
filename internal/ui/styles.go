package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
)

// Card frames a slide.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// ActiveCard frames the slide in focus.
var ActiveCard = Card.
	BorderForeground(colorPrimary)

// Author style for the moment author line.
var Author = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// Meta style for timestamps and counters.
var Meta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Media style for the media placeholder block.
var Media = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(1, 2)

// Caption style for moment captions.
var Caption = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// StoryTitle style for story headers.
var StoryTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary)

// ComparisonBadge marks stories shown in comparison mode.
var ComparisonBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// Dot styles for the sub-slide position indicator.
var (
	DotActive   = lipgloss.NewStyle().Foreground(colorHighlight)
	DotInactive = lipgloss.NewStyle().Foreground(colorMuted)
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for the emphasized part of the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Playing marks the playback indicator while media may play.
var Playing = lipgloss.NewStyle().
	Foreground(colorSuccess)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// DetailPanel frames the moment detail pane.
var DetailPanel = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugPanel frames the event overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug panel.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
