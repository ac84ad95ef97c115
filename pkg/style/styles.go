package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	AppStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// Diff styles
var (
	DiffAddStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	DiffRemoveStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	DiffHeaderStyle = lipgloss.NewStyle().
			Foreground(InfoColor).
			Bold(true)
)

// ListItemStyle indents nested rows.
var ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)
