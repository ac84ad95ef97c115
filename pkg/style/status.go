package style

import (
	"github.com/charmbracelet/lipgloss"
)

// File sync states as reported by the status command.
const (
	StateUpToDate     = "up-to-date"
	StateLocalChanges = "local-changes"
	StateIncoming     = "incoming"
	StateNotPushed    = "not-pushed"
	StateError        = "error"
)

var stateSymbols = map[string]string{
	StateUpToDate:     "✓",
	StateLocalChanges: "↑",
	StateIncoming:     "↓",
	StateNotPushed:    "+",
	StateError:        "✗",
}

// StateStyle returns the style used for a file state.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case StateUpToDate:
		return SuccessStyle
	case StateLocalChanges:
		return WarningStyle
	case StateIncoming:
		return InfoStyle
	case StateError:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// StateSymbol returns the one-character marker of a file state.
func StateSymbol(state string) string {
	if s, ok := stateSymbols[state]; ok {
		return s
	}
	return "?"
}

// RenderState renders "<symbol> <state>" in the state's style.
func RenderState(state string) string {
	return StateStyle(state).Render(StateSymbol(state) + " " + state)
}
