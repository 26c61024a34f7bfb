package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/unoforbots/internal/uno"
)

// Static styles for content elements
var (
	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ActivePlayerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD700")).
				Bold(true)

	WildCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDA0DD")).
			Bold(true)

	cardStyles = map[uno.Color]lipgloss.Style{
		uno.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		uno.Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		uno.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		uno.Blue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
	}
)

// CardStyle returns the style for a card's color.
func CardStyle(c uno.Card) lipgloss.Style {
	if s, ok := cardStyles[c.Color]; ok {
		return s
	}
	return WildCardStyle
}
