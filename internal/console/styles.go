package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/unoforbots/internal/uno"
)

// Styles contains styling for the text interface.
type Styles struct {
	Prompt  lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Player  lipgloss.Style
	Active  lipgloss.Style
	Index   lipgloss.Style
	colors  map[uno.Color]lipgloss.Style
	wild    lipgloss.Style
}

// NewStyles builds styles rendered for out. noColor forces plain ASCII.
func NewStyles(out io.Writer, noColor bool) *Styles {
	var opts []termenv.OutputOption
	if noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	r := lipgloss.NewRenderer(out, opts...)

	return &Styles{
		Prompt:  r.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Player:  r.NewStyle().Foreground(lipgloss.Color("#74B9FF")),
		Active:  r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		Index:   r.NewStyle().Foreground(lipgloss.Color("#626262")),
		colors: map[uno.Color]lipgloss.Style{
			uno.Red:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
			uno.Yellow: r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
			uno.Green:  r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
			uno.Blue:   r.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
		},
		wild: r.NewStyle().Foreground(lipgloss.Color("#DDA0DD")).Bold(true),
	}
}

// Card renders c in its color.
func (s *Styles) Card(c uno.Card) string {
	if style, ok := s.colors[c.Color]; ok {
		return style.Render(c.String())
	}
	return s.wild.Render(c.String())
}
