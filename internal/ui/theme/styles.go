package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/model"
)

// Styles holds pre-computed Lip Gloss styles for the current theme.
type Styles struct {
	UnfocusedBorder lipgloss.Style

	// Text styles
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	URL     lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Hint    lipgloss.Style
	Amount  lipgloss.Style

	// Components
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	StatusBar   lipgloss.Style
	TableHeader lipgloss.Style
	Selected    lipgloss.Style
	Cursor      lipgloss.Style

	// File type badges
	Contract lipgloss.Style
	Drawing  lipgloss.Style
}

// NewStyles creates a Styles set from a Theme.
func NewStyles(t Theme) Styles {
	return Styles{
		UnfocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderUnfocused),

		Title:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(t.Muted),
		Bold:    lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(t.Red),
		Success: lipgloss.NewStyle().Foreground(t.Green),
		Warning: lipgloss.NewStyle().Foreground(t.Yellow),
		URL:     lipgloss.NewStyle().Foreground(t.Blue).Underline(true),
		Key:     lipgloss.NewStyle().Foreground(t.Accent),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Amount:  lipgloss.NewStyle().Foreground(t.Peach).Align(lipgloss.Right),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Padding(0, 2),
		StatusBar: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text).
			Padding(0, 1),
		TableHeader: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.BorderUnfocused),
		Selected: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text),
		Cursor: lipgloss.NewStyle().
			Background(t.Overlay).
			Foreground(t.Text),

		Contract: lipgloss.NewStyle().Foreground(t.FileTypeColor(model.FileTypeContract)).Bold(true),
		Drawing:  lipgloss.NewStyle().Foreground(t.FileTypeColor(model.FileTypeDrawing)).Bold(true),
	}
}

// FileTypeStyle returns the badge style of a file type.
func (s Styles) FileTypeStyle(ft model.FileType) lipgloss.Style {
	switch ft {
	case model.FileTypeContract:
		return s.Contract
	case model.FileTypeDrawing:
		return s.Drawing
	default:
		return s.Muted
	}
}
