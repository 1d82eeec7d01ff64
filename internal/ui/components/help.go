package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

const helpWidth = 60

// HelpSection is one titled group of bindings in the help overlay.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// Help lists the key bindings in a scrollable overlay.
type Help struct {
	Visible  bool
	sections []HelpSection
	viewport viewport.Model
	theme    theme.Theme
	height   int
}

// NewHelp creates a hidden help overlay for sections.
func NewHelp(t theme.Theme, sections []HelpSection) Help {
	return Help{theme: t, sections: sections}
}

// SetSize sets the terminal size; the overlay scrolls when it is taller.
func (m *Help) SetSize(_, h int) {
	m.height = h
}

// Toggle shows or hides the overlay.
func (m *Help) Toggle() {
	m.Visible = !m.Visible
	if m.Visible {
		m.viewport = viewport.New(helpWidth, max(m.height-8, 10))
		m.viewport.SetContent(m.render())
	}
}

func (m Help) render() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(m.theme.Text)
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Blue).Bold(true)

	var sb strings.Builder
	for i, s := range m.sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(titleStyle.Render(s.Title) + "\n")
		for _, b := range s.Bindings {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			sb.WriteString("  " + keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Update closes the overlay on esc, ? or q and scrolls otherwise.
func (m Help) Update(msg tea.Msg) (Help, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "?", "q":
			m.Visible = false
			return m, func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the overlay box.
func (m Help) View() string {
	if !m.Visible {
		return ""
	}
	heading := lipgloss.NewStyle().
		Foreground(m.theme.Text).
		Bold(true).
		Render("Keys") +
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("  esc to close, j/k to scroll")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderFocused).
		Background(m.theme.Surface).
		Padding(1, 2).
		Render(heading + "\n\n" + m.viewport.View())
}
