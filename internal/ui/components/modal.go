package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

const modalWidth = 54

// Confirm describes one question put to the user.
type Confirm struct {
	Title   string
	Subject string // the item acted on, shown quoted
	Warning string
	Action  string // label of the confirm button, "Delete" when empty
	// OnConfirm is emitted when the user accepts.
	OnConfirm tea.Msg
}

// Modal is a confirm dialog. Focus starts on Cancel since every caller
// confirms something destructive.
type Modal struct {
	Visible bool
	confirm Confirm
	focusOK bool
	theme   theme.Theme
}

// NewModal creates a hidden modal.
func NewModal(t theme.Theme) Modal {
	return Modal{theme: t}
}

// Show opens the dialog for c.
func (m *Modal) Show(c Confirm) {
	if c.Action == "" {
		c.Action = "Delete"
	}
	m.confirm = c
	m.Visible = true
	m.focusOK = false
}

// Title is the heading of the open dialog.
func (m Modal) Title() string { return m.confirm.Title }

// Update handles keys while the dialog is open.
func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	normal := func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
	switch key.String() {
	case "esc", "n", "q":
		m.Visible = false
		return m, normal
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focusOK = !m.focusOK
	case "y":
		m.focusOK = true
		return m.close(normal)
	case "enter", " ":
		return m.close(normal)
	}
	return m, nil
}

func (m Modal) close(normal tea.Cmd) (Modal, tea.Cmd) {
	m.Visible = false
	if !m.focusOK || m.confirm.OnConfirm == nil {
		return m, normal
	}
	confirm := m.confirm.OnConfirm
	return m, tea.Batch(normal, func() tea.Msg { return confirm })
}

func (m Modal) button(label string, focused bool, focusColor lipgloss.TerminalColor) string {
	st := lipgloss.NewStyle().Padding(0, 3)
	if focused {
		return st.Background(focusColor).Foreground(m.theme.Base).Bold(true).Render(label)
	}
	return st.Background(m.theme.Surface).Foreground(m.theme.Subtext).Render(label)
}

// View renders the dialog box, or nothing when hidden.
func (m Modal) View() string {
	if !m.Visible {
		return ""
	}
	inner := modalWidth - 6
	center := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)

	lines := []string{
		center.Foreground(m.theme.Red).Bold(true).Render(m.confirm.Title),
		"",
	}
	if m.confirm.Subject != "" {
		lines = append(lines, center.Foreground(m.theme.Text).Bold(true).Render("“"+m.confirm.Subject+"”"))
	}
	if m.confirm.Warning != "" {
		lines = append(lines, center.Foreground(m.theme.Subtext).Render(m.confirm.Warning))
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		m.button(m.confirm.Action, m.focusOK, m.theme.Red),
		"  ",
		m.button("Cancel", !m.focusOK, m.theme.Accent),
	)
	lines = append(lines, "", center.Render(buttons),
		center.Foreground(m.theme.Muted).Render("y confirm · n cancel · tab switch"))

	return lipgloss.NewStyle().
		Width(modalWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Red).
		Background(m.theme.Surface).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
