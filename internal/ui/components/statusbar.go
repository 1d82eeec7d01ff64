package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

// StatusBar is a full-width bottom status bar.
type StatusBar struct {
	mode    msgs.AppMode
	title   string
	company string
	counts  string
	loading bool
	width   int
	theme   theme.Theme
}

// NewStatusBar creates a new status bar.
func NewStatusBar(t theme.Theme) StatusBar {
	return StatusBar{theme: t, mode: msgs.ModeNormal}
}

// SetMode sets the current app mode.
func (m *StatusBar) SetMode(mode msgs.AppMode) { m.mode = mode }

// SetWidth sets the available width.
func (m *StatusBar) SetWidth(w int) { m.width = w }

// SetTitle sets the page title shown on the left.
func (m *StatusBar) SetTitle(title string) { m.title = title }

// SetCompany sets the selected company name shown on the right.
func (m *StatusBar) SetCompany(name string) { m.company = name }

// SetCounts sets a short summary such as "12 files".
func (m *StatusBar) SetCounts(s string) { m.counts = s }

// SetLoading shows or hides the loading marker.
func (m *StatusBar) SetLoading(v bool) { m.loading = v }

// View renders the status bar.
func (m StatusBar) View() string {
	bg := lipgloss.NewStyle().Background(m.theme.Surface)
	barStyle := bg.Foreground(m.theme.Text).Width(m.width)

	var leftParts []string
	leftParts = append(leftParts, bg.Foreground(m.theme.Accent).Bold(true).Render("["+m.mode.String()+"]"))
	if m.title != "" {
		leftParts = append(leftParts, bg.Foreground(m.theme.Text).Render(m.title))
	}
	if m.counts != "" {
		leftParts = append(leftParts, bg.Foreground(m.theme.Subtext).Render(m.counts))
	}
	if m.loading {
		leftParts = append(leftParts, bg.Foreground(m.theme.Yellow).Render("loading…"))
	}
	left := strings.Join(leftParts, " │ ")

	var rightParts []string
	if m.company != "" {
		rightParts = append(rightParts, bg.Foreground(m.theme.Teal).Bold(true).Render("["+m.company+"]"))
	}
	rightParts = append(rightParts, bg.Foreground(m.theme.Muted).Render("?:help  ctrl+k:commands"))
	right := strings.Join(rightParts, " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return barStyle.Render(" " + left + strings.Repeat(" ", gap) + right)
}

func itoa(n int) string { return strconv.Itoa(n) }
