package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

// NavBar is the horizontal page menu. Entries are numbered so a digit key
// can jump to them.
type NavBar struct {
	routes []router.Route
	active string
	width  int
	theme  theme.Theme
	styles theme.Styles
}

// NewNavBar creates a nav bar over the router menu.
func NewNavBar(t theme.Theme, s theme.Styles) NavBar {
	return NavBar{routes: router.Menu(), theme: t, styles: s}
}

// SetActive marks the page at path as current.
func (m *NavBar) SetActive(path string) { m.active = path }

// SetWidth sets the available width.
func (m *NavBar) SetWidth(w int) { m.width = w }

// At returns the route bound to the 1-based digit n.
func (m NavBar) At(n int) (router.Route, bool) {
	if n < 1 || n > len(m.routes) {
		return router.Route{}, false
	}
	return m.routes[n-1], true
}

// View renders the nav bar.
func (m NavBar) View() string {
	sep := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("│")
	var parts []string
	for i, r := range m.routes {
		label := itoa(i+1) + " " + r.Label
		if r.Path == m.active {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.TabInactive.Render(label))
		}
	}
	rendered := strings.Join(parts, sep)
	if w := lipgloss.Width(rendered); w < m.width {
		rendered += strings.Repeat(" ", m.width-w)
	}
	return rendered
}
