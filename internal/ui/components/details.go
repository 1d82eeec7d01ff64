package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/bizdesk/internal/ui/theme"
)

// KVPair is one labeled value in a detail panel.
type KVPair struct {
	Key   string
	Value string
}

// Details is a read-only key/value panel for the selected record.
type Details struct {
	title  string
	pairs  []KVPair
	width  int
	height int
	styles theme.Styles
}

// NewDetails creates an empty detail panel.
func NewDetails(s theme.Styles) Details {
	return Details{styles: s, width: 40}
}

// SetPairs replaces the title and the shown values.
func (m *Details) SetPairs(title string, pairs []KVPair) {
	m.title = title
	m.pairs = pairs
}

// Pairs returns a copy of the shown values.
func (m Details) Pairs() []KVPair {
	return append([]KVPair(nil), m.pairs...)
}

// SetSize sets the panel size, border included.
func (m *Details) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the panel.
func (m Details) View() string {
	inner := max(m.width-4, 10)
	keyWidth := 0
	for _, p := range m.pairs {
		keyWidth = max(keyWidth, runewidth.StringWidth(p.Key))
	}
	keyWidth = min(keyWidth, inner/2)

	lines := []string{m.styles.Title.Render(runewidth.Truncate(m.title, inner, "…")), ""}
	if len(m.pairs) == 0 {
		lines = append(lines, m.styles.Hint.Render("nothing selected"))
	}
	for _, p := range m.pairs {
		value := p.Value
		if value == "" {
			value = "-"
		}
		key := runewidth.FillRight(runewidth.Truncate(p.Key, keyWidth, "…"), keyWidth)
		lines = append(lines, m.styles.Key.Render(key)+"  "+
			m.styles.Value.Render(runewidth.Truncate(value, max(inner-keyWidth-2, 1), "…")))
	}

	style := m.styles.UnfocusedBorder.Width(m.width - 2)
	if m.height > 2 {
		style = style.Height(m.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// Centered renders s in the middle of a w by h box.
func Centered(w, h int, s string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, s)
}
