package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

const (
	paletteWidth = 60
	paletteRows  = 12
)

// entry is one choice in the palette; Hint is right aligned.
type entry struct {
	Name string
	Hint string
	Msg  tea.Msg
}

// entries adapts a slice for fuzzy.FindFrom.
type entries []entry

func (e entries) String(i int) string { return e[i].Name }
func (e entries) Len() int            { return len(e) }

// choice is a visible entry with the byte offsets the query matched.
type choice struct {
	entry
	matched []int
}

func commandEntries() []entry {
	var out []entry
	for _, r := range router.Menu() {
		out = append(out, entry{Name: "Go to " + r.Title, Hint: r.Path, Msg: msgs.NavigateMsg{Path: r.Path}})
	}
	return append(out,
		entry{Name: "Select company", Hint: "c", Msg: msgs.NavigateMsg{Path: router.CompanyLogin}},
		entry{Name: "Refresh", Hint: "r", Msg: msgs.RefreshMsg{}},
		entry{Name: "Switch theme", Msg: msgs.SwitchThemeMsg{}},
		entry{Name: "Back", Hint: "esc", Msg: msgs.BackMsg{}},
		entry{Name: "Help", Hint: "?", Msg: msgs.ShowHelpMsg{}},
		entry{Name: "Quit", Hint: "ctrl+c", Msg: tea.Quit()},
	)
}

// CommandPalette is a fuzzy finder overlay. Besides commands it picks
// themes and companies.
type CommandPalette struct {
	Visible bool
	title   string
	input   textinput.Model
	all     entries
	query   string
	shown   []choice
	cursor  int
	offset  int
	theme   theme.Theme
}

// NewCommandPalette creates a hidden palette.
func NewCommandPalette(t theme.Theme) CommandPalette {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = paletteWidth - 8
	ti.Prompt = "› "
	return CommandPalette{input: ti, theme: t}
}

// Open shows the command list.
func (m *CommandPalette) Open() {
	m.open("Commands", "Type a command...", commandEntries())
}

// OpenThemePicker lists theme names; choosing one sends SwitchThemeMsg.
func (m *CommandPalette) OpenThemePicker(names []string) {
	list := make([]entry, len(names))
	for i, name := range names {
		list[i] = entry{Name: name, Msg: msgs.SwitchThemeMsg{Name: name}}
	}
	m.open("Theme", "Select theme...", list)
}

// OpenCompanyPicker lists companies; choosing one sends CompanySelectedMsg.
func (m *CommandPalette) OpenCompanyPicker(companies []model.Company) {
	list := make([]entry, len(companies))
	for i, c := range companies {
		list[i] = entry{Name: c.CompanyName, Hint: c.Contact1, Msg: msgs.CompanySelectedMsg{Company: c}}
	}
	m.open("Select company", "Type a company name...", list)
}

func (m *CommandPalette) open(title, placeholder string, list []entry) {
	m.Visible = true
	m.title = title
	m.all = list
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	m.filter("")
}

// Close hides the palette.
func (m *CommandPalette) Close() {
	m.Visible = false
	m.input.Blur()
}

// Len returns the number of entries matching the current query.
func (m CommandPalette) Len() int { return len(m.shown) }

// Update handles typing, cursor movement and selection.
func (m CommandPalette) Update(msg tea.Msg) (CommandPalette, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}
	normal := func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.Close()
			return m, normal
		case "enter":
			if len(m.shown) == 0 {
				return m, nil
			}
			picked := m.shown[m.cursor].Msg
			m.Close()
			return m, tea.Batch(normal, func() tea.Msg { return picked })
		case "up", "ctrl+p":
			m.move(-1)
			return m, nil
		case "down", "ctrl+n", "tab":
			m.move(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.query {
		m.filter(v)
	}
	return m, cmd
}

func (m *CommandPalette) move(delta int) {
	if len(m.shown) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.shown)-1))
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+paletteRows:
		m.offset = m.cursor - paletteRows + 1
	}
}

func (m *CommandPalette) filter(query string) {
	m.query = query
	m.cursor, m.offset = 0, 0
	if query == "" {
		m.shown = make([]choice, len(m.all))
		for i, e := range m.all {
			m.shown[i] = choice{entry: e}
		}
		return
	}
	matches := fuzzy.FindFrom(query, m.all)
	m.shown = make([]choice, len(matches))
	for i, match := range matches {
		m.shown[i] = choice{entry: m.all[match.Index], matched: match.MatchedIndexes}
	}
}

// highlight renders name with the matched runes emphasized.
func (m CommandPalette) highlight(name string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(name)
	}
	hit := base.Foreground(m.theme.Accent).Bold(true)
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	var sb strings.Builder
	for i, r := range name {
		if set[i] {
			sb.WriteString(hit.Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}
	return sb.String()
}

// View renders the overlay box.
func (m CommandPalette) View() string {
	if !m.Visible {
		return ""
	}
	inner := paletteWidth - 6
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	header := lipgloss.NewStyle().Foreground(m.theme.Text).Bold(true).Render(m.title) +
		muted.Render(fmt.Sprintf("  %d/%d", len(m.shown), len(m.all)))

	var rows []string
	end := min(m.offset+paletteRows, len(m.shown))
	for i := m.offset; i < end; i++ {
		c := m.shown[i]
		name := runewidth.Truncate(c.Name, inner-runewidth.StringWidth(c.Hint)-1, "…")
		gap := strings.Repeat(" ", max(inner-runewidth.StringWidth(name)-runewidth.StringWidth(c.Hint), 1))
		base := lipgloss.NewStyle().Foreground(m.theme.Text)
		if i == m.cursor {
			base = base.Background(m.theme.Overlay)
		}
		matched := c.matched
		if name != c.Name {
			matched = nil
		}
		rows = append(rows, m.highlight(name, matched, base)+base.Render(gap)+base.Foreground(m.theme.Muted).Render(c.Hint))
	}
	if len(m.shown) == 0 {
		rows = append(rows, muted.Render("no matches"))
	}

	return lipgloss.NewStyle().
		Width(paletteWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderFocused).
		Background(m.theme.Surface).
		Padding(1, 2).
		Render(header + "\n\n" + m.input.View() + "\n\n" + strings.Join(rows, "\n"))
}
