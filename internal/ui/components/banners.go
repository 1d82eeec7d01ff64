package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

// BannerTick is how often expired banners are pruned.
const BannerTick = 250 * time.Millisecond

// Banners renders the active notifications of a board. Expiry is driven by
// BannerTickMsg so the board's own clock decides what is shown.
type Banners struct {
	board  *notify.Board
	active []notify.Banner
	width  int
	theme  theme.Theme
}

// NewBanners creates a banner strip for board.
func NewBanners(b *notify.Board, t theme.Theme) Banners {
	return Banners{board: b, theme: t}
}

// Tick schedules the next prune.
func Tick() tea.Cmd {
	return tea.Tick(BannerTick, func(now time.Time) tea.Msg {
		return msgs.BannerTickMsg{Now: now}
	})
}

// SetWidth sets the available width.
func (m *Banners) SetWidth(w int) {
	m.width = w
}

// Sync reloads the active banners from the board.
func (m *Banners) Sync(now time.Time) {
	m.active = m.board.Active(now)
}

// Active returns the banners currently shown.
func (m Banners) Active() []notify.Banner {
	return m.active
}

// Init implements tea.Model.
func (m Banners) Init() tea.Cmd {
	return Tick()
}

// Update implements tea.Model.
func (m Banners) Update(msg tea.Msg) (Banners, tea.Cmd) {
	switch msg := msg.(type) {
	case msgs.BannerTickMsg:
		m.Sync(msg.Now)
		return m, Tick()
	case tea.KeyMsg:
		// x dismisses the newest banner
		if msg.String() == "x" && len(m.active) > 0 {
			m.board.Dismiss(m.active[len(m.active)-1].ID)
			m.Sync(time.Now())
		}
	}
	return m, nil
}

// View renders the newest banner on one line, with a count of the others.
func (m Banners) View() string {
	if len(m.active) == 0 {
		return strings.Repeat(" ", max(m.width, 0))
	}
	b := m.active[len(m.active)-1]
	fg := m.theme.BannerColor(b.Kind)
	text := b.Text
	if n := len(m.active) - 1; n > 0 {
		text += lipgloss.NewStyle().Foreground(m.theme.Muted).Render(" (+" + itoa(n) + ")")
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Bold(true).
		Width(m.width).
		Padding(0, 1).
		Render(kindIcon(b.Kind) + " " + text)
}

func kindIcon(k notify.Kind) string {
	switch k {
	case notify.Success:
		return "✓"
	case notify.Error:
		return "✗"
	case notify.Warning:
		return "!"
	default:
		return "i"
	}
}
