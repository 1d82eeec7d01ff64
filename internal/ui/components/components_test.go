package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

// helpers

func testStyles() theme.Styles {
	return theme.NewStyles(theme.Default())
}

func testTheme() theme.Theme {
	return theme.Default()
}

func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func specialKeyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// ─────────────────────────────────────────────────────────────────────────────
// Banners
// ─────────────────────────────────────────────────────────────────────────────

func TestBanners_SyncShowsNewest(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	board := notify.New(notify.WithClock(func() time.Time { return now }))
	b := NewBanners(board, testTheme())
	b.SetWidth(60)

	if view := b.View(); strings.TrimSpace(view) != "" {
		t.Fatalf("empty board should render blank, got %q", view)
	}

	board.Success("company saved")
	board.Error("upload failed")
	b, cmd := b.Update(msgs.BannerTickMsg{Now: now})
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if len(b.Active()) != 2 {
		t.Fatalf("expected 2 active banners, got %d", len(b.Active()))
	}
	view := b.View()
	if !strings.Contains(view, "upload failed") || !strings.Contains(view, "+1") {
		t.Fatalf("view should show the newest banner and the count, got %q", view)
	}

	b, _ = b.Update(msgs.BannerTickMsg{Now: now.Add(10 * time.Second)})
	if len(b.Active()) != 0 {
		t.Fatalf("banners should expire, %d left", len(b.Active()))
	}
}

func TestBanners_DismissNewest(t *testing.T) {
	board := notify.New()
	b := NewBanners(board, testTheme())
	board.Info("first")
	board.Warn("second")
	b.Sync(time.Now())

	b, _ = b.Update(keyMsg("x"))
	active := b.Active()
	if len(active) != 1 || active[0].Text != "first" {
		t.Fatalf("x should dismiss the newest banner, left %+v", active)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// StatusBar and NavBar
// ─────────────────────────────────────────────────────────────────────────────

func TestStatusBar_View(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.SetWidth(120)
	sb.SetMode(msgs.ModeSearch)
	sb.SetTitle("Files")
	sb.SetCounts("12 files")
	sb.SetCompany("Acme")
	sb.SetLoading(true)

	view := sb.View()
	for _, want := range []string{"[SEARCH]", "Files", "12 files", "[Acme]", "loading", "?:help"} {
		if !strings.Contains(view, want) {
			t.Errorf("status bar missing %q: %q", want, view)
		}
	}
}

func TestNavBar_DigitsAndActive(t *testing.T) {
	nb := NewNavBar(testTheme(), testStyles())
	nb.SetWidth(200)
	nb.SetActive(router.Files)

	r, ok := nb.At(1)
	if !ok || r.Path != router.Home {
		t.Fatalf("At(1) = %+v, %v; want home", r, ok)
	}
	if _, ok := nb.At(0); ok {
		t.Error("At(0) should be out of range")
	}
	if _, ok := nb.At(len(router.Menu()) + 1); ok {
		t.Error("At past the menu should be out of range")
	}
	if view := nb.View(); !strings.Contains(view, "Files") {
		t.Errorf("nav bar should list Files, got %q", view)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Modal
// ─────────────────────────────────────────────────────────────────────────────

func TestModal_DefaultsToCancel(t *testing.T) {
	m := NewModal(testTheme())
	m.Show(Confirm{Title: "Delete file", Subject: "contract.pdf", OnConfirm: msgs.ConfirmDeleteMsg{Target: "file", ID: "7"}})

	if !m.Visible {
		t.Fatal("modal should be visible after Show")
	}
	m, cmd := m.Update(specialKeyMsg(tea.KeyEnter))
	if m.Visible {
		t.Fatal("enter should close the modal")
	}
	for _, msg := range collect(cmd) {
		if _, ok := msg.(msgs.ConfirmDeleteMsg); ok {
			t.Fatal("enter on Cancel must not confirm")
		}
	}
}

func TestModal_ConfirmWithTabEnterOrY(t *testing.T) {
	confirm := msgs.ConfirmDeleteMsg{Target: "company", ID: "3"}
	for _, keys := range [][]tea.KeyMsg{
		{specialKeyMsg(tea.KeyTab), specialKeyMsg(tea.KeyEnter)},
		{keyMsg("y")},
	} {
		m := NewModal(testTheme())
		m.Show(Confirm{Title: "Delete company", Subject: "Acme", OnConfirm: confirm})
		var cmd tea.Cmd
		for _, k := range keys {
			m, cmd = m.Update(k)
		}
		var got bool
		for _, msg := range collect(cmd) {
			if c, ok := msg.(msgs.ConfirmDeleteMsg); ok && c == confirm {
				got = true
			}
		}
		if !got {
			t.Errorf("keys %v should confirm", keys)
		}
	}
}

func TestModal_EscClosesAndIgnoresWhenHidden(t *testing.T) {
	m := NewModal(testTheme())
	if _, cmd := m.Update(keyMsg("y")); cmd != nil {
		t.Fatal("hidden modal should ignore input")
	}
	if m.View() != "" {
		t.Fatal("hidden modal should render nothing")
	}

	m.Show(Confirm{Title: "Delete", OnConfirm: msgs.ConfirmDeleteMsg{}})
	m, cmd := m.Update(specialKeyMsg(tea.KeyEscape))
	if m.Visible {
		t.Fatal("esc should close")
	}
	got := collect(cmd)
	if len(got) != 1 {
		t.Fatalf("expected one message, got %v", got)
	}
	if mode, ok := got[0].(msgs.SetModeMsg); !ok || mode.Mode != msgs.ModeNormal {
		t.Fatalf("expected SetModeMsg{ModeNormal}, got %#v", got[0])
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CommandPalette
// ─────────────────────────────────────────────────────────────────────────────

func TestCommandPalette_FuzzyFilter(t *testing.T) {
	p := NewCommandPalette(testTheme())
	p.Open()
	all := p.Len()
	if all == 0 {
		t.Fatal("palette should have commands")
	}

	for _, r := range "theme" {
		p, _ = p.Update(keyMsg(string(r)))
	}
	if p.Len() != 1 {
		t.Fatalf("fuzzy filter should narrow %d commands to 1, got %d", all, p.Len())
	}
	if p.shown[0].Name != "Switch theme" {
		t.Errorf("best match = %q, want Switch theme", p.shown[0].Name)
	}
	if len(p.shown[0].matched) != len("theme") {
		t.Errorf("matched offsets = %v, want one per query rune", p.shown[0].matched)
	}
}

func TestCommandPalette_CompanyPicker(t *testing.T) {
	p := NewCommandPalette(testTheme())
	p.OpenCompanyPicker([]model.Company{
		{ID: "1", CompanyName: "Acme Trading"},
		{ID: "2", CompanyName: "Blue River Works"},
	})
	for _, r := range "river" {
		p, _ = p.Update(keyMsg(string(r)))
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 match, got %d", p.Len())
	}

	p, cmd := p.Update(specialKeyMsg(tea.KeyEnter))
	if p.Visible {
		t.Fatal("palette should close after selection")
	}
	var picked *model.Company
	for _, msg := range collect(cmd) {
		if sel, ok := msg.(msgs.CompanySelectedMsg); ok {
			picked = &sel.Company
		}
	}
	if picked == nil || picked.ID != "2" {
		t.Fatalf("expected company 2 selected, got %+v", picked)
	}
}

func TestCommandPalette_NavigationClamps(t *testing.T) {
	p := NewCommandPalette(testTheme())
	p.OpenThemePicker(theme.Names())

	p, _ = p.Update(specialKeyMsg(tea.KeyUp))
	if p.cursor != 0 {
		t.Fatalf("cursor should stay at 0, got %d", p.cursor)
	}
	for range 20 {
		p, _ = p.Update(specialKeyMsg(tea.KeyDown))
	}
	if p.cursor != p.Len()-1 {
		t.Fatalf("cursor = %d, want %d", p.cursor, p.Len()-1)
	}

	_, cmd := p.Update(specialKeyMsg(tea.KeyEnter))
	var name string
	for _, msg := range collect(cmd) {
		if sw, ok := msg.(msgs.SwitchThemeMsg); ok {
			name = sw.Name
		}
	}
	if name != "Nord" {
		t.Fatalf("last theme selected = %q, want Nord", name)
	}
}

func TestCommandPalette_ScrollsWithCursor(t *testing.T) {
	var companies []model.Company
	for i := range 30 {
		companies = append(companies, model.Company{ID: fmt.Sprint(i), CompanyName: fmt.Sprintf("公司 %02d", i)})
	}
	p := NewCommandPalette(testTheme())
	p.OpenCompanyPicker(companies)
	for range 20 {
		p, _ = p.Update(specialKeyMsg(tea.KeyDown))
	}
	if p.offset == 0 {
		t.Fatal("offset should follow the cursor past the first screen")
	}
	view := p.View()
	if !strings.Contains(view, "公司 20") || strings.Contains(view, "公司 00") {
		t.Errorf("view should show the cursor row and hide the top:\n%s", view)
	}
	if !strings.Contains(view, "30/30") {
		t.Error("header should count matches")
	}
}

func TestCommandPalette_NoMatchesEnterDoesNothing(t *testing.T) {
	p := NewCommandPalette(testTheme())
	p.Open()
	for _, r := range "zzzzqqq" {
		p, _ = p.Update(keyMsg(string(r)))
	}
	if p.Len() != 0 {
		t.Fatalf("expected no matches, got %d", p.Len())
	}
	p, cmd := p.Update(specialKeyMsg(tea.KeyEnter))
	if cmd != nil || !p.Visible {
		t.Fatal("enter without matches should keep the palette open")
	}
	if !strings.Contains(p.View(), "no matches") {
		t.Error("view should say there are no matches")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Help and Details
// ─────────────────────────────────────────────────────────────────────────────

func TestHelp_ListsEnabledBindings(t *testing.T) {
	hidden := key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "secret"))
	hidden.SetEnabled(false)
	h := NewHelp(testTheme(), []HelpSection{{
		Title: "Upload",
		Bindings: []key.Binding{
			key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "start upload")),
			hidden,
		},
	}})
	h.SetSize(100, 40)
	h.Toggle()
	if !h.Visible {
		t.Fatal("help should be visible after Toggle")
	}
	view := h.View()
	if !strings.Contains(view, "Upload") || !strings.Contains(view, "start upload") {
		t.Errorf("help view missing section or binding:\n%s", view)
	}
	if strings.Contains(view, "secret") {
		t.Error("disabled bindings should be hidden")
	}
	h, cmd := h.Update(keyMsg("?"))
	if h.Visible || cmd == nil {
		t.Fatal("? should close help and reset the mode")
	}
}

func TestDetails_View(t *testing.T) {
	d := NewDetails(testStyles())
	d.SetSize(40, 10)
	if !strings.Contains(d.View(), "nothing selected") {
		t.Error("empty details should say nothing is selected")
	}

	d.SetPairs("Acme", []KVPair{{"Phone", "13800000000"}, {"Remarks", ""}})
	view := d.View()
	if !strings.Contains(view, "Acme") || !strings.Contains(view, "13800000000") {
		t.Errorf("details should show title and values, got %q", view)
	}
	pairs := d.Pairs()
	pairs[0].Value = "changed"
	if d.Pairs()[0].Value != "13800000000" {
		t.Error("Pairs should return a copy")
	}
}

func TestModal_ViewShowsSubjectAndAction(t *testing.T) {
	m := NewModal(testTheme())
	m.Show(Confirm{Title: "Delete contract", Subject: "华东 项目合同 1", Warning: "This cannot be undone.", Action: "Remove"})
	view := m.View()
	for _, want := range []string{"Delete contract", "华东 项目合同 1", "Remove", "Cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if m.Title() != "Delete contract" {
		t.Errorf("Title() = %q", m.Title())
	}
}
