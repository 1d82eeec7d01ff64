package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/output"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/components"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
	"github.com/sadopc/bizdesk/internal/upload"
	"github.com/sadopc/bizdesk/pkg/version"
)

func (a App) pageView() string {
	switch a.route.Path {
	case router.Home:
		return a.homeView()
	case router.CompanyLogin:
		return a.companyLoginView()
	case router.CompanyInfo:
		return a.withDetails(a.companyTable())
	case router.ContractInfo:
		return a.withDetails(a.contractView())
	case router.ContractPreview:
		return a.previewView()
	case router.Files:
		return a.withDetails(a.filesView())
	case router.Upload:
		return a.uploadView()
	case router.About:
		return a.aboutView()
	}
	return a.notFoundView()
}

// withDetails puts the detail panel right of main when the screen is wide
// enough.
func (a App) withDetails(main string) string {
	if a.layout.DetailWidth == 0 {
		return main
	}
	left := lipgloss.NewStyle().Width(a.layout.TableWidth).Render(main)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, a.details.View())
}

func (a App) homeView() string {
	s := a.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("File Management") + "\n\n")
	if a.company != nil {
		b.WriteString(s.Key.Render("Company  ") + s.Value.Render(a.company.CompanyName) + "\n")
	} else {
		b.WriteString(s.Warning.Render("No company selected.") + s.Hint.Render("  press c to pick one") + "\n")
	}

	stats := a.files.Stats()
	b.WriteString("\n" + s.Bold.Render("Files") + "\n")
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Key.Render("Total    "), stats.Total))
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Contract.Render("Contracts"), stats.Contracts))
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Drawing.Render("Drawings "), stats.Drawings))

	b.WriteString("\n" + s.Bold.Render("Pages") + "\n")
	for i, r := range router.Menu() {
		line := fmt.Sprintf("  %s %s", s.Key.Render(fmt.Sprint(i+1)), r.Label)
		if r.RequiresAuth && a.company == nil {
			line = s.Muted.Render(fmt.Sprintf("  %d %s", i+1, r.Label))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + s.Hint.Render("ctrl+k commands · ? help · q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (a App) companyLoginView() string {
	s := a.styles
	header := s.Title.Render("Select a company") + "\n" +
		s.Hint.Render("enter select · / fuzzy find · j/k move · h/l page") + "\n\n"
	return lipgloss.NewStyle().Padding(0, 1).Render(header + a.companyTable())
}

func (a App) searchLine(query string) string {
	if a.mode == msgs.ModeSearch {
		return a.search.View()
	}
	if query != "" {
		return a.styles.Hint.Render("/ " + query)
	}
	return ""
}

func (a App) companyTable() string {
	page := a.companies.Page()
	view := a.companies.View()
	rows := make([][]string, len(page.Items))
	for i, c := range page.Items {
		rows[i] = []string{c.CompanyName, c.Contact1, c.Phone1, c.Address, c.UpdatedAt.Format("2006-01-02")}
	}
	t := table{
		headers: []string{"Company", "Contact", "Phone", "Address", "Updated"},
		weights: []int{4, 2, 2, 4, 2},
		rows:    rows,
		cursor:  a.companyCursor,
		width:   a.tableWidth(),
		height:  a.layout.TableRows,
	}
	return joinLines(
		a.searchLine(view.Query),
		t.render(a.styles),
		a.pager(page.Page, page.TotalPages, page.Total, view.Sort),
	)
}

func (a App) contractView() string {
	s := a.styles
	page := a.contracts.Page()
	view := a.contracts.View()
	totals := a.contracts.Totals()

	summary := fmt.Sprintf("%s %s  %s %s  %s %s",
		s.Key.Render("Amount"), s.Amount.Render(output.Money(totals.Amount)),
		s.Key.Render("Paid"), s.Success.Render(output.Money(totals.Paid)),
		s.Key.Render("Outstanding"), s.Warning.Render(output.Money(totals.Outstanding)))

	rows := make([][]string, len(page.Items))
	for i, c := range page.Items {
		rows[i] = []string{
			c.ContractTitle,
			output.Money(c.ContractAmount),
			output.Money(c.PaidAmount),
			output.Money(c.Outstanding()),
			c.StartDate + " ~ " + c.EndDate,
		}
	}
	t := table{
		headers: []string{"Title", "Amount", "Paid", "Outstanding", "Period"},
		weights: []int{5, 2, 2, 2, 4},
		rows:    rows,
		cursor:  a.contractCursor,
		width:   a.tableWidth(),
		height:  a.layout.TableRows - 1,
	}
	return joinLines(
		summary,
		a.searchLine(view.Query),
		t.render(s),
		a.pager(page.Page, page.TotalPages, page.Total, view.Sort),
	)
}

func (a App) previewView() string {
	s := a.styles
	if a.contract == nil {
		return components.Centered(a.width, a.layout.ContentHeight-2,
			s.Hint.Render("No contract opened. Pick one on the Contracts page."))
	}
	d := a.details
	d.SetSize(min(a.width, 80), a.layout.ContentHeight-2)
	hint := s.Hint.Render("y copy download address · esc back")
	if a.loading > 0 {
		hint = a.spinner.View() + " " + hint
	}
	return joinLines(d.View(), hint)
}

func (a App) filesView() string {
	s := a.styles
	q := a.files.Query()
	page := a.files.Page()
	stats := a.files.Stats()

	tabs := []struct {
		t     model.FileType
		label string
	}{
		{0, fmt.Sprintf("All %d", stats.Total)},
		{model.FileTypeContract, fmt.Sprintf("Contracts %d", stats.Contracts)},
		{model.FileTypeDrawing, fmt.Sprintf("Drawings %d", stats.Drawings)},
	}
	var parts []string
	for _, tab := range tabs {
		if tab.t == q.Type {
			parts = append(parts, s.TabActive.Render(tab.label))
		} else {
			parts = append(parts, s.TabInactive.Render(tab.label))
		}
	}

	rows := make([][]string, len(page.Items))
	for i, f := range page.Items {
		rows[i] = []string{
			f.OriginalName,
			f.Type().Label(),
			output.Size(f.Size.String()),
			humanize.Time(f.UploadTime.Time),
		}
	}
	t := table{
		headers: []string{"Name", "Type", "Size", "Uploaded"},
		weights: []int{6, 2, 2, 3},
		rows:    rows,
		cursor:  a.fileCursor,
		width:   a.tableWidth(),
		height:  a.layout.TableRows - 1,
	}

	var window []string
	for _, n := range a.files.Window(7) {
		label := fmt.Sprint(n)
		if n == page.Page {
			label = s.Selected.Render(label)
		}
		window = append(window, label)
	}
	pager := s.Hint.Render(fmt.Sprintf("%d files · page ", page.Total)) + strings.Join(window, " ") +
		s.Hint.Render(" · t type · y copy · d delete")

	return joinLines(
		strings.Join(parts, " "),
		a.searchLine(q.Search),
		t.render(s),
		pager,
	)
}

func (a App) uploadView() string {
	s := a.styles
	ft := a.batch.FileType()
	company := "none selected"
	if a.company != nil {
		company = a.company.CompanyName
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Upload files") + "\n")
	b.WriteString(s.Key.Render("Company ") + s.Value.Render(company) + "   ")
	b.WriteString(s.Key.Render("Type ") + s.FileTypeStyle(ft).Render(ft.Label()) +
		s.Hint.Render(" ("+ft.Accept()+")") + "\n\n")

	items := a.batch.Items()
	if len(items) == 0 {
		b.WriteString(s.Hint.Render("No files yet. Press a to add paths.") + "\n")
	}
	nameWidth := max(a.width/2, 20)
	for i, it := range items {
		name := runewidth.FillRight(runewidth.Truncate(it.File.Name, nameWidth, "…"), nameWidth)
		line := fmt.Sprintf("%s %8s  %s", name, humanize.IBytes(uint64(max(it.File.Size, 0))), a.itemStatus(it))
		if i == a.uploadCursor {
			line = s.Cursor.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if a.uploading {
		b.WriteString(a.spinner.View() + " " + a.progress.View() + "\n")
	} else if len(items) > 0 {
		b.WriteString(a.progress.ViewAs(max(a.batchPercent(), 0)) + "\n")
	}
	if a.mode == msgs.ModeInsert {
		b.WriteString(a.pathInput.View() + "\n")
	} else {
		b.WriteString(s.Hint.Render("a add · d remove · t type · u upload · R retry failed") + "\n")
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (a App) itemStatus(it upload.Item) string {
	var label string
	progress := it.Progress
	switch it.Status {
	case upload.StatusUploading:
		label = fmt.Sprintf("%3d%%", it.Progress)
	case upload.StatusDone:
		label, progress = "done", 100
	case upload.StatusFailed:
		label = "failed: " + it.Reason
	default:
		label, progress = "pending", 0
	}
	color := a.theme.UploadColor(progress, it.Status == upload.StatusFailed)
	return lipgloss.NewStyle().Foreground(color).Render(label)
}

func (a App) aboutView() string {
	s := a.styles
	lines := []string{
		s.Title.Render("bizdesk"),
		"",
		"Companies, contracts and files from the terminal.",
		"",
		s.Key.Render("Version ") + s.Value.Render(version.Version),
		s.Key.Render("Commit  ") + s.Value.Render(version.Commit),
		s.Key.Render("Built   ") + s.Value.Render(version.Date),
		s.Key.Render("Backend ") + s.URL.Render(a.deps.Config.BaseURL),
		s.Key.Render("Theme   ") + s.Value.Render(a.theme.Name),
	}
	return components.Centered(a.width, a.layout.ContentHeight-2, strings.Join(lines, "\n"))
}

func (a App) notFoundView() string {
	s := a.styles
	return components.Centered(a.width, a.layout.ContentHeight-2,
		s.Error.Render("Page not found")+"\n\n"+s.Hint.Render("press 1 to go home"))
}

func (a App) pager(page, totalPages, total int, sort listview.SortState) string {
	if totalPages == 0 {
		totalPages = 1
	}
	return a.styles.Hint.Render(fmt.Sprintf("page %d/%d · %d total · sort %s %s · s/S sort",
		max(page, 1), totalPages, total, sort.Key, sort.Dir))
}

func (a App) tableWidth() int {
	if a.layout.DetailWidth == 0 {
		return max(a.width-2, 20)
	}
	return max(a.layout.TableWidth-2, 20)
}

func joinLines(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func companyPairs(c model.Company) []components.KVPair {
	return []components.KVPair{
		{Key: "ID", Value: c.ID},
		{Key: "Address", Value: c.Address},
		{Key: "Contact", Value: c.Contact1},
		{Key: "Phone", Value: c.Phone1},
		{Key: "Contact 2", Value: c.Contact2},
		{Key: "Phone 2", Value: c.Phone2},
		{Key: "Remarks", Value: c.Remarks},
		{Key: "Created", Value: formatTime(c.CreatedAt)},
		{Key: "Updated", Value: formatTime(c.UpdatedAt)},
	}
}

func contractPairs(c model.Contract) []components.KVPair {
	final := ""
	if c.FinalPaymentAmount != nil {
		final = output.Money(*c.FinalPaymentAmount)
		if c.FinalPaymentDate != "" {
			final += " on " + c.FinalPaymentDate
		}
	}
	return []components.KVPair{
		{Key: "ID", Value: c.ID.String()},
		{Key: "Amount", Value: output.Money(c.ContractAmount)},
		{Key: "Paid", Value: output.Money(c.PaidAmount)},
		{Key: "Outstanding", Value: output.Money(c.Outstanding())},
		{Key: "Start", Value: c.StartDate},
		{Key: "End", Value: c.EndDate},
		{Key: "Final payment", Value: final},
		{Key: "Content", Value: c.MainContent},
		{Key: "Memo", Value: c.Memo},
		{Key: "File", Value: c.FileName},
		{Key: "Updated", Value: formatTime(c.UpdatedAt)},
	}
}

func filePairs(f model.FileItem, url string) []components.KVPair {
	return []components.KVPair{
		{Key: "ID", Value: f.ID.String()},
		{Key: "Type", Value: f.Type().Label()},
		{Key: "Size", Value: output.Size(f.Size.String())},
		{Key: "Uploaded", Value: formatTime(f.UploadTime)},
		{Key: "MIME", Value: f.MimeType},
		{Key: "Company", Value: f.CompanyID},
		{Key: "Address", Value: url},
	}
}

func formatTime(t model.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// table renders rows as fixed-width columns sized by weight. Widths are
// measured in terminal cells so CJK names line up.
type table struct {
	headers []string
	weights []int
	rows    [][]string
	cursor  int
	width   int
	height  int
}

func (t table) columnWidths() []int {
	sum := 0
	for _, w := range t.weights {
		sum += w
	}
	avail := t.width - 2 - (len(t.weights) - 1)
	widths := make([]int, len(t.weights))
	used := 0
	for i, w := range t.weights {
		widths[i] = max(avail*w/sum, 3)
		used += widths[i]
	}
	widths[0] += max(avail-used, 0)
	return widths
}

func (t table) renderRow(cells []string, widths []int) string {
	out := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "\n", " ")
		}
		out[i] = runewidth.FillRight(runewidth.Truncate(cell, w, "…"), w)
	}
	return strings.Join(out, " ")
}

func (t table) render(s theme.Styles) string {
	widths := t.columnWidths()
	lines := []string{s.TableHeader.Render("  " + t.renderRow(t.headers, widths))}
	if len(t.rows) == 0 {
		lines = append(lines, s.Hint.Render("  nothing to show"))
		return strings.Join(lines, "\n")
	}

	// keep the cursor row visible
	height := max(t.height-1, 1)
	start := 0
	if t.cursor >= height {
		start = t.cursor - height + 1
	}
	end := min(start+height, len(t.rows))
	for i := start; i < end; i++ {
		row := t.renderRow(t.rows[i], widths)
		if i == t.cursor {
			lines = append(lines, s.Selected.Render("▸ "+row))
		} else {
			lines = append(lines, "  "+row)
		}
	}
	return strings.Join(lines, "\n")
}
