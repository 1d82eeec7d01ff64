package app

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
)

var (
	companySortKeys  = []string{controller.SortUpdatedAt, controller.SortCompanyName}
	contractSortKeys = []string{controller.SortUpdatedAt, controller.SortAmount, controller.SortTitle}
	fileTypeCycle    = []model.FileType{0, model.FileTypeContract, model.FileTypeDrawing}
)

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays take every key while visible.
	if a.palette.Visible {
		var cmd tea.Cmd
		a.palette, cmd = a.palette.Update(msg)
		return a, cmd
	}
	if a.modal.Visible {
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Update(msg)
		return a, cmd
	}
	if a.help.Visible {
		var cmd tea.Cmd
		a.help, cmd = a.help.Update(msg)
		return a, cmd
	}

	switch a.mode {
	case msgs.ModeSearch:
		return a.updateSearch(msg)
	case msgs.ModeInsert:
		return a.updatePathInput(msg)
	}

	if key.Matches(msg, a.keys.Dismiss) && len(a.banners.Active()) > 0 {
		var cmd tea.Cmd
		a.banners, cmd = a.banners.Update(msg)
		return a, cmd
	}

	if cmd, ok := a.handleGlobalKey(msg); ok {
		return a, cmd
	}
	if key.Matches(msg, a.keys.GoTo) {
		if r, ok := a.navBar.At(int(msg.String()[0] - '0')); ok {
			return a.navigate(r.Path)
		}
	}

	switch a.route.Path {
	case router.CompanyLogin, router.CompanyInfo:
		return a.handleCompanyKey(msg)
	case router.ContractInfo:
		return a.handleContractKey(msg)
	case router.ContractPreview:
		if key.Matches(msg, a.keys.CopyURL) && a.contract != nil && a.contract.FileID != "" {
			return a, copyCmd(a.deps.Services.Files.DownloadURL(a.contract.FileID))
		}
	case router.Files:
		return a.handleFileKey(msg)
	case router.Upload:
		return a.handleUploadKey(msg)
	}
	return a, nil
}

func (a App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.CommandPalette):
		return func() tea.Msg { return msgs.OpenCommandPaletteMsg{} }, true
	case key.Matches(msg, a.keys.Help):
		return func() tea.Msg { return msgs.ShowHelpMsg{} }, true
	case key.Matches(msg, a.keys.Back):
		return func() tea.Msg { return msgs.BackMsg{} }, true
	case key.Matches(msg, a.keys.Refresh):
		return func() tea.Msg { return msgs.RefreshMsg{} }, true
	case key.Matches(msg, a.keys.SelectCompany):
		return func() tea.Msg { return msgs.NavigateMsg{Path: router.CompanyLogin} }, true
	}
	return nil, false
}

func (a App) handleCompanyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := a.companies.Page()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.companyCursor = clampCursor(a.companyCursor-1, len(page.Items))
	case key.Matches(msg, a.keys.Down):
		a.companyCursor = clampCursor(a.companyCursor+1, len(page.Items))
	case key.Matches(msg, a.keys.PrevPage):
		if page.HasPrev() {
			a.companies.SetPage(page.Page - 1)
			a.companyCursor = 0
		}
	case key.Matches(msg, a.keys.NextPage):
		if page.HasNext() {
			a.companies.SetPage(page.Page + 1)
			a.companyCursor = 0
		}
	case key.Matches(msg, a.keys.Search):
		if a.route.Path == router.CompanyLogin {
			// the login page searches through the fuzzy picker
			a.setMode(msgs.ModeCommandPalette)
			a.palette.OpenCompanyPicker(a.companies.All())
			return a, nil
		}
		return a.startSearch(a.companies.View().Query)
	case key.Matches(msg, a.keys.Sort):
		a.companies.SetSort(nextKey(companySortKeys, a.companies.View().Sort.Key), listview.Desc)
		a.companyCursor = 0
	case key.Matches(msg, a.keys.SortDir):
		a.companies.SortBy(a.companies.View().Sort.Key)
	case key.Matches(msg, a.keys.Open):
		if c, ok := a.currentCompany(); ok {
			next := router.CompanyInfo
			if a.route.Path == router.CompanyInfo {
				next = router.ContractInfo
			}
			return a.selectCompany(c, next)
		}
	case key.Matches(msg, a.keys.Delete):
		if a.route.Path == router.CompanyInfo {
			a.confirmDelete()
		}
	}
	a.syncDetails()
	return a, nil
}

func (a App) handleContractKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := a.contracts.Page()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.contractCursor = clampCursor(a.contractCursor-1, len(page.Items))
	case key.Matches(msg, a.keys.Down):
		a.contractCursor = clampCursor(a.contractCursor+1, len(page.Items))
	case key.Matches(msg, a.keys.PrevPage):
		if page.HasPrev() {
			a.contracts.SetPage(page.Page - 1)
			a.contractCursor = 0
		}
	case key.Matches(msg, a.keys.NextPage):
		if page.HasNext() {
			a.contracts.SetPage(page.Page + 1)
			a.contractCursor = 0
		}
	case key.Matches(msg, a.keys.Search):
		return a.startSearch(a.contracts.View().Query)
	case key.Matches(msg, a.keys.Sort):
		a.contracts.SetSort(nextKey(contractSortKeys, a.contracts.View().Sort.Key), listview.Desc)
		a.contractCursor = 0
	case key.Matches(msg, a.keys.SortDir):
		a.contracts.SortBy(a.contracts.View().Sort.Key)
	case key.Matches(msg, a.keys.Open):
		return a.openContract()
	case key.Matches(msg, a.keys.Delete):
		a.confirmDelete()
	}
	a.syncDetails()
	return a, nil
}

func (a App) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := a.files.Page()
	list, ctx := a.files, a.ctx
	switch {
	case key.Matches(msg, a.keys.Up):
		a.fileCursor = clampCursor(a.fileCursor-1, len(page.Items))
	case key.Matches(msg, a.keys.Down):
		a.fileCursor = clampCursor(a.fileCursor+1, len(page.Items))
	case key.Matches(msg, a.keys.PrevPage):
		if page.Page > 1 {
			a.loading++
			a.fileCursor = 0
			return a, func() tea.Msg { return msgs.FilesLoadedMsg{Err: list.SetPage(ctx, page.Page-1)} }
		}
	case key.Matches(msg, a.keys.NextPage):
		if page.Page < page.TotalPages {
			a.loading++
			a.fileCursor = 0
			return a, func() tea.Msg { return msgs.FilesLoadedMsg{Err: list.SetPage(ctx, page.Page+1)} }
		}
	case key.Matches(msg, a.keys.CycleType):
		next := nextType(list.Query().Type)
		a.loading++
		a.fileCursor = 0
		return a, func() tea.Msg { return msgs.FilesLoadedMsg{Err: list.SetType(ctx, next)} }
	case key.Matches(msg, a.keys.Search):
		return a.startSearch(list.Query().Search)
	case key.Matches(msg, a.keys.CopyURL):
		if f, ok := a.currentFile(); ok {
			return a, copyCmd(a.deps.Services.Files.DownloadURL(f.ID.String()))
		}
	case key.Matches(msg, a.keys.Delete):
		a.confirmDelete()
	}
	a.syncDetails()
	return a, nil
}

func (a App) startSearch(current string) (tea.Model, tea.Cmd) {
	a.search.SetValue(current)
	a.search.CursorEnd()
	a.setMode(msgs.ModeSearch)
	cmd := a.search.Focus()
	return a, cmd
}

// updateSearch edits the search box. Local lists filter as the query
// changes; the server-side file list is queried on enter.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.search.Blur()
		a.setMode(msgs.ModeNormal)
		return a, nil
	case "enter":
		a.search.Blur()
		a.setMode(msgs.ModeNormal)
		q := strings.TrimSpace(a.search.Value())
		if a.route.Path == router.Files {
			list, ctx := a.files, a.ctx
			a.loading++
			a.fileCursor = 0
			return a, func() tea.Msg { return msgs.FilesLoadedMsg{Err: list.SetSearch(ctx, q)} }
		}
		a.applySearch(q)
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.route.Path != router.Files {
		a.applySearch(a.search.Value())
	}
	return a, cmd
}

func (a *App) applySearch(q string) {
	switch a.route.Path {
	case router.CompanyLogin, router.CompanyInfo:
		a.companies.Search(q)
		a.companyCursor = 0
	case router.ContractInfo:
		a.contracts.Search(q)
		a.contractCursor = 0
	}
	a.syncDetails()
}

func nextKey(keys []string, current string) string {
	for i, k := range keys {
		if k == current {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

func nextType(current model.FileType) model.FileType {
	for i, t := range fileTypeCycle {
		if t == current {
			return fileTypeCycle[(i+1)%len(fileTypeCycle)]
		}
	}
	return 0
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return msgs.CopiedMsg{Text: text, Err: clipboard.WriteAll(text)}
	}
}
