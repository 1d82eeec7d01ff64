package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/ui/components"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
)

// navigate switches to path through the router guard and loads the page.
func (a App) navigate(path string) (tea.Model, tea.Cmd) {
	route, err := a.router.Navigate(a.ctx, path)
	if err != nil {
		a.logger.Warn("checking selected company", zap.Error(err))
		a.deps.Board.Fail(err)
	}
	if route.Path != path && route.Path == router.CompanyLogin && router.Match(path).RequiresAuth {
		a.deps.Board.Info("select a company first")
	}
	a.banners.Sync(a.deps.Now())
	return a.show(route)
}

func (a App) back() (tea.Model, tea.Cmd) {
	route, ok := a.router.Back()
	if !ok {
		return a, nil
	}
	return a.show(route)
}

func (a App) show(route router.Route) (tea.Model, tea.Cmd) {
	changed := route.Path != a.route.Path
	a.route = route
	a.navBar.SetActive(route.Path)
	a.statusBar.SetTitle(route.Title)
	if changed {
		a.search.SetValue("")
		a.search.Blur()
		a.pathInput.Blur()
		a.setMode(msgs.ModeNormal)
	}
	cmd := a.enterPage()
	a.syncDetails()
	return a, cmd
}

// enterPage returns the loads the current page needs.
func (a *App) enterPage() tea.Cmd {
	switch a.route.Path {
	case router.Home, router.Files:
		return a.loadFiles()
	case router.CompanyLogin, router.CompanyInfo:
		return a.loadCompanies()
	case router.ContractInfo:
		return a.loadContracts()
	case router.ContractPreview:
		if a.contract == nil {
			c, err := a.deps.Session.Contract(a.ctx)
			if err != nil {
				a.logger.Warn("reading stored contract", zap.Error(err))
			}
			a.contract = c
		}
		return a.loadPreview()
	case router.Upload:
		if a.company != nil {
			a.batch.SetCompany(a.company.ID)
		}
	}
	return nil
}

func (a *App) restoreSession() tea.Cmd {
	session, ctx := a.deps.Session, a.ctx
	return func() tea.Msg {
		id, ok, err := session.SelectedCompany(ctx)
		if err != nil || !ok {
			return msgs.SessionRestoredMsg{Err: err}
		}
		c, err := session.Company(ctx)
		if err != nil {
			return msgs.SessionRestoredMsg{Err: err}
		}
		if c == nil || c.ID != id {
			c = &model.Company{ID: id, CompanyName: id}
		}
		return msgs.SessionRestoredMsg{Company: c}
	}
}

func (a *App) setCompany(c model.Company) {
	a.company = &c
	a.statusBar.SetCompany(c.CompanyName)
	a.contracts.SetCompany(c.ID)
	a.batch.SetCompany(c.ID)
	a.contractCursor = 0
}

// selectCompany stores c as the working company and opens next.
func (a App) selectCompany(c model.Company, next string) (tea.Model, tea.Cmd) {
	if err := a.deps.Session.SelectCompany(a.ctx, c.ID); err != nil {
		a.deps.Board.Fail(err)
		a.banners.Sync(a.deps.Now())
		return a, nil
	}
	if err := a.deps.Session.SaveCompany(a.ctx, c); err != nil {
		a.logger.Warn("saving company info", zap.Error(err))
	}
	if a.company == nil || a.company.ID != c.ID {
		a.contract = nil
		a.preview = nil
		if err := a.deps.Session.ClearContract(a.ctx); err != nil {
			a.logger.Warn("clearing contract info", zap.Error(err))
		}
	}
	a.setCompany(c)
	a.deps.Board.Success("selected " + c.CompanyName)
	return a.navigate(next)
}

func (a *App) loadCompanies() tea.Cmd {
	a.loading++
	list, ctx := a.companies, a.ctx
	return func() tea.Msg {
		return msgs.CompaniesLoadedMsg{Err: list.Load(ctx)}
	}
}

func (a *App) loadContracts() tea.Cmd {
	a.loading++
	list, ctx := a.contracts, a.ctx
	return func() tea.Msg {
		return msgs.ContractsLoadedMsg{Err: list.Load(ctx)}
	}
}

// loadFiles refreshes the file page, switching the company filter to the
// selected company first when it changed.
func (a *App) loadFiles() tea.Cmd {
	a.loading++
	list, ctx := a.files, a.ctx
	companyID := ""
	if a.company != nil {
		companyID = a.company.ID
	}
	return func() tea.Msg {
		if list.Query().CompanyID != companyID {
			return msgs.FilesLoadedMsg{Err: list.SetCompany(ctx, companyID)}
		}
		return msgs.FilesLoadedMsg{Err: list.Refresh(ctx)}
	}
}

func (a *App) loadPreview() tea.Cmd {
	a.preview = nil
	if a.contract == nil || a.contract.FileID == "" {
		return nil
	}
	a.loading++
	svc, ctx, board := a.deps.Services.Files, a.ctx, a.deps.Board
	fileID, companyID := a.contract.FileID, a.contract.CompanyID.String()
	return func() tea.Msg {
		p, err := svc.Preview(ctx, fileID, companyID)
		if err != nil {
			board.Fail(err)
		}
		return msgs.PreviewLoadedMsg{FileID: fileID, Preview: p, Err: err}
	}
}

// confirmDelete asks before removing the record under the cursor.
func (a *App) confirmDelete() {
	var target, id, name string
	switch a.route.Path {
	case router.CompanyInfo:
		if c, ok := a.currentCompany(); ok {
			target, id, name = "company", c.ID, c.CompanyName
		}
	case router.ContractInfo:
		if c, ok := a.currentContract(); ok {
			target, id, name = "contract", c.ID.String(), c.ContractTitle
		}
	case router.Files:
		if f, ok := a.currentFile(); ok {
			target, id, name = "file", f.ID.String(), f.OriginalName
		}
	}
	if id == "" {
		return
	}
	if name == "" {
		name = id
	}
	a.setMode(msgs.ModeModal)
	a.modal.Show(components.Confirm{
		Title:     "Delete " + target,
		Subject:   name,
		Warning:   "This cannot be undone.",
		OnConfirm: msgs.ConfirmDeleteMsg{Target: target, ID: id},
	})
}

func (a *App) deleteCmd(msg msgs.ConfirmDeleteMsg) tea.Cmd {
	ctx, companies, contracts, files := a.ctx, a.companies, a.contracts, a.files
	var run func() error
	switch msg.Target {
	case "company":
		run = func() error { return companies.Delete(ctx, msg.ID) }
	case "contract":
		run = func() error { return contracts.Delete(ctx, msg.ID) }
	case "file":
		run = func() error { return files.Delete(ctx, msg.ID) }
	default:
		return nil
	}
	return func() tea.Msg {
		return msgs.DeletedMsg{Target: msg.Target, ID: msg.ID, Err: run()}
	}
}

func (a App) handleDeleted(msg msgs.DeletedMsg) (tea.Model, tea.Cmd) {
	a.done()
	a.banners.Sync(a.deps.Now())
	if msg.Err != nil {
		return a, nil
	}
	switch msg.Target {
	case "company":
		a.companyCursor = clampCursor(a.companyCursor, len(a.companies.Page().Items))
		if a.company != nil && a.company.ID == msg.ID {
			if err := a.deps.Session.Clear(a.ctx); err != nil {
				a.logger.Warn("clearing session", zap.Error(err))
			}
			a.company = nil
			a.contract = nil
			a.statusBar.SetCompany("")
			a.syncDetails()
			return a.navigate(router.CompanyLogin)
		}
	case "contract":
		a.contractCursor = clampCursor(a.contractCursor, len(a.contracts.Page().Items))
	case "file":
		a.fileCursor = clampCursor(a.fileCursor, len(a.files.Page().Items))
	}
	a.syncDetails()
	return a, nil
}

// openContract remembers the contract under the cursor and shows its
// preview.
func (a App) openContract() (tea.Model, tea.Cmd) {
	c, ok := a.currentContract()
	if !ok {
		return a, nil
	}
	if err := a.deps.Session.SaveContract(a.ctx, c); err != nil {
		a.logger.Warn("saving contract info", zap.Error(err))
	}
	a.contract = &c
	a.preview = nil
	if a.route.Path == router.ContractPreview {
		cmd := a.loadPreview()
		a.syncDetails()
		return a, cmd
	}
	return a.navigate(router.ContractPreview)
}

func (a App) currentCompany() (model.Company, bool) {
	items := a.companies.Page().Items
	if a.companyCursor < 0 || a.companyCursor >= len(items) {
		return model.Company{}, false
	}
	return items[a.companyCursor], true
}

func (a App) currentContract() (model.Contract, bool) {
	items := a.contracts.Page().Items
	if a.contractCursor < 0 || a.contractCursor >= len(items) {
		return model.Contract{}, false
	}
	return items[a.contractCursor], true
}

func (a App) currentFile() (model.FileItem, bool) {
	items := a.files.Page().Items
	if a.fileCursor < 0 || a.fileCursor >= len(items) {
		return model.FileItem{}, false
	}
	return items[a.fileCursor], true
}

// syncDetails fills the side panel from the record under the cursor.
func (a *App) syncDetails() {
	switch a.route.Path {
	case router.CompanyLogin, router.CompanyInfo:
		c, ok := a.currentCompany()
		if !ok {
			a.details.SetPairs("Company", nil)
			return
		}
		a.details.SetPairs(c.CompanyName, companyPairs(c))
	case router.ContractInfo:
		c, ok := a.currentContract()
		if !ok {
			a.details.SetPairs("Contract", nil)
			return
		}
		a.details.SetPairs(c.ContractTitle, contractPairs(c))
	case router.ContractPreview:
		if a.contract == nil {
			a.details.SetPairs("Contract", nil)
			return
		}
		pairs := contractPairs(*a.contract)
		if a.preview != nil {
			pairs = append(pairs,
				components.KVPair{Key: "File", Value: a.preview.FileName},
				components.KVPair{Key: "Type", Value: a.preview.MimeType},
				components.KVPair{Key: "Bytes", Value: fmt.Sprint(a.preview.FileSize)},
			)
		}
		a.details.SetPairs(a.contract.ContractTitle, pairs)
	case router.Files:
		f, ok := a.currentFile()
		if !ok {
			a.details.SetPairs("File", nil)
			return
		}
		a.details.SetPairs(f.OriginalName, filePairs(f, a.deps.Services.Files.DownloadURL(f.ID.String())))
	}
}

func (a App) counts() string {
	switch a.route.Path {
	case router.CompanyLogin, router.CompanyInfo:
		p := a.companies.Page()
		return fmt.Sprintf("%d companies", p.Total)
	case router.ContractInfo:
		return fmt.Sprintf("%d contracts", a.contracts.Page().Total)
	case router.Files:
		return fmt.Sprintf("%d files", a.files.Page().Total)
	case router.Upload:
		return fmt.Sprintf("%d pending", a.batch.Len())
	}
	return ""
}
