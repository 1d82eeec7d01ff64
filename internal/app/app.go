// Package app is the root Bubble Tea model of the bizdesk terminal UI.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/config"
	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/core/state"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/router"
	"github.com/sadopc/bizdesk/internal/service"
	"github.com/sadopc/bizdesk/internal/ui/components"
	"github.com/sadopc/bizdesk/internal/ui/layout"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/ui/theme"
	"github.com/sadopc/bizdesk/internal/upload"
	"github.com/sadopc/bizdesk/internal/validate"
)

// Deps is what the UI needs from the outside world.
type Deps struct {
	Services  *service.Services
	Transport *upload.Transport
	Session   *state.Session
	History   upload.Recorder
	Board     *notify.Board
	Logger    *zap.Logger
	Config    config.Config
	Theme     theme.Theme
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	deps   Deps
	logger *zap.Logger

	router    *router.Router
	companies *controller.CompanyList
	contracts *controller.ContractList
	files     *controller.FileList
	batch     *upload.Batch
	sink      *progressSink
	uploadCh  <-chan tea.Msg

	navBar    components.NavBar
	statusBar components.StatusBar
	banners   components.Banners
	palette   components.CommandPalette
	help      components.Help
	modal     components.Modal
	details   components.Details

	search    textinput.Model
	pathInput textinput.Model
	progress  progress.Model
	spinner   spinner.Model

	route   router.Route
	company *model.Company
	preview *model.FilePreview
	// contract is the record opened on the preview page.
	contract *model.Contract

	companyCursor  int
	contractCursor int
	fileCursor     int
	uploadCursor   int
	loading        int
	uploading      bool

	mode   msgs.AppMode
	layout layout.PageLayout
	keys   KeyMap

	theme  theme.Theme
	styles theme.Styles

	width  int
	height int
	ready  bool
}

// New creates the root model. ctx bounds every request the UI issues.
func New(ctx context.Context, deps Deps) App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Board == nil {
		deps.Board = notify.New()
	}
	if deps.Session == nil {
		deps.Session = state.NewSession(state.NewMemory())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Theme.Name == "" {
		deps.Theme = theme.Default()
	}
	logger := deps.Logger.Named("tui")

	opts := []controller.Option{
		controller.WithBoard(deps.Board),
		controller.WithLogger(logger),
		controller.WithLocale(deps.Config.Locale),
		controller.WithPageSize(deps.Config.PageSize),
	}
	sink := &progressSink{ctx: ctx}

	search := textinput.New()
	search.Placeholder = "search…"
	search.CharLimit = 64
	search.Prompt = "/ "

	pathInput := textinput.New()
	pathInput.Placeholder = "paths or globs, separated by spaces"
	pathInput.CharLimit = 1024
	pathInput.Prompt = "+ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := App{
		ctx:       ctx,
		deps:      deps,
		logger:    logger,
		router:    router.New(deps.Session),
		companies: controller.NewCompanyList(deps.Services.Companies, opts...),
		contracts: controller.NewContractList(deps.Services.Contracts, opts...),
		files: controller.NewFileList(deps.Services.Files,
			controller.WithBoard(deps.Board), controller.WithLogger(logger)),
		sink:      sink,
		search:    search,
		pathInput: pathInput,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   sp,
		route:     router.Match(router.Home),
		mode:      msgs.ModeNormal,
		keys:      DefaultKeyMap(),
	}
	a.batch = upload.NewBatch(deps.Transport, upload.BatchConfig{
		Path:     deps.Config.UploadPath,
		FileType: model.FileTypeContract,
		Limits: validate.Limits{
			MaxFiles: deps.Config.MaxFiles,
			MaxBytes: deps.Config.MaxFileBytes(),
		},
		Recorder: deps.History,
		Logger:   logger.Named("upload"),
		OnProgress: func(name string, pct int) {
			sink.send(msgs.UploadProgressMsg{Name: name, Percent: pct})
		},
		Now: deps.Now,
	})
	a.applyTheme(deps.Theme)
	return a
}

// applyTheme rebuilds every themed component. Overlays are closed.
func (a *App) applyTheme(t theme.Theme) {
	a.theme = t
	a.styles = theme.NewStyles(t)
	a.navBar = components.NewNavBar(t, a.styles)
	a.statusBar = components.NewStatusBar(t)
	a.banners = components.NewBanners(a.deps.Board, t)
	a.palette = components.NewCommandPalette(t)
	a.help = components.NewHelp(t, a.keys.HelpSections())
	a.modal = components.NewModal(t)
	a.details = components.NewDetails(a.styles)
	a.spinner.Style = lipgloss.NewStyle().Foreground(t.Accent)
	a.navBar.SetActive(a.route.Path)
	a.statusBar.SetTitle(a.route.Title)
	if a.company != nil {
		a.statusBar.SetCompany(a.company.CompanyName)
	}
	a.mode = msgs.ModeNormal
	if a.ready {
		a.resize()
	}
}

func (a *App) resize() {
	a.layout = layout.Calculate(a.width, a.height)
	a.navBar.SetWidth(a.width)
	a.statusBar.SetWidth(a.width)
	a.banners.SetWidth(a.width)
	a.help.SetSize(a.width, a.height)
	a.details.SetSize(a.layout.DetailWidth, a.layout.ContentHeight)
	a.search.Width = max(a.layout.TableWidth-8, 10)
	a.pathInput.Width = max(a.width-8, 10)
	a.progress.Width = max(min(a.width/3, 40), 10)
}

// Init restores the session and opens the home page.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.restoreSession(),
		a.loadFiles(),
		a.spinner.Tick,
		components.Tick(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case msgs.SetModeMsg:
		a.mode = msg.Mode
		a.statusBar.SetMode(msg.Mode)
		return a, nil

	case msgs.NavigateMsg:
		return a.navigate(msg.Path)

	case msgs.BackMsg:
		return a.back()

	case msgs.OpenCommandPaletteMsg:
		a.setMode(msgs.ModeCommandPalette)
		a.palette.Open()
		return a, nil

	case msgs.ShowHelpMsg:
		a.setMode(msgs.ModeModal)
		a.help.SetSize(a.width, a.height)
		a.help.Toggle()
		return a, nil

	case msgs.SwitchThemeMsg:
		if msg.Name == "" {
			a.setMode(msgs.ModeCommandPalette)
			a.palette.OpenThemePicker(theme.Names())
			return a, nil
		}
		t, ok := theme.Get(msg.Name)
		if !ok {
			a.deps.Board.Warn("unknown theme: " + msg.Name)
			return a, nil
		}
		a.applyTheme(t)
		a.deps.Board.Info("theme: " + t.Name)
		a.banners.Sync(a.deps.Now())
		return a, nil

	case msgs.RefreshMsg:
		cmd := a.enterPage()
		return a, cmd

	case msgs.BannerTickMsg:
		var cmd tea.Cmd
		a.banners, cmd = a.banners.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		m, cmd := a.progress.Update(msg)
		a.progress = m.(progress.Model)
		return a, cmd

	case msgs.SessionRestoredMsg:
		if msg.Err != nil {
			a.logger.Warn("restoring session", zap.Error(msg.Err))
		}
		if msg.Company != nil {
			a.setCompany(*msg.Company)
		}
		return a, nil

	case msgs.CompaniesLoadedMsg:
		a.done()
		a.companyCursor = clampCursor(a.companyCursor, len(a.companies.Page().Items))
		a.syncDetails()
		a.banners.Sync(a.deps.Now())
		return a, nil

	case msgs.ContractsLoadedMsg:
		a.done()
		a.contractCursor = clampCursor(a.contractCursor, len(a.contracts.Page().Items))
		a.syncDetails()
		a.banners.Sync(a.deps.Now())
		return a, nil

	case msgs.FilesLoadedMsg:
		a.done()
		a.fileCursor = clampCursor(a.fileCursor, len(a.files.Page().Items))
		a.syncDetails()
		a.banners.Sync(a.deps.Now())
		return a, nil

	case msgs.PreviewLoadedMsg:
		a.done()
		if msg.Err == nil && a.contract != nil && msg.FileID == a.contract.FileID {
			p := msg.Preview
			a.preview = &p
		}
		a.syncDetails()
		a.banners.Sync(a.deps.Now())
		return a, nil

	case msgs.CompanySelectedMsg:
		return a.selectCompany(msg.Company, router.CompanyInfo)

	case msgs.ConfirmDeleteMsg:
		a.loading++
		cmd := a.deleteCmd(msg)
		return a, cmd

	case msgs.DeletedMsg:
		return a.handleDeleted(msg)

	case msgs.UploadProgressMsg:
		return a.handleUploadProgress(msg)

	case msgs.UploadDoneMsg:
		return a.handleUploadDone(msg)

	case msgs.CopiedMsg:
		if msg.Err != nil {
			a.deps.Board.Error("copy failed: " + msg.Err.Error())
		} else {
			a.deps.Board.Success("copied download address")
		}
		a.banners.Sync(a.deps.Now())
		return a, nil
	}
	return a, nil
}

func (a *App) setMode(m msgs.AppMode) {
	a.mode = m
	a.statusBar.SetMode(m)
}

func (a *App) done() {
	if a.loading > 0 {
		a.loading--
	}
}

// View implements tea.Model.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	nav := a.navBar.View()
	content := lipgloss.NewStyle().
		Width(a.width).
		Height(a.layout.ContentHeight - lipgloss.Height(nav)).
		MaxHeight(a.layout.ContentHeight - lipgloss.Height(nav)).
		Render(a.pageView())

	a.statusBar.SetLoading(a.loading > 0 || a.uploading)
	a.statusBar.SetCounts(a.counts())
	bottom := a.statusBar.View()
	if b := a.banners.View(); b != "" {
		bottom = b + "\n" + bottom
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, nav, content, bottom)

	switch {
	case a.palette.Visible:
		return a.overlay(a.palette.View())
	case a.modal.Visible:
		return a.overlay(a.modal.View())
	case a.help.Visible:
		return a.overlay(a.help.View())
	}
	return screen
}

func (a App) overlay(box string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(a.theme.Base))
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return max(min(cursor, n-1), 0)
}
