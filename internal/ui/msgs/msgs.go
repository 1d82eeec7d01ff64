// Package msgs holds the Bubble Tea messages shared by the terminal UI
// components and the root model.
package msgs

import (
	"time"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/upload"
)

// AppMode represents the current input mode.
type AppMode int

const (
	ModeNormal AppMode = iota
	ModeInsert
	ModeCommandPalette
	ModeModal
	ModeSearch
)

func (m AppMode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeCommandPalette:
		return "COMMAND"
	case ModeModal:
		return "MODAL"
	case ModeSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// SetModeMsg switches the input mode.
type SetModeMsg struct {
	Mode AppMode
}

// NavigateMsg opens the page at Path. Guarded pages redirect to company
// selection when no company is selected.
type NavigateMsg struct {
	Path string
}

// BackMsg returns to the previous page.
type BackMsg struct{}

// OpenCommandPaletteMsg shows the command palette.
type OpenCommandPaletteMsg struct{}

// ShowHelpMsg toggles the key binding overlay.
type ShowHelpMsg struct{}

// SwitchThemeMsg applies a theme. An empty Name opens the theme picker.
type SwitchThemeMsg struct {
	Name string
}

// RefreshMsg reloads the data of the current page.
type RefreshMsg struct{}

// BannerTickMsg prunes expired banners.
type BannerTickMsg struct {
	Now time.Time
}

// CompaniesLoadedMsg reports the end of a company list fetch.
type CompaniesLoadedMsg struct {
	Err error
}

// CompanySelectedMsg picks the company the session works with.
type CompanySelectedMsg struct {
	Company model.Company
}

// SessionRestoredMsg carries the company found in the session store at
// startup; Company is nil when none was selected.
type SessionRestoredMsg struct {
	Company *model.Company
	Err     error
}

// ContractsLoadedMsg reports the end of a contract list fetch.
type ContractsLoadedMsg struct {
	Err error
}

// FilesLoadedMsg reports the end of a file page fetch.
type FilesLoadedMsg struct {
	Err error
}

// ConfirmDeleteMsg is sent by the confirm dialog once a delete is accepted.
type ConfirmDeleteMsg struct {
	Target string // "company", "contract" or "file"
	ID     string
}

// DeletedMsg reports the end of a delete.
type DeletedMsg struct {
	Target string
	ID     string
	Err    error
}

// UploadProgressMsg reports the progress of one file; -1 means failed.
type UploadProgressMsg struct {
	Name    string
	Percent int
}

// UploadDoneMsg ends an upload run.
type UploadDoneMsg struct {
	Result upload.BatchResult
	Err    error
}

// CopiedMsg reports a clipboard write.
type CopiedMsg struct {
	Text string
	Err  error
}

// PreviewLoadedMsg carries the file metadata shown on the contract preview
// page.
type PreviewLoadedMsg struct {
	FileID  string
	Preview model.FilePreview
	Err     error
}
