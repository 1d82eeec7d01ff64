package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
)

// Theme holds all colors for the application.
type Theme struct {
	Name string

	// Base colors
	Base    lipgloss.Color
	Surface lipgloss.Color
	Overlay lipgloss.Color

	// Text
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Muted   lipgloss.Color

	// Accents
	Accent lipgloss.Color
	Red    lipgloss.Color
	Peach  lipgloss.Color
	Yellow lipgloss.Color
	Green  lipgloss.Color
	Teal   lipgloss.Color
	Blue   lipgloss.Color

	// Semantic
	BorderFocused   lipgloss.Color
	BorderUnfocused lipgloss.Color
}

// BannerColor returns the color of a notification banner.
func (t Theme) BannerColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.Success:
		return t.Green
	case notify.Error:
		return t.Red
	case notify.Warning:
		return t.Yellow
	case notify.Info:
		return t.Blue
	default:
		return t.Text
	}
}

// FileTypeColor returns the badge color of a file type.
func (t Theme) FileTypeColor(ft model.FileType) lipgloss.Color {
	switch ft {
	case model.FileTypeContract:
		return t.Peach
	case model.FileTypeDrawing:
		return t.Teal
	default:
		return t.Muted
	}
}

// UploadColor returns the color of an upload row: red once failed, green
// when complete, yellow while moving and muted before it starts.
func (t Theme) UploadColor(progress int, failed bool) lipgloss.Color {
	switch {
	case failed:
		return t.Red
	case progress >= 100:
		return t.Green
	case progress > 0:
		return t.Yellow
	default:
		return t.Muted
	}
}
