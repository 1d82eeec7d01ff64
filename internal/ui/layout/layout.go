// Package layout sizes the terminal UI regions.
package layout

// PageLayout holds calculated dimensions for the page area.
type PageLayout struct {
	Width  int
	Height int

	// ContentHeight is the height minus the nav bar, banner line and
	// status bar.
	ContentHeight int
	// TableRows is the number of data rows a list page can show.
	TableRows int
	// DetailWidth is the width of the side panel showing the selected
	// record; 0 hides it.
	DetailWidth int
	TableWidth  int
	Compact     bool
}

const (
	navBarHeight    = 1
	bannerHeight    = 1
	statusBarHeight = 1
	tableChrome     = 4 // header, header rule, border
	minDetailWidth  = 30
	maxDetailWidth  = 48
)

// Calculate computes the page layout from terminal dimensions.
func Calculate(width, height int) PageLayout {
	l := PageLayout{
		Width:         width,
		Height:        height,
		ContentHeight: height - navBarHeight - bannerHeight - statusBarHeight,
	}
	if l.ContentHeight < 1 {
		l.ContentHeight = 1
	}
	l.TableRows = max(l.ContentHeight-tableChrome, 1)

	switch {
	case width < 80:
		l.Compact = true
		l.TableWidth = width
	default:
		l.DetailWidth = clamp(width/3, minDetailWidth, maxDetailWidth)
		l.TableWidth = width - l.DetailWidth
	}
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
