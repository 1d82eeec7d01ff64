package layout

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCalculate_WideScreen(t *testing.T) {
	l := Calculate(160, 40)

	if l.Compact {
		t.Error("should not be compact at 160 cols")
	}
	if l.DetailWidth < minDetailWidth || l.DetailWidth > maxDetailWidth {
		t.Errorf("detail width %d outside [%d, %d]", l.DetailWidth, minDetailWidth, maxDetailWidth)
	}
	if total := l.DetailWidth + l.TableWidth; total != 160 {
		t.Errorf("widths should sum to 160, got %d", total)
	}
	if l.ContentHeight != 37 {
		t.Errorf("content height = %d, want 37", l.ContentHeight)
	}
	if l.TableRows != 33 {
		t.Errorf("table rows = %d, want 33", l.TableRows)
	}
}

func TestCalculate_NarrowScreen(t *testing.T) {
	l := Calculate(60, 20)

	if !l.Compact {
		t.Error("should be compact at 60 cols")
	}
	if l.DetailWidth != 0 {
		t.Errorf("detail panel should be hidden, width %d", l.DetailWidth)
	}
	if l.TableWidth != 60 {
		t.Errorf("table width = %d, want 60", l.TableWidth)
	}
}

func TestCalculate_Tiny(t *testing.T) {
	l := HandleResize(tea.WindowSizeMsg{Width: 10, Height: 2})
	if l.ContentHeight != 1 || l.TableRows != 1 {
		t.Errorf("tiny terminal: content %d rows %d, want 1 and 1", l.ContentHeight, l.TableRows)
	}
}
