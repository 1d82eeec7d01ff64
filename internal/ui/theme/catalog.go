package theme

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = Theme{
	Name:    "Catppuccin Mocha",
	Base:    lipgloss.Color("#1e1e2e"),
	Surface: lipgloss.Color("#313244"),
	Overlay: lipgloss.Color("#45475a"),
	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Muted:   lipgloss.Color("#585b70"),
	Accent:  lipgloss.Color("#cba6f7"),
	Red:     lipgloss.Color("#f38ba8"),
	Peach:   lipgloss.Color("#fab387"),
	Yellow:  lipgloss.Color("#f9e2af"),
	Green:   lipgloss.Color("#a6e3a1"),
	Teal:    lipgloss.Color("#94e2d5"),
	Blue:    lipgloss.Color("#89b4fa"),

	BorderFocused:   lipgloss.Color("#cba6f7"),
	BorderUnfocused: lipgloss.Color("#585b70"),
}

// CatppuccinLatte is the light variant.
var CatppuccinLatte = Theme{
	Name:    "Catppuccin Latte",
	Base:    lipgloss.Color("#eff1f5"),
	Surface: lipgloss.Color("#ccd0da"),
	Overlay: lipgloss.Color("#9ca0b0"),
	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Muted:   lipgloss.Color("#acb0be"),
	Accent:  lipgloss.Color("#8839ef"),
	Red:     lipgloss.Color("#d20f39"),
	Peach:   lipgloss.Color("#fe640b"),
	Yellow:  lipgloss.Color("#df8e1d"),
	Green:   lipgloss.Color("#40a02b"),
	Teal:    lipgloss.Color("#179299"),
	Blue:    lipgloss.Color("#1e66f5"),

	BorderFocused:   lipgloss.Color("#8839ef"),
	BorderUnfocused: lipgloss.Color("#acb0be"),
}

var Nord = Theme{
	Name:    "Nord",
	Base:    lipgloss.Color("#2e3440"),
	Surface: lipgloss.Color("#3b4252"),
	Overlay: lipgloss.Color("#434c5e"),
	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Muted:   lipgloss.Color("#4c566a"),
	Accent:  lipgloss.Color("#88c0d0"),
	Red:     lipgloss.Color("#bf616a"),
	Peach:   lipgloss.Color("#d08770"),
	Yellow:  lipgloss.Color("#ebcb8b"),
	Green:   lipgloss.Color("#a3be8c"),
	Teal:    lipgloss.Color("#8fbcbb"),
	Blue:    lipgloss.Color("#81a1c1"),

	BorderFocused:   lipgloss.Color("#88c0d0"),
	BorderUnfocused: lipgloss.Color("#4c566a"),
}

var Dracula = Theme{
	Name:    "Dracula",
	Base:    lipgloss.Color("#282a36"),
	Surface: lipgloss.Color("#44475a"),
	Overlay: lipgloss.Color("#6272a4"),
	Text:    lipgloss.Color("#f8f8f2"),
	Subtext: lipgloss.Color("#d0d0d0"),
	Muted:   lipgloss.Color("#6272a4"),
	Accent:  lipgloss.Color("#bd93f9"),
	Red:     lipgloss.Color("#ff5555"),
	Peach:   lipgloss.Color("#ffb86c"),
	Yellow:  lipgloss.Color("#f1fa8c"),
	Green:   lipgloss.Color("#50fa7b"),
	Teal:    lipgloss.Color("#8be9fd"),
	Blue:    lipgloss.Color("#6272a4"),

	BorderFocused:   lipgloss.Color("#bd93f9"),
	BorderUnfocused: lipgloss.Color("#6272a4"),
}

// Catalog maps theme names to themes.
var Catalog = map[string]Theme{}

func init() {
	for _, t := range []Theme{CatppuccinMocha, CatppuccinLatte, Nord, Dracula} {
		Catalog[normalizeKey(t.Name)] = t
	}
}

// Default returns the default theme.
func Default() Theme {
	return CatppuccinMocha
}

// Get returns a built-in theme by name.
func Get(name string) (Theme, bool) {
	t, ok := Catalog[normalizeKey(name)]
	return t, ok
}

// Names returns the built-in theme names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(Catalog))
	for _, t := range Catalog {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// CustomDir is where user themes are looked up.
func CustomDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bizdesk", "themes")
}

// Resolve looks up a theme by name: catalog, then YAML files in dir, then
// the default.
func Resolve(name, dir string) Theme {
	if t, ok := Get(name); ok {
		return t
	}
	if dir != "" {
		if t, ok := LoadCustomThemes(dir)[normalizeKey(name)]; ok {
			return t
		}
	}
	return Default()
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
