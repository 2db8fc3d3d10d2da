package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the colour scheme shared by the TUI and the chart renderer
type TUITheme struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Series colours for charts whose data carries none
	Series []lipgloss.Color
}

var (
	// DannebrogTheme uses the flag red with neutral greys
	DannebrogTheme = TUITheme{
		Name:        "dannebrog",
		Description: "Dannebrog - Danish flag red on slate",

		Surface: lipgloss.Color("#1f2933"),
		Border:  lipgloss.Color("#52606d"),

		Primary:   lipgloss.Color("#c8102e"),
		Secondary: lipgloss.Color("#0ea5e9"),
		Accent:    lipgloss.Color("#f47c3c"),
		Warning:   lipgloss.Color("#f5b041"),
		Error:     lipgloss.Color("#ff5c5c"),

		Text:     lipgloss.Color("#f5f7fa"),
		TextDim:  lipgloss.Color("#9aa5b1"),
		TextMute: lipgloss.Color("#52606d"),

		Series: []lipgloss.Color{"#c8102e", "#0ea5e9", "#f47c3c", "#0c4a6e", "#334155"},
	}

	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Surface: lipgloss.Color("#24283b"),
		Border:  lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),

		Series: []lipgloss.Color{"#7aa2f7", "#9ece6a", "#bb9af7", "#e0af68", "#7dcfff"},
	}

	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",

		Surface: lipgloss.Color("#313244"),
		Border:  lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Warning:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),

		Series: []lipgloss.Color{"#89b4fa", "#a6e3a1", "#cba6f7", "#f9e2af", "#94e2d5"},
	}

	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",

		Surface: lipgloss.Color("#3b4252"),
		Border:  lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),

		Series: []lipgloss.Color{"#88c0d0", "#a3be8c", "#b48ead", "#ebcb8b", "#5e81ac"},
	}
)

var (
	themeMu      sync.RWMutex
	currentTheme = TokyoNightTheme
)

// GetTUITheme returns the active theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetTUITheme activates the theme called name and reports whether it exists
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName looks a theme up by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes lists the built-in themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		DannebrogTheme,
		CatppuccinMochaTheme,
		NordTheme,
	}
}

// TUIThemeNames returns the names of the built-in themes
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// seriesColor picks the colour for series i, preferring the colour carried by
// the data.
func (t TUITheme) seriesColor(i int, fromData string) lipgloss.Color {
	if fromData != "" {
		return lipgloss.Color(fromData)
	}
	if len(t.Series) == 0 {
		return t.Primary
	}
	return t.Series[i%len(t.Series)]
}
