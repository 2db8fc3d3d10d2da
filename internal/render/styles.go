package render

// Glamour built-in styles
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNotty      = "notty"
	StyleASCII      = "ascii"
)

// styleAliases maps TUI theme names onto the closest markdown style
var styleAliases = map[string]string{
	"tokyonight": StyleTokyoNight,
	"catppuccin": StyleDark,
	"nord":       StyleDark,
	"dannebrog":  StyleDark,
}

// ResolveStyle returns the glamour style for name. Empty names resolve to
// the dark style; unknown names are passed through as file paths.
func ResolveStyle(name string) string {
	if name == "" {
		return StyleDark
	}
	if alias, ok := styleAliases[name]; ok {
		return alias
	}
	return name
}

// IsBuiltinStyle reports whether name (or its alias) is a glamour built-in
func IsBuiltinStyle(name string) bool {
	switch ResolveStyle(name) {
	case StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleNotty, StyleASCII:
		return true
	default:
		return false
	}
}

// StyleInfo describes a markdown style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the built-in markdown styles
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleNotty, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}
