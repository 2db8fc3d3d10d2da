// Package tui provides the terminal chat interface for dstchat.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle lipgloss.Style

	toastInfoStyle    lipgloss.Style
	toastSuccessStyle lipgloss.Style
	toastErrorStyle   lipgloss.Style

	pickerStyle         lipgloss.Style
	pickerItemStyle     lipgloss.Style
	pickerSelectedStyle lipgloss.Style
	categoryStyle       lipgloss.Style
	categoryActiveStyle lipgloss.Style
)

// Dannebrog red and white for the thinking animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#c8102e"),
	lipgloss.Color("#e23b50"),
	lipgloss.Color("#f07c8a"),
	lipgloss.Color("#ffffff"),
	lipgloss.Color("#f07c8a"),
	lipgloss.Color("#e23b50"),
}

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles from the active render theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(2)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	toastInfoStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	toastSuccessStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	toastErrorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	pickerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1)

	pickerItemStyle = lipgloss.NewStyle().
		Foreground(colorText).
		PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	categoryStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	categoryActiveStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true)
}

// FormatError returns a styled error line with a hint for the known
// failure kinds.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("⚠ %v", err)))

	switch {
	case apierrors.IsBusy(err):
		sb.WriteString("\n" + dimStyle.Render("Wait for the current answer before asking again"))
	case errors.Is(err, apierrors.ErrUnsupportedLanguage):
		sb.WriteString("\n" + dimStyle.Render("Supported languages: en, da"))
	case errors.Is(err, apierrors.ErrEmptyMessage):
		sb.WriteString("\n" + dimStyle.Render("Type a question first"))
	}

	return sb.String()
}
