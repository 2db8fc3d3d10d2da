package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/dstchat/internal/models"
)

const (
	barGlyph   = "█"
	trackGlyph = "░"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Chart draws a visualization as text. Bar charts become horizontal bars,
// line and area charts sparklines, pies share bars and maps a ranked region
// list.
func Chart(v models.Visualization, width int) string {
	theme := GetTUITheme()
	if width <= 0 {
		width = 76
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(v.Title)
	kind := lipgloss.NewStyle().Foreground(theme.TextDim).Render("[" + string(v.Kind) + "]")

	var body string
	switch d := v.Data.(type) {
	case models.CategorySeries:
		if v.Kind == models.ChartBar {
			body = categoryBars(d, v.Config, width, theme)
		} else {
			body = sparklines(d, v.Config, width, theme)
		}
	case models.PieSeries:
		body = pieShares(d, width, theme)
	case models.RegionSeries:
		body = regionRanking(d, v.Config, width, theme)
	case models.ScatterSeries:
		body = scatterPoints(d, theme)
	default:
		body = lipgloss.NewStyle().Foreground(theme.TextDim).Render("(no data)")
	}

	return title + " " + kind + "\n" + body
}

func categoryBars(s models.CategorySeries, cfg *models.RenderConfig, width int, theme TUITheme) string {
	labelW := maxWidth(s.Labels)
	maxV := 0.0
	for _, ds := range s.Datasets {
		maxV = math.Max(maxV, maxOf(ds.Values))
	}
	barW := barWidth(width, labelW)
	label := lipgloss.NewStyle().Foreground(theme.Text).Width(labelW)
	value := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, l := range s.Labels {
		for di, ds := range s.Datasets {
			if i >= len(ds.Values) {
				continue
			}
			name := l
			if di > 0 {
				name = ""
			}
			bar := lipgloss.NewStyle().Foreground(theme.seriesColor(di, ds.Color)).
				Render(strings.Repeat(barGlyph, scale(ds.Values[i], maxV, barW)))
			fmt.Fprintf(&b, "%s %s %s\n", label.Render(name), bar, value.Render(formatValue(ds.Values[i], cfg)))
		}
	}
	if len(s.Datasets) > 1 {
		b.WriteString(legend(s.Datasets, theme))
	}
	return strings.TrimRight(b.String(), "\n")
}

func sparklines(s models.CategorySeries, cfg *models.RenderConfig, width int, theme TUITheme) string {
	names := make([]string, len(s.Datasets))
	for i, ds := range s.Datasets {
		names[i] = ds.Label
	}
	nameW := maxWidth(names)
	name := lipgloss.NewStyle().Foreground(theme.Text).Width(nameW)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	if len(s.Labels) > 0 {
		axis := s.Labels[0] + " → " + s.Labels[len(s.Labels)-1]
		b.WriteString(dim.Render(strings.Repeat(" ", nameW+1)+axis) + "\n")
	}
	for i, ds := range s.Datasets {
		line := lipgloss.NewStyle().Foreground(theme.seriesColor(i, ds.Color)).Render(spark(ds.Values))
		lo, hi := minOf(ds.Values), maxOf(ds.Values)
		rng := dim.Render(formatValue(lo, cfg) + " … " + formatValue(hi, cfg))
		fmt.Fprintf(&b, "%s %s %s\n", name.Render(ds.Label), line, rng)
	}
	return strings.TrimRight(b.String(), "\n")
}

func pieShares(s models.PieSeries, width int, theme TUITheme) string {
	total := s.Total()
	labelW := maxWidth(s.Labels)
	barW := barWidth(width, labelW)
	label := lipgloss.NewStyle().Foreground(theme.Text).Width(labelW)
	pct := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, l := range s.Labels {
		share := 0.0
		if total > 0 {
			share = s.Values[i] / total
		}
		color := ""
		if i < len(s.Colors) {
			color = s.Colors[i]
		}
		filled := scale(share, 1, barW)
		bar := lipgloss.NewStyle().Foreground(theme.seriesColor(i, color)).Render(strings.Repeat(barGlyph, filled)) +
			lipgloss.NewStyle().Foreground(theme.TextMute).Render(strings.Repeat(trackGlyph, barW-filled))
		fmt.Fprintf(&b, "%s %s %s\n", label.Render(l), bar, pct.Render(fmt.Sprintf("%5.1f%%", share*100)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func regionRanking(s models.RegionSeries, cfg *models.RenderConfig, width int, theme TUITheme) string {
	regions := append([]models.Region(nil), s.Regions...)
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Value > regions[j].Value })

	names := make([]string, len(regions))
	maxV := 0.0
	for i, r := range regions {
		names[i] = fmt.Sprintf("%d. %s", i+1, r.Name)
		maxV = math.Max(maxV, r.Value)
	}
	labelW := maxWidth(names)
	barW := barWidth(width, labelW)
	label := lipgloss.NewStyle().Foreground(theme.Text).Width(labelW)
	bar := lipgloss.NewStyle().Foreground(theme.Secondary)
	value := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, r := range regions {
		fmt.Fprintf(&b, "%s %s %s\n",
			label.Render(names[i]),
			bar.Render(strings.Repeat(barGlyph, scale(r.Value, maxV, barW))),
			value.Render(formatValue(r.Value, cfg)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func scatterPoints(s models.ScatterSeries, theme TUITheme) string {
	point := lipgloss.NewStyle().Foreground(theme.seriesColor(0, s.Color))
	var b strings.Builder
	if s.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(s.Label) + "\n")
	}
	for _, p := range s.Points {
		text := fmt.Sprintf("● (%s, %s)", formatFloat(p.X), formatFloat(p.Y))
		if p.Label != "" {
			text += " " + p.Label
		}
		b.WriteString(point.Render(text) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func legend(datasets []models.Dataset, theme TUITheme) string {
	parts := make([]string, len(datasets))
	for i, ds := range datasets {
		parts[i] = lipgloss.NewStyle().Foreground(theme.seriesColor(i, ds.Color)).Render("■") + " " + ds.Label
	}
	return strings.Join(parts, "  ") + "\n"
}

func spark(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minOf(values), maxOf(values)
	out := make([]rune, len(values))
	for i, v := range values {
		level := len(sparkLevels) - 1
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkLevels)-1)))
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}

// scale maps value onto [0, width]; any positive value gets at least one cell
func scale(value, max float64, width int) int {
	if max <= 0 || value <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(value / max * float64(width)))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

func barWidth(total, labelW int) int {
	// label, two spaces and room for the value
	w := total - labelW - 12
	if w < 10 {
		return 10
	}
	if w > 50 {
		return 50
	}
	return w
}

func maxWidth(ss []string) int {
	w := 0
	for _, s := range ss {
		if n := lipgloss.Width(s); n > w {
			w = n
		}
	}
	return w
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func formatValue(v float64, cfg *models.RenderConfig) string {
	s := formatFloat(v)
	if cfg != nil && cfg.Unit != "" {
		if cfg.Unit == "%" {
			return s + "%"
		}
		return s + " " + cfg.Unit
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
