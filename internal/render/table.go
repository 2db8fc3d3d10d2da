package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/synth"
)

// Table draws the current page of a table view with a bordered lipgloss
// table. The header of the sort column carries an arrow; a footer shows the
// page position when there is more than one page.
func Table(view synth.TableView, lang locale.Language) string {
	theme := GetTUITheme()
	cat := locale.Default()
	t := view.Table()
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(t.Title))
	b.WriteString("\n")

	if s := view.Search(); s != "" {
		b.WriteString(dim.Render(cat.Text(lang, locale.KeySearch)+" "+s) + "\n")
	}

	rows := view.Rows()
	if len(rows) == 0 {
		b.WriteString(dim.Render(cat.Text(lang, locale.KeyNoRows)))
		return b.String()
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(sortedHeaders(view)...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	b.WriteString(tbl.Render())

	if total := view.TotalPages(); total > 1 {
		b.WriteString("\n" + dim.Render(cat.Format(lang, locale.KeyPage, view.Page(), total)))
	}
	return b.String()
}

func sortedHeaders(view synth.TableView) []string {
	headers := append([]string(nil), view.Table().Headers...)
	col, dir := view.SortColumn()
	if col >= 0 && col < len(headers) {
		if dir == synth.SortDesc {
			headers[col] += " ▼"
		} else {
			headers[col] += " ▲"
		}
	}
	return headers
}

// TableMarkdown renders every row of t as a GitHub-flavoured markdown table
func TableMarkdown(t models.DataTable) string {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString("**" + t.Title + "**\n\n")
	}

	b.WriteString("|")
	for _, h := range t.Headers {
		b.WriteString(" " + escapeCell(h) + " |")
	}
	b.WriteString("\n|")
	for range t.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		b.WriteString("|")
		for _, c := range row {
			b.WriteString(" " + escapeCell(c) + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
