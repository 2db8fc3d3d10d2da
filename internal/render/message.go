package render

import (
	"strings"

	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/synth"
)

// Message renders a message body: its markdown content followed by any
// charts and the data table. Plain options produce markdown only, with the
// table as a markdown table and charts reduced to their titles.
func Message(msg models.Message, lang locale.Language, opts Options) (string, error) {
	if opts.Plain {
		return plainMessage(msg), nil
	}

	content, err := Markdown(msg.Content, opts)
	if err != nil {
		return "", err
	}

	parts := []string{strings.TrimRight(content, "\n")}
	width := opts.contentWidth()
	for _, v := range msg.Visualizations {
		parts = append(parts, indent(Chart(v, width), 2))
	}
	if msg.DataTable != nil {
		parts = append(parts, indent(Table(synth.NewTableView(*msg.DataTable), lang), 2))
	}
	return strings.Join(parts, "\n\n"), nil
}

func plainMessage(msg models.Message) string {
	var b strings.Builder
	b.WriteString(msg.Content)
	for _, v := range msg.Visualizations {
		b.WriteString("\n\n- chart (" + string(v.Kind) + "): " + v.Title)
	}
	if msg.DataTable != nil {
		b.WriteString("\n\n" + TableMarkdown(*msg.DataTable))
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
