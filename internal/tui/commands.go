package tui

import (
	"strings"
)

// slashCommand is a parsed "/name arg" input line
type slashCommand struct {
	name string
	arg  string
}

// parseSlashCommand splits input that starts with "/" into name and argument.
// ok is false for ordinary questions.
func parseSlashCommand(input string) (cmd slashCommand, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) < 2 {
		return slashCommand{}, false
	}

	name, arg, _ := strings.Cut(input[1:], " ")
	return slashCommand{
		name: strings.ToLower(name),
		arg:  strings.TrimSpace(arg),
	}, true
}

// commandHelp lists the slash commands in display order
var commandHelp = []struct {
	usage string
	desc  string
}{
	{"/clear", "clear the chat history"},
	{"/lang en|da", "switch language"},
	{"/category <name>", "toggle a suggestion category"},
	{"/filter <text>", "filter the latest table"},
	{"/sort <column>", "sort the latest table (again to reverse)"},
	{"/page next|prev|<n>", "page through the latest table"},
	{"/find <text>", "search the conversation"},
	{"/export [md|json]", "save the transcript"},
	{"/theme <name>", "change colours"},
	{"/quit", "leave"},
}

// helpText renders commandHelp on one line per command
func helpText() string {
	var sb strings.Builder
	for i, h := range commandHelp {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(h.usage)
	}
	return sb.String()
}
