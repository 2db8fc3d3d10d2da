package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
)

func newSuggestionsCmd(c *cli) *cobra.Command {
	var (
		category string
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List suggested questions",
		Long: `List the suggested questions for the active language.

Examples:
  dstchat suggestions
  dstchat suggestions --lang da --category Demografi`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := c.language()
			suggestions := filterSuggestions(locale.Default().Suggestions(lang), category)

			if jsonOut {
				data, err := json.MarshalIndent(suggestions, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode suggestions: %w", err)
				}
				fmt.Fprintln(c.deps.Stdout, string(data))
				return nil
			}

			if len(suggestions) == 0 {
				fmt.Fprintf(c.deps.Stdout, "No suggestions in category %q\n", category)
				return nil
			}
			fmt.Fprint(c.deps.Stdout, formatSuggestions(suggestions, c.deps.Decorated()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list this category")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print suggestions as JSON")
	return cmd
}

// filterSuggestions keeps the suggestions in category, matched case-insensitively
func filterSuggestions(all []models.SuggestedQuery, category string) []models.SuggestedQuery {
	if category == "" {
		return all
	}
	out := []models.SuggestedQuery{}
	for _, s := range all {
		if strings.EqualFold(s.Category, category) {
			out = append(out, s)
		}
	}
	return out
}

func formatSuggestions(suggestions []models.SuggestedQuery, styled bool) string {
	categoryStyle := lipgloss.NewStyle().Foreground(colorTextDim)
	if !styled {
		categoryStyle = lipgloss.NewStyle()
	}

	var sb strings.Builder
	for _, s := range suggestions {
		sb.WriteString("  " + s.Text)
		if s.Category != "" {
			sb.WriteString("  " + categoryStyle.Render("["+s.Category+"]"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
