package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/render"
	"github.com/diogo/dstchat/internal/tui"
)

func newChatCmd(c *cli) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Ask questions about Danish statistics and get charts and tables back.
Press tab for suggested questions and type /help for commands.
Type /quit, press Esc, or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChat(theme)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "TUI colour theme ("+joinNames(render.TUIThemeNames())+")")
	return cmd
}

func (c *cli) runChat(theme string) error {
	if theme == "" {
		theme = c.cfg.TUITheme
	}
	if theme != "" && !render.SetTUITheme(theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", theme, joinNames(render.TUIThemeNames()))
	}
	tui.UpdateTheme()

	exportDir, err := c.deps.ExportDir()
	if err != nil {
		return fmt.Errorf("failed to prepare export directory: %w", err)
	}

	notifier := tui.NewNotifier()
	store := conversation.New(c.storeOptions(
		conversation.WithNotifier(notifier),
		conversation.WithLogger(c.logger),
	)...)
	defer store.Close()

	return c.deps.RunChat(store, tui.Options{
		Render:    render.OptionsFromConfig(c.cfg, 0),
		ExportDir: exportDir,
		Notifier:  notifier,
	})
}
