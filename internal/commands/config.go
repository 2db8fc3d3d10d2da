package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/dstchat/internal/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show the effective configuration, including environment overrides
(` + config.EnvLanguage + `, ` + config.EnvDelay + `, ` + config.EnvGlamour + `).

Examples:
  dstchat config
  dstchat config set language da
  dstchat config set response_delay_ms 0
  dstchat config keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(c.cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintln(c.deps.Stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting and save it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := c.deps.ReadConfigFile()
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := c.deps.SaveConfig(cfg); err != nil {
					return err
				}
				fmt.Fprintf(c.deps.Stdout, "%s = %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the settings that can be changed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(c.deps.Stdout, strings.Join(config.Keys(), "\n"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(c.deps.Stdout, path)
				return nil
			},
		},
	)
	return cmd
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
