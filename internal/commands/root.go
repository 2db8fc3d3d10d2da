// Package commands provides CLI commands for dstchat.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/diogo/dstchat/internal/config"
	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/locale"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// cli carries state shared by every subcommand of one invocation
type cli struct {
	deps   *Dependencies
	cfg    config.Config
	logger *zap.Logger

	verbose  bool
	langFlag string
}

// NewRootCmd creates the dstchat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	c := &cli{deps: deps, logger: zap.NewNop()}

	var ask askOptions
	root := &cobra.Command{
		Use:   "dstchat [question]",
		Short: "Explore Danish statistics from the terminal",
		Long: `dstchat answers questions about Danish statistics with charts and tables.
Questions are matched to topics such as population, unemployment, GDP,
education and regional data.

Examples:
  dstchat chat                             Start interactive chat
  dstchat "How has the population grown?"  Ask a single question
  dstchat ask --json "unemployment"        Print the reply as JSON
  cat questions.txt | dstchat              One question per line
  dstchat serve                            Serve the HTTP and WebSocket API`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "dstchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if len(args) > 0 {
				return c.runAsk(cmd.Context(), []string{strings.Join(args, " ")}, ask)
			}

			if deps.StdinPiped() {
				questions, err := readQuestions(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				if len(questions) > 0 {
					return c.runAsk(cmd.Context(), questions, ask)
				}
			}

			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVar(&c.verbose, "verbose", false, "Log to stderr")
	root.PersistentFlags().StringVarP(&c.langFlag, "lang", "l", "", "Language for replies (en, da)")
	root.Flags().BoolP("version", "v", false, "Show version and exit")
	ask.register(root)

	root.AddCommand(
		newAskCmd(c),
		newChatCmd(c),
		newSuggestionsCmd(c),
		newConfigCmd(c),
		newServeCmd(c),
	)
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	return root
}

// setup loads configuration and builds the logger
func (c *cli) setup() error {
	cfg, err := c.deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if c.langFlag != "" {
		if _, err := locale.Parse(c.langFlag); err != nil {
			return err
		}
	}

	if c.verbose || c.cfg.Verbose {
		logger, err := newLogger(zapcore.DebugLevel)
		if err != nil {
			return err
		}
		c.logger = logger
	}
	return nil
}

// language resolves the flag, then config, then the process locale
func (c *cli) language() locale.Language {
	if lang, err := locale.Parse(c.langFlag); err == nil {
		return lang
	}
	return c.cfg.ResolveLanguage()
}

// storeOptions are the options every store built by a command shares
func (c *cli) storeOptions(extra ...conversation.Option) []conversation.Option {
	opts := []conversation.Option{
		conversation.WithLanguage(c.language()),
		conversation.WithDelay(c.cfg.Delay()),
	}
	opts = append(opts, c.deps.StoreOptions...)
	return append(opts, extra...)
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// readQuestions returns the non-blank lines of r
func readQuestions(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
