package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/dstchat/internal/config"
	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether questions arrive on stdin
	StdinPiped func() bool
	// Decorated reports whether output goes to a terminal
	Decorated func() bool
	// TerminalWidth returns the output width in columns
	TerminalWidth func() int

	// LoadConfig returns the config file with environment overrides applied
	LoadConfig func() (config.Config, error)
	// ReadConfigFile returns the config file as saved
	ReadConfigFile func() (config.Config, error)
	SaveConfig     func(config.Config) error

	ExportDir  func() (string, error)
	CopyToClip func(text string) error
	RunChat    func(store *conversation.Store, opts tui.Options) error
	// StoreOptions are appended to the options of every store a command builds
	StoreOptions []conversation.Option
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		StdinPiped:     stdinPiped,
		Decorated:      isStdoutTTY,
		TerminalWidth:  getTerminalWidth,
		LoadConfig:     config.Load,
		ReadConfigFile: config.LoadConfig,
		SaveConfig:     config.SaveConfig,
		ExportDir:      config.GetExportDir,
		CopyToClip:     clipboard.WriteAll,
		RunChat:        tui.RunChat,
	}
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
