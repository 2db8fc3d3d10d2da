package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/diogo/dstchat/internal/config"
	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/tui"
)

// testEnv is a Dependencies wired to in-memory streams and config
type testEnv struct {
	deps   *Dependencies
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	saved   *config.Config
	clip    string
	chatted *conversation.Store
	chatOpt tui.Options
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Language = "en"
	cfg.ResponseDelayMS = 0

	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		Stdin:          strings.NewReader(""),
		Stdout:         env.stdout,
		Stderr:         env.stderr,
		StdinPiped:     func() bool { return false },
		Decorated:      func() bool { return false },
		TerminalWidth:  func() int { return 100 },
		LoadConfig:     func() (config.Config, error) { return cfg, nil },
		ReadConfigFile: func() (config.Config, error) { return cfg, nil },
		SaveConfig: func(c config.Config) error {
			env.saved = &c
			return nil
		},
		ExportDir: func() (string, error) { return t.TempDir(), nil },
		CopyToClip: func(text string) error {
			env.clip = text
			return nil
		},
		RunChat: func(store *conversation.Store, opts tui.Options) error {
			env.chatted = store
			env.chatOpt = opts
			return nil
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestRootCmd_Metadata(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps)

	if cmd.Use != "dstchat [question]" {
		t.Errorf("Expected use 'dstchat [question]', got %s", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}

	want := []string{"ask", "chat", "config", "serve", "suggestions"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootCmd_Version(t *testing.T) {
	for _, flag := range []string{"-v", "--version"} {
		t.Run(flag, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(flag); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if got := env.stdout.String(); got != "dstchat 0.1.0 (built unknown)\n" {
				t.Errorf("version output = %q", got)
			}
		})
	}
}

func TestRootCmd_NoInputShowsHelp(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage:") {
		t.Errorf("expected help output, got %q", env.stdout.String())
	}
}

func TestRootCmd_PositionalQuestion(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("population", "growth"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{
		`your query about "population growth"`,
		"- chart (line): Population Growth in Denmark (2013-2023)",
		"**Population in Denmark (2013-2023)**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRootCmd_StdinQuestions(t *testing.T) {
	env := newTestEnv(t)
	env.deps.StdinPiped = func() bool { return true }
	env.deps.Stdin = strings.NewReader("unemployment\n\n  population  \n")

	if err := env.run(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := env.stdout.String()
	first := strings.Index(out, "## unemployment")
	second := strings.Index(out, "## population")
	if first < 0 || second < 0 {
		t.Fatalf("expected a heading per question, got:\n%s", out)
	}
	if first > second {
		t.Error("replies should keep input order")
	}
}

func TestRootCmd_InvalidLanguageFlag(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("--lang", "fr", "hello"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestRootCmd_ConfigLoadError(t *testing.T) {
	env := newTestEnv(t)
	env.deps.LoadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("bad file")
	}
	if err := env.run("hello"); err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestReadQuestions(t *testing.T) {
	got, err := readQuestions(strings.NewReader("a\n\n b \n\t\nc"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("readQuestions() = %v", got)
	}
}
