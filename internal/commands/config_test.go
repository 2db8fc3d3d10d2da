package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/dstchat/internal/config"
)

func TestConfigCmd_Show(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var shown config.Config
	if err := json.Unmarshal(env.stdout.Bytes(), &shown); err != nil {
		t.Fatalf("config output is not JSON: %v\n%s", err, env.stdout.String())
	}
	if shown.Language != "en" || shown.ResponseDelayMS != 0 {
		t.Errorf("shown config = %+v", shown)
	}
}

func TestConfigCmd_Set(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "set", "language", "da"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if env.saved == nil {
		t.Fatal("config was not saved")
	}
	if env.saved.Language != "da" {
		t.Errorf("saved language = %q, want da", env.saved.Language)
	}
	if got := env.stdout.String(); got != "language = da\n" {
		t.Errorf("output = %q", got)
	}
}

func TestConfigCmd_SetInvalid(t *testing.T) {
	tests := [][]string{
		{"config", "set", "language", "fr"},
		{"config", "set", "cookies", "x"},
		{"config", "set", "language"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[2:], " "), func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(args...); err == nil {
				t.Fatal("expected error")
			}
			if env.saved != nil {
				t.Error("invalid settings must not be saved")
			}
		})
	}
}

func TestConfigCmd_Keys(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "keys"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if strings.Join(lines, ",") != strings.Join(config.Keys(), ",") {
		t.Errorf("keys = %v", lines)
	}
}

func TestConfigCmd_Path(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	env := newTestEnv(t)
	if err := env.run("config", "path"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(env.stdout.String(), home) {
		t.Errorf("path = %q, want prefix %q", env.stdout.String(), home)
	}
}
