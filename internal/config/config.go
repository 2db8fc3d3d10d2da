// Package config handles user configuration for dstchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diogo/dstchat/internal/locale"
)

// Environment variables that override the config file
const (
	EnvLanguage = "DSTCHAT_LANG"
	EnvDelay    = "DSTCHAT_DELAY_MS"
	EnvGlamour  = "GLAMOUR_STYLE"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Language is "en", "da", or empty to follow the process locale.
	Language string `json:"language,omitempty"`
	// ResponseDelayMS is the simulated thinking time before each reply.
	ResponseDelayMS int `json:"response_delay_ms"`
	// Verbose enables structured logging to stderr.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	ServerAddr      string         `json:"server_addr,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ResponseDelayMS: 1500,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		ServerAddr:      "127.0.0.1:8080",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// ResolveLanguage returns the configured language, or the one detected from
// the process locale when none is set or the value is unsupported.
func (c Config) ResolveLanguage() locale.Language {
	if c.Language != "" {
		if lang, err := locale.Parse(c.Language); err == nil {
			return lang
		}
	}
	return locale.Detect()
}

// Delay returns the response delay as a duration
func (c Config) Delay() time.Duration {
	if c.ResponseDelayMS < 0 {
		return 0
	}
	return time.Duration(c.ResponseDelayMS) * time.Millisecond
}

// ApplyEnv returns a copy of c with environment overrides applied.
// Malformed values are reported and leave the field unchanged.
func (c Config) ApplyEnv(getenv func(string) string) (Config, error) {
	if v := getenv(EnvLanguage); v != "" {
		lang, err := locale.Parse(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvLanguage, err)
		}
		c.Language = string(lang)
	}
	if v := getenv(EnvDelay); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return c, fmt.Errorf("%s: invalid delay %q", EnvDelay, v)
		}
		c.ResponseDelayMS = ms
	}
	if v := getenv(EnvGlamour); v != "" {
		c.Markdown.Style = v
	}
	return c, nil
}

// setters maps the keys accepted by Set to their parsers
var setters = map[string]func(*Config, string) error{
	"language": func(c *Config, v string) error {
		if v == "" || v == "auto" {
			c.Language = ""
			return nil
		}
		lang, err := locale.Parse(v)
		if err != nil {
			return err
		}
		c.Language = string(lang)
		return nil
	},
	"response_delay_ms": func(c *Config, v string) error {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return fmt.Errorf("invalid delay %q: want a non-negative number of milliseconds", v)
		}
		c.ResponseDelayMS = ms
		return nil
	},
	"verbose": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		c.Verbose = b
		return nil
	},
	"copy_to_clipboard": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		c.CopyToClipboard = b
		return nil
	},
	"tui_theme": func(c *Config, v string) error {
		c.TUITheme = v
		return nil
	},
	"server_addr": func(c *Config, v string) error {
		if !strings.Contains(v, ":") {
			return fmt.Errorf("invalid address %q: want host:port", v)
		}
		c.ServerAddr = v
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = v
		return nil
	},
}

// Keys returns the settable keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value and assigns it to the field named by key
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".dstchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetExportDir returns the directory transcripts are exported to, creating it if necessary
func GetExportDir() (string, error) {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "exports")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return dir, nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads the config file and applies environment overrides
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	return cfg.ApplyEnv(os.Getenv)
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
