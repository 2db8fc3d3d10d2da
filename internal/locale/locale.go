// Package locale holds the two supported languages and the embedded string
// catalog used for every user-facing text.
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/models"
)

// Language is a supported UI language
type Language string

const (
	English Language = "en"
	Danish  Language = "da"
)

// Catalog keys
const (
	KeyWelcome      = "welcome"
	KeyReply        = "reply"
	KeyErrorMessage = "error_message"
	KeyErrorToast   = "error_toast"
	KeyClearedToast = "cleared_toast"
	KeyPlaceholder  = "placeholder"
	KeyThinking     = "thinking"
	KeyYou          = "you"
	KeyAssistant    = "assistant"
	KeySuggestions  = "suggestions"
	KeyClear        = "clear"
	KeySend         = "send"
	KeySearch       = "search"
	KeyPage         = "page"
	KeyNoRows       = "no_rows"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Supported returns the supported languages in display order
func Supported() []Language {
	return []Language{English, Danish}
}

// Parse validates a language code. Matching is case-insensitive and accepts
// region suffixes such as "da_DK.UTF-8".
func Parse(code string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	switch {
	case normalized == "en" || strings.HasPrefix(normalized, "en_") || strings.HasPrefix(normalized, "en-"):
		return English, nil
	case normalized == "da" || strings.HasPrefix(normalized, "da_") || strings.HasPrefix(normalized, "da-"):
		return Danish, nil
	default:
		return "", apierrors.NewLanguageError(code)
	}
}

// Detect derives the initial language from the process locale. The first
// non-empty of LC_ALL, LC_MESSAGES and LANG wins; anything not Danish is English.
func Detect() Language {
	return DetectFrom(os.Getenv)
}

// DetectFrom is Detect with an injectable environment lookup
func DetectFrom(getenv func(string) string) Language {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "da") {
				return Danish
			}
			return English
		}
	}
	return English
}

type languageEntry struct {
	Text        map[string]string       `yaml:"text"`
	Suggestions []models.SuggestedQuery `yaml:"suggestions"`
}

// Catalog maps languages to their localized strings
type Catalog struct {
	entries map[Language]languageEntry
}

// ParseCatalog decodes a YAML catalog and checks that every language defines
// the same keys.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[Language]languageEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for _, lang := range Supported() {
		if _, ok := raw[lang]; !ok {
			return nil, fmt.Errorf("catalog is missing language %q", lang)
		}
	}

	base := raw[English]
	for _, lang := range Supported() {
		entry := raw[lang]
		for key := range base.Text {
			if _, ok := entry.Text[key]; !ok {
				return nil, fmt.Errorf("catalog language %q is missing key %q", lang, key)
			}
		}
		if len(entry.Suggestions) != len(base.Suggestions) {
			return nil, fmt.Errorf("catalog language %q has %d suggestions, want %d", lang, len(entry.Suggestions), len(base.Suggestions))
		}
	}

	return &Catalog{entries: raw}, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which the package tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Text returns the string for key in lang, falling back to English and then
// to the key itself.
func (c *Catalog) Text(lang Language, key string) string {
	if s, ok := c.entries[lang].Text[key]; ok {
		return s
	}
	if s, ok := c.entries[English].Text[key]; ok {
		return s
	}
	return key
}

// Format is Text followed by fmt.Sprintf
func (c *Catalog) Format(lang Language, key string, args ...any) string {
	return fmt.Sprintf(c.Text(lang, key), args...)
}

// Suggestions returns a fresh copy of the suggested queries for lang
func (c *Catalog) Suggestions(lang Language) []models.SuggestedQuery {
	src := c.entries[lang].Suggestions
	out := make([]models.SuggestedQuery, len(src))
	copy(out, src)
	return out
}
