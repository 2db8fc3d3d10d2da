// Package history exports chat transcripts. Nothing is written unless the
// user asks for an export; the session itself lives only in memory.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/render"
)

// ExportFormat represents the format for exporting transcripts
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseFormat accepts "markdown", "md" or "json"
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown or json)", s)
	}
}

// Extension returns the file extension for the format
func (f ExportFormat) Extension() string {
	if f == ExportFormatJSON {
		return ".json"
	}
	return ".md"
}

// ExportOptions configures how transcripts are exported
type ExportOptions struct {
	Format ExportFormat
	// IncludeWelcome keeps the seeded welcome message
	IncludeWelcome bool
	// IncludeTables appends each reply's data table
	IncludeTables bool
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:         ExportFormatMarkdown,
		IncludeWelcome: false,
		IncludeTables:  true,
	}
}

// Export writes snap to w in the requested format
func Export(w io.Writer, snap conversation.Snapshot, opts ExportOptions) error {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(w, snap, opts)
	case ExportFormatMarkdown, "":
		return ExportMarkdown(w, snap, opts)
	default:
		return fmt.Errorf("unknown export format %q", opts.Format)
	}
}

// ExportMarkdown writes the transcript as a Markdown document
func ExportMarkdown(w io.Writer, snap conversation.Snapshot, opts ExportOptions) error {
	cat := locale.Default()
	msgs := exported(snap.Messages, opts)

	var sb strings.Builder
	sb.WriteString("# Danish Statistics Explorer\n\n")
	sb.WriteString("**Language:** ")
	sb.WriteString(string(snap.Language))
	sb.WriteString("\n")
	sb.WriteString("**Messages:** ")
	sb.WriteString(fmt.Sprintf("%d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		role := cat.Text(snap.Language, locale.KeyYou)
		if msg.Role == models.RoleSystem {
			role = cat.Text(snap.Language, locale.KeyAssistant)
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		for _, v := range msg.Visualizations {
			sb.WriteString("\n- ")
			sb.WriteString(string(v.Kind))
			sb.WriteString(" chart: ")
			sb.WriteString(v.Title)
		}
		if len(msg.Visualizations) > 0 {
			sb.WriteString("\n")
		}

		if opts.IncludeTables && msg.DataTable != nil {
			sb.WriteString("\n")
			sb.WriteString(render.TableMarkdown(*msg.DataTable))
		}

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

type exportTranscript struct {
	Language   locale.Language  `json:"language"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// ExportJSON writes the transcript as indented JSON, including chart
// descriptors and tables.
func ExportJSON(w io.Writer, snap conversation.Snapshot, opts ExportOptions) error {
	msgs := exported(snap.Messages, opts)
	if !opts.IncludeTables {
		for i := range msgs {
			msgs[i].DataTable = nil
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportTranscript{
		Language:   snap.Language,
		ExportedAt: time.Now().UTC(),
		Messages:   msgs,
	})
}

// ExportFile writes the transcript to a timestamped file in dir and returns
// its path.
func ExportFile(dir string, snap conversation.Snapshot, opts ExportOptions) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := "dstchat-" + time.Now().Format("20060102-150405") + opts.Format.Extension()
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Export(f, snap, opts); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}

func exported(all []models.Message, opts ExportOptions) []models.Message {
	out := make([]models.Message, 0, len(all))
	for _, m := range all {
		if !opts.IncludeWelcome && m.ID == conversation.WelcomeID {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}
