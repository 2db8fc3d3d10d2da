package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/dstchat/internal/classify"
	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/synth"
)

func testSnapshot(t *testing.T) conversation.Snapshot {
	t.Helper()

	charts, err := synth.Visualizations([]classify.Topic{classify.Population})
	if err != nil {
		t.Fatal(err)
	}
	table := synth.Table([]classify.Topic{classify.Population})
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	return conversation.Snapshot{
		Language: locale.English,
		Messages: []models.Message{
			{ID: conversation.WelcomeID, Content: "Welcome", Role: models.RoleSystem, Timestamp: ts},
			{ID: "u1", Content: "population please", Role: models.RoleUser, Timestamp: ts},
			{ID: "s1", Content: "Here are the insights:", Role: models.RoleSystem, Timestamp: ts,
				Visualizations: charts, DataTable: &table},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", ExportFormatMarkdown, false},
		{"md", ExportFormatMarkdown, false},
		{"Markdown", ExportFormatMarkdown, false},
		{"json", ExportFormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportMarkdown(&buf, testSnapshot(t), DefaultExportOptions()); err != nil {
		t.Fatalf("ExportMarkdown() error: %v", err)
	}
	out := buf.String()

	checks := []string{
		"# Danish Statistics Explorer",
		"**Messages:** 2",
		"## You (10:30:00)",
		"population please",
		"## DST (10:30:00)",
		"- line chart: Population Growth in Denmark (2013-2023)",
		"**Population in Denmark (2013-2023)**",
		"| Year |",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("markdown export missing %q", c)
		}
	}
	if strings.Contains(out, "Welcome") {
		t.Error("welcome message should be skipped by default")
	}
}

func TestExportMarkdown_WithoutTables(t *testing.T) {
	opts := DefaultExportOptions()
	opts.IncludeTables = false
	opts.IncludeWelcome = true

	var buf bytes.Buffer
	if err := ExportMarkdown(&buf, testSnapshot(t), opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "| Year |") {
		t.Error("tables should be omitted")
	}
	if !strings.Contains(out, "Welcome") {
		t.Error("welcome message should be included")
	}
}

func TestExportJSON(t *testing.T) {
	opts := DefaultExportOptions()
	opts.Format = ExportFormatJSON

	var buf bytes.Buffer
	if err := Export(&buf, testSnapshot(t), opts); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded struct {
		Language string `json:"language"`
		Messages []struct {
			ID             string `json:"id"`
			Role           string `json:"role"`
			Visualizations []struct {
				Type  string `json:"type"`
				Title string `json:"title"`
			} `json:"visualizations"`
			DataTable *struct {
				Rows [][]string `json:"rows"`
			} `json:"dataTable"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	if decoded.Language != "en" {
		t.Errorf("language = %q", decoded.Language)
	}
	if len(decoded.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(decoded.Messages))
	}
	reply := decoded.Messages[1]
	if len(reply.Visualizations) != 1 || reply.Visualizations[0].Type != "line" {
		t.Errorf("visualizations = %+v", reply.Visualizations)
	}
	if reply.DataTable == nil || len(reply.DataTable.Rows) != 11 {
		t.Errorf("data table not exported")
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, testSnapshot(t), ExportOptions{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := ExportFile(dir, testSnapshot(t), DefaultExportOptions())
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	if filepath.Ext(path) != ".md" {
		t.Errorf("unexpected extension: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %o, want 600", info.Mode().Perm())
	}
}

func TestExport_DoesNotMutateSnapshot(t *testing.T) {
	snap := testSnapshot(t)
	opts := DefaultExportOptions()
	opts.Format = ExportFormatJSON
	opts.IncludeTables = false

	var buf bytes.Buffer
	if err := Export(&buf, snap, opts); err != nil {
		t.Fatal(err)
	}
	if snap.Messages[2].DataTable == nil {
		t.Error("export must not modify the snapshot")
	}
}
