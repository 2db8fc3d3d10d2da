package history

import (
	"testing"

	"github.com/diogo/dstchat/internal/models"
)

func TestSearchMessages(t *testing.T) {
	msgs := []models.Message{
		{Content: "Velkommen til Dansk Statistik"},
		{Content: "Vis befolkningstilvækst"},
		{Content: "Show me POPULATION growth"},
		{Content: "population again"},
	}

	results := SearchMessages(msgs, "population")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Index != 2 || results[1].Index != 3 {
		t.Errorf("indices = %d, %d", results[0].Index, results[1].Index)
	}

	if got := SearchMessages(msgs, "  "); got != nil {
		t.Errorf("blank query should return nil, got %v", got)
	}
	if got := SearchMessages(msgs, "befolkning"); len(got) != 1 {
		t.Errorf("befolkning matches = %d", len(got))
	}
}

func TestExtractSnippet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		maxLen  int
		want    string
	}{
		{"short", "hello world", "world", 60, "hello world"},
		{"truncated end", "abcdefghij", "b", 4, "abcd..."},
		{"truncated start", "abcdefghij", "j", 4, "...ghij"},
		{"middle", "abcdefghij", "e", 4, "...cdefg..."},
		{"danish runes", "æøå æøå æøå", "å", 3, "...øå ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSnippet(tt.content, tt.query, tt.maxLen); got != tt.want {
				t.Errorf("extractSnippet() = %q, want %q", got, tt.want)
			}
		})
	}
}
