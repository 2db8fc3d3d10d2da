package history

import (
	"strings"

	"github.com/diogo/dstchat/internal/models"
)

// SearchResult is a message whose content matched a search
type SearchResult struct {
	Index   int
	Message models.Message
	Snippet string
}

// SearchMessages finds messages whose content contains query,
// case-insensitively, oldest first.
func SearchMessages(msgs []models.Message, query string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var results []SearchResult
	for i, msg := range msgs {
		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			results = append(results, SearchResult{
				Index:   i,
				Message: msg,
				Snippet: extractSnippet(msg.Content, query, 60),
			})
		}
	}
	return results
}

// extractSnippet cuts maxLen runes around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	q := []rune(strings.ToLower(query))

	idx := indexRunes(lower, q)
	if idx == -1 {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
