// Package models contains the data types exchanged between the conversation
// store, the synthesizers and the presentation layer.
package models

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSystem
}

// Message represents a single entry in the conversation history
type Message struct {
	ID             string          `json:"id"`
	Content        string          `json:"content"`
	Role           Role            `json:"role"`
	Timestamp      time.Time       `json:"timestamp"`
	Visualizations []Visualization `json:"visualizations,omitempty"`
	DataTable      *DataTable      `json:"dataTable,omitempty"`
	Loading        bool            `json:"isLoading,omitempty"`
}

// Clone returns a deep copy so callers can hand messages out without
// sharing the store's backing arrays.
func (m Message) Clone() Message {
	out := m
	if m.Visualizations != nil {
		out.Visualizations = make([]Visualization, len(m.Visualizations))
		for i, v := range m.Visualizations {
			out.Visualizations[i] = v.Clone()
		}
	}
	if m.DataTable != nil {
		t := m.DataTable.Clone()
		out.DataTable = &t
	}
	return out
}

// HasAttachments reports whether the message carries charts or a table
func (m Message) HasAttachments() bool {
	return len(m.Visualizations) > 0 || m.DataTable != nil
}

// SuggestedQuery is a canned question offered to the user
type SuggestedQuery struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}
