package models

// Pagination describes how a table is split into pages
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
}

// DataTable is the tabular dataset attached to a system reply
type DataTable struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Headers    []string    `json:"headers"`
	Rows       [][]string  `json:"rows"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Clone returns a deep copy of the table
func (t DataTable) Clone() DataTable {
	out := t
	out.Headers = append([]string(nil), t.Headers...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	if t.Pagination != nil {
		p := *t.Pagination
		out.Pagination = &p
	}
	return out
}

// PageSize returns the configured page size, or 10 when the table has none
func (t DataTable) PageSize() int {
	if t.Pagination != nil && t.Pagination.PageSize > 0 {
		return t.Pagination.PageSize
	}
	return 10
}
