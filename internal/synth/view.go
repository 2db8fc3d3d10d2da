package synth

import (
	"sort"
	"strconv"
	"strings"

	"github.com/diogo/dstchat/internal/models"
)

// SortDirection orders table rows
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TableView is a filtered, sorted and paginated window over a DataTable.
// The underlying table is never modified.
type TableView struct {
	table     models.DataTable
	search    string
	column    int
	direction SortDirection
	page      int
	pageSize  int
}

// NewTableView starts an unsorted, unfiltered view on page 1
func NewTableView(t models.DataTable) TableView {
	return TableView{
		table:     t,
		column:    -1,
		direction: SortAsc,
		page:      1,
		pageSize:  t.PageSize(),
	}
}

// Filter returns a view that keeps rows with any cell containing search,
// case-insensitively. Filtering resets to page 1.
func (v TableView) Filter(search string) TableView {
	v.search = search
	v.page = 1
	return v
}

// SortBy sorts on column. Selecting the current sort column again flips the
// direction; a new column starts ascending.
func (v TableView) SortBy(column int) TableView {
	if column == v.column {
		if v.direction == SortAsc {
			v.direction = SortDesc
		} else {
			v.direction = SortAsc
		}
		return v
	}
	v.column = column
	v.direction = SortAsc
	return v
}

// Sorted sets an explicit column and direction
func (v TableView) Sorted(column int, dir SortDirection) TableView {
	v.column = column
	v.direction = dir
	return v
}

// WithPageSize overrides the page size
func (v TableView) WithPageSize(size int) TableView {
	if size > 0 {
		v.pageSize = size
		v.page = 1
	}
	return v
}

// Goto moves to page, clamped to the valid range
func (v TableView) Goto(page int) TableView {
	v.page = page
	v.page = v.clampPage(len(v.filtered()))
	return v
}

// Next moves one page forward
func (v TableView) Next() TableView { return v.Goto(v.page + 1) }

// Prev moves one page back
func (v TableView) Prev() TableView { return v.Goto(v.page - 1) }

// Table returns the underlying table
func (v TableView) Table() models.DataTable { return v.table }

// Search returns the active filter text
func (v TableView) Search() string { return v.search }

// SortColumn returns the sort column and direction; column is -1 when unsorted
func (v TableView) SortColumn() (int, SortDirection) { return v.column, v.direction }

// Page returns the current page number
func (v TableView) Page() int { return v.page }

// TotalPages returns the number of pages after filtering, at least 1
func (v TableView) TotalPages() int {
	return totalPages(len(v.filtered()), v.pageSize)
}

// MatchCount returns the number of rows that pass the filter
func (v TableView) MatchCount() int {
	return len(v.filtered())
}

// Rows returns the rows on the current page
func (v TableView) Rows() [][]string {
	rows := FilterRows(v.table.Rows, v.search)
	if v.column >= 0 {
		rows = SortRows(rows, v.column, v.direction)
	}
	return PageRows(rows, v.clampPage(len(rows)), v.pageSize)
}

func (v TableView) filtered() [][]string {
	return FilterRows(v.table.Rows, v.search)
}

func (v TableView) clampPage(n int) int {
	total := totalPages(n, v.pageSize)
	if v.page < 1 {
		return 1
	}
	if v.page > total {
		return total
	}
	return v.page
}

func totalPages(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// FilterRows keeps rows where any cell contains search (case-insensitive).
// An empty search keeps every row.
func FilterRows(rows [][]string, search string) [][]string {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if needle == "" {
			out = append(out, row)
			continue
		}
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// SortRows returns a stably sorted copy of rows. Two cells compare
// numerically when both start with a number; otherwise they compare as
// lower-cased strings.
func SortRows(rows [][]string, column int, dir SortDirection) [][]string {
	out := make([][]string, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := cell(out[i], column), cell(out[j], column)
		c := compareCells(a, b)
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// PageRows returns the rows on a 1-based page
func PageRows(rows [][]string, page, size int) [][]string {
	if size <= 0 {
		return rows
	}
	start := (page - 1) * size
	if start < 0 || start >= len(rows) {
		return [][]string{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func cell(row []string, column int) string {
	if column < 0 || column >= len(row) {
		return ""
	}
	return row[column]
}

func compareCells(a, b string) int {
	na, okA := leadingNumber(a)
	nb, okB := leadingNumber(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// leadingNumber parses the numeric prefix of s after dropping thousands
// separators, so "5,910,577", "+0.68%" and "81.4 years" all compare as numbers.
func leadingNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '+' || c == '-') && end == 0) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
