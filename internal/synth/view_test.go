package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diogo/dstchat/internal/classify"
)

func firstColumn(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

func TestFilterRows(t *testing.T) {
	tbl := Table(nil)

	assert.Len(t, FilterRows(tbl.Rows, ""), 8)
	assert.Equal(t, []string{"GDP Growth"}, firstColumn(FilterRows(tbl.Rows, "gdp")))
	assert.Equal(t, []string{"Population"}, firstColumn(FilterRows(tbl.Rows, "+0.68%")))
	assert.Empty(t, FilterRows(tbl.Rows, "zzz"))
}

func TestSortRows_Numeric(t *testing.T) {
	rows := [][]string{{"5,910,577"}, {"81.4 years"}, {"+0.68%"}, {"-1.5%"}}

	asc := SortRows(rows, 0, SortAsc)
	assert.Equal(t, []string{"-1.5%", "+0.68%", "81.4 years", "5,910,577"}, firstColumn(asc))

	desc := SortRows(rows, 0, SortDesc)
	assert.Equal(t, []string{"5,910,577", "81.4 years", "+0.68%", "-1.5%"}, firstColumn(desc))

	// input untouched
	assert.Equal(t, "5,910,577", rows[0][0])
}

func TestSortRows_Strings(t *testing.T) {
	rows := [][]string{{"beta"}, {"Alpha"}, {"gamma"}}
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, firstColumn(SortRows(rows, 0, SortAsc)))
	assert.Equal(t, []string{"gamma", "beta", "Alpha"}, firstColumn(SortRows(rows, 0, SortDesc)))
}

func TestPageRows(t *testing.T) {
	rows := [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}

	assert.Equal(t, []string{"1", "2"}, firstColumn(PageRows(rows, 1, 2)))
	assert.Equal(t, []string{"5"}, firstColumn(PageRows(rows, 3, 2)))
	assert.Empty(t, PageRows(rows, 4, 2))
	assert.Len(t, PageRows(rows, 1, 0), 5)
}

func TestTableView(t *testing.T) {
	view := NewTableView(Table([]classify.Topic{classify.Unemployment})).WithPageSize(5)

	assert.Equal(t, 3, view.TotalPages())
	assert.Equal(t, 1, view.Page())
	assert.Equal(t, []string{"2023", "2022", "2021", "2020", "2019"}, firstColumn(view.Rows()))

	view = view.SortBy(0)
	col, dir := view.SortColumn()
	assert.Equal(t, 0, col)
	assert.Equal(t, SortAsc, dir)
	assert.Equal(t, []string{"2010", "2011", "2012", "2013", "2014"}, firstColumn(view.Rows()))

	view = view.SortBy(0)
	_, dir = view.SortColumn()
	assert.Equal(t, SortDesc, dir)

	view = view.Next().Next().Next()
	assert.Equal(t, 3, view.Page(), "Next clamps at the last page")
	assert.Len(t, view.Rows(), 4)

	view = view.Prev().Prev().Prev()
	assert.Equal(t, 1, view.Page(), "Prev clamps at the first page")

	view = view.Goto(2).Filter("7.5")
	assert.Equal(t, 1, view.Page(), "filtering resets the page")
	assert.Equal(t, 3, view.MatchCount())
	assert.Equal(t, 1, view.TotalPages())
}

func TestTableView_DoesNotMutateTable(t *testing.T) {
	tbl := Table([]classify.Topic{classify.Population})
	view := NewTableView(tbl).Sorted(1, SortAsc)
	_ = view.Rows()

	assert.Equal(t, "2023", tbl.Rows[0][0])
	assert.Equal(t, tbl.ID, view.Table().ID)
}
