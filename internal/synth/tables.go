package synth

import (
	"github.com/diogo/dstchat/internal/classify"
	"github.com/diogo/dstchat/internal/models"
)

// TablePrecedence is the order in which topics claim the single reply table.
// The first listed topic present in a classification wins; topics not listed
// never produce a table of their own and fall through to the indicator table.
var TablePrecedence = []classify.Topic{
	classify.Population,
	classify.Unemployment,
}

var topicTables = map[classify.Topic]func() models.DataTable{
	classify.Population: func() models.DataTable {
		return paged(models.DataTable{
			ID:      "population-table",
			Title:   "Population in Denmark (2013-2023)",
			Headers: []string{"Year", "Population", "Growth Rate (%)", "Natural Increase", "Net Migration"},
			Rows: [][]string{
				{"2023", "5,910,577", "0.68", "10,423", "30,215"},
				{"2022", "5,873,420", "0.51", "8,239", "21,789"},
				{"2021", "5,843,347", "0.22", "7,018", "6,253"},
				{"2020", "5,830,534", "0.35", "8,121", "12,310"},
				{"2019", "5,806,081", "0.45", "9,547", "16,719"},
				{"2018", "5,781,190", "0.53", "8,224", "22,621"},
				{"2017", "5,748,769", "0.67", "7,915", "30,677"},
				{"2016", "5,707,251", "0.79", "8,892", "36,883"},
				{"2015", "5,659,715", "0.35", "8,358", "11,642"},
				{"2014", "5,639,719", "0.53", "9,045", "20,952"},
				{"2013", "5,605,836", "0.41", "8,564", "14,362"},
			},
		})
	},
	classify.Unemployment: func() models.DataTable {
		return paged(models.DataTable{
			ID:      "unemployment-table",
			Title:   "Unemployment Rate in Denmark (2010-2023)",
			Headers: []string{"Year", "Unemployment Rate (%)", "Male (%)", "Female (%)", "Youth (15-24) (%)"},
			Rows: [][]string{
				{"2023", "4.5", "4.3", "4.7", "8.2"},
				{"2022", "4.8", "4.6", "5.0", "9.1"},
				{"2021", "5.1", "4.9", "5.3", "10.2"},
				{"2020", "5.6", "5.4", "5.8", "11.6"},
				{"2019", "5.0", "4.8", "5.2", "10.1"},
				{"2018", "5.1", "4.9", "5.3", "10.5"},
				{"2017", "5.8", "5.6", "6.0", "11.9"},
				{"2016", "6.2", "5.9", "6.5", "12.0"},
				{"2015", "6.2", "5.9", "6.5", "12.6"},
				{"2014", "6.6", "6.4", "6.8", "13.1"},
				{"2013", "7.0", "6.7", "7.3", "13.0"},
				{"2012", "7.5", "7.5", "7.5", "14.1"},
				{"2011", "7.6", "7.7", "7.5", "14.2"},
				{"2010", "7.5", "8.4", "6.5", "13.8"},
			},
		})
	},
}

func defaultTable() models.DataTable {
	return paged(models.DataTable{
		ID:      "default-table",
		Title:   "Key Danish Statistics Indicators (2023)",
		Headers: []string{"Indicator", "Value", "Change from 2022"},
		Rows: [][]string{
			{"Population", "5,910,577", "+0.68%"},
			{"GDP Growth", "2.3%", "-1.5%"},
			{"Inflation", "3.1%", "-2.6%"},
			{"Unemployment Rate", "4.5%", "-0.3%"},
			{"Life Expectancy", "81.4 years", "+0.2"},
			{"Fertility Rate", "1.73", "+0.05"},
			{"CO2 Emissions", "35.2 Mt", "-3.1%"},
			{"Renewable Energy Share", "43.8%", "+2.4%"},
		},
	})
}

// paged sets a single page that holds every row
func paged(t models.DataTable) models.DataTable {
	t.Pagination = &models.Pagination{CurrentPage: 1, TotalPages: 1, PageSize: len(t.Rows)}
	return t
}

// Table returns exactly one table: the first topic in TablePrecedence that
// was matched, or the key indicators table.
func Table(topics []classify.Topic) models.DataTable {
	set := classify.NewTopicSet(topics)
	for _, t := range TablePrecedence {
		if set.Has(t) {
			return topicTables[t]()
		}
	}
	return defaultTable()
}
