// Package synth builds the illustrative chart and table descriptors returned
// for a classified question.
package synth

import (
	"strconv"

	"github.com/diogo/dstchat/internal/classify"
	"github.com/diogo/dstchat/internal/models"
)

// Danish flag red and the palette shared by the fixed charts
const (
	colorDanishRed = "#C8102E"
	colorSky       = "#0EA5E9"
	colorSwedish   = "#006AA7"
	colorNorwegian = "#00205B"
	colorFinnish   = "#0066CC"
	colorOrange    = "#F47C3C"
	colorNavy      = "#0C4A6E"
	colorSlate     = "#334155"
)

type chartSpec struct {
	id     string
	kind   models.ChartKind
	title  string
	data   models.SeriesData
	config *models.RenderConfig
}

func years(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, strconv.Itoa(y))
	}
	return out
}

var topicCharts = map[classify.Topic]func() chartSpec{
	classify.Population: func() chartSpec {
		return chartSpec{
			id:    "population-chart",
			kind:  models.ChartLine,
			title: "Population Growth in Denmark (2013-2023)",
			data: models.CategorySeries{
				Labels: years(2013, 2023),
				Datasets: []models.Dataset{{
					Label:   "Population (millions)",
					Values:  []float64{5.61, 5.64, 5.66, 5.71, 5.75, 5.78, 5.81, 5.83, 5.84, 5.87, 5.91},
					Color:   colorSky,
					Tension: 0.2,
					Fill:    true,
				}},
			},
			config: &models.RenderConfig{XAxis: "Year", YAxis: "Population", Unit: "M"},
		}
	},
	classify.Unemployment: func() chartSpec {
		return chartSpec{
			id:    "unemployment-chart",
			kind:  models.ChartBar,
			title: "Unemployment Rate in Denmark (2010-2023)",
			data: models.CategorySeries{
				Labels: years(2010, 2023),
				Datasets: []models.Dataset{{
					Label:  "Unemployment Rate (%)",
					Values: []float64{7.5, 7.6, 7.5, 7.0, 6.6, 6.2, 6.2, 5.8, 5.1, 5.0, 5.6, 5.1, 4.8, 4.5},
					Color:  colorDanishRed,
				}},
			},
			config: &models.RenderConfig{XAxis: "Year", YAxis: "Rate", Unit: "%"},
		}
	},
	classify.GDP: func() chartSpec {
		return chartSpec{
			id:    "gdp-chart",
			kind:  models.ChartLine,
			title: "GDP Growth in Nordic Countries (2018-2023)",
			data: models.CategorySeries{
				Labels: years(2018, 2023),
				Datasets: []models.Dataset{
					{Label: "Denmark", Values: []float64{2.0, 2.1, -2.1, 4.9, 3.8, 2.3}, Color: colorDanishRed, Tension: 0.2},
					{Label: "Sweden", Values: []float64{2.0, 1.4, -2.2, 5.1, 3.0, 1.8}, Color: colorSwedish, Tension: 0.2},
					{Label: "Norway", Values: []float64{1.1, 0.7, -1.3, 3.9, 3.3, 1.5}, Color: colorNorwegian, Tension: 0.2},
					{Label: "Finland", Values: []float64{1.1, 1.2, -2.2, 3.0, 2.1, 1.6}, Color: colorFinnish, Tension: 0.2},
				},
			},
			config: &models.RenderConfig{XAxis: "Year", YAxis: "Growth", Unit: "%", ShowLegend: true},
		}
	},
	classify.Immigration: func() chartSpec {
		return chartSpec{
			id:    "immigration-chart",
			kind:  models.ChartMap,
			title: "Immigration in Denmark by Region (2023)",
			data: models.RegionSeries{Regions: []models.Region{
				{ID: "hovedstaden", Name: "Hovedstaden", Value: 15.2},
				{ID: "midtjylland", Name: "Midtjylland", Value: 8.7},
				{ID: "nordjylland", Name: "Nordjylland", Value: 6.4},
				{ID: "sjælland", Name: "Sjælland", Value: 5.9},
				{ID: "syddanmark", Name: "Syddanmark", Value: 7.8},
			}},
			config: &models.RenderConfig{Unit: "%"},
		}
	},
	classify.Education: func() chartSpec {
		return chartSpec{
			id:    "education-chart",
			kind:  models.ChartPie,
			title: "Education Level Distribution in Denmark (2023)",
			data: models.PieSeries{
				Labels: []string{"Primary", "Secondary", "Vocational", "Bachelor", "Master or higher"},
				Values: []float64{18, 25, 30, 17, 10},
				Colors: []string{colorDanishRed, colorOrange, colorSky, colorNavy, colorSlate},
			},
			config: &models.RenderConfig{Unit: "%", ShowLegend: true},
		}
	},
}

func defaultChart() chartSpec {
	return chartSpec{
		id:    "default-chart",
		kind:  models.ChartBar,
		title: "General Statistics Overview (2023)",
		data: models.CategorySeries{
			Labels: []string{"Population (M)", "GDP Growth (%)", "Unemployment (%)", "Life Expectancy"},
			Datasets: []models.Dataset{{
				Label:  "Denmark",
				Values: []float64{5.91, 2.3, 4.5, 81.4},
				Color:  colorDanishRed,
			}},
		},
	}
}

// Visualizations returns one chart per topic, in topic order, or the single
// overview bar chart when topics is empty. The error is only non-nil if a
// descriptor fails validation.
func Visualizations(topics []classify.Topic) ([]models.Visualization, error) {
	specs := make([]chartSpec, 0, len(topics))
	for _, t := range topics {
		if build, ok := topicCharts[t]; ok {
			specs = append(specs, build())
		}
	}
	if len(specs) == 0 {
		specs = append(specs, defaultChart())
	}

	charts := make([]models.Visualization, 0, len(specs))
	for _, s := range specs {
		v, err := models.NewVisualization(s.id, s.kind, s.title, s.data, s.config)
		if err != nil {
			return nil, err
		}
		charts = append(charts, v)
	}
	return charts, nil
}
