package models

import (
	"encoding/json"
	"fmt"

	apierrors "github.com/diogo/dstchat/internal/errors"
)

// ChartKind is the kind of chart a visualization describes
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
	ChartArea    ChartKind = "area"
	ChartMap     ChartKind = "map"
)

// AllChartKinds lists every supported chart kind
var AllChartKinds = []ChartKind{ChartBar, ChartLine, ChartPie, ChartScatter, ChartArea, ChartMap}

// Valid reports whether k is a known chart kind
func (k ChartKind) Valid() bool {
	for _, known := range AllChartKinds {
		if k == known {
			return true
		}
	}
	return false
}

// SeriesData is the strongly-typed payload of a visualization. Each variant
// declares which chart kinds it can back.
type SeriesData interface {
	Supports(kind ChartKind) bool
	Validate() error
	clone() SeriesData
}

// Dataset is one named series over a shared set of category labels
type Dataset struct {
	Label   string    `json:"label"`
	Values  []float64 `json:"data"`
	Color   string    `json:"color,omitempty"`
	Fill    bool      `json:"fill,omitempty"`
	Tension float64   `json:"tension,omitempty"`
}

// CategorySeries backs bar, line and area charts: one or more datasets
// sharing the same category labels.
type CategorySeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

func (s CategorySeries) Supports(kind ChartKind) bool {
	return kind == ChartBar || kind == ChartLine || kind == ChartArea
}

func (s CategorySeries) Validate() error {
	if len(s.Labels) == 0 {
		return apierrors.NewValidationError("labels", "no category labels")
	}
	if len(s.Datasets) == 0 {
		return apierrors.NewValidationError("datasets", "no datasets")
	}
	for i, ds := range s.Datasets {
		if len(ds.Values) != len(s.Labels) {
			return apierrors.NewValidationError(
				fmt.Sprintf("datasets[%d]", i),
				fmt.Sprintf("%d values for %d labels", len(ds.Values), len(s.Labels)),
			)
		}
	}
	return nil
}

func (s CategorySeries) clone() SeriesData {
	out := CategorySeries{
		Labels:   append([]string(nil), s.Labels...),
		Datasets: make([]Dataset, len(s.Datasets)),
	}
	for i, ds := range s.Datasets {
		ds.Values = append([]float64(nil), ds.Values...)
		out.Datasets[i] = ds
	}
	return out
}

// PieSeries backs pie charts: one value and colour per slice
type PieSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"data"`
	Colors []string  `json:"colors,omitempty"`
}

func (s PieSeries) Supports(kind ChartKind) bool { return kind == ChartPie }

func (s PieSeries) Validate() error {
	if len(s.Labels) == 0 {
		return apierrors.NewValidationError("labels", "no slices")
	}
	if len(s.Values) != len(s.Labels) {
		return apierrors.NewValidationError("data", fmt.Sprintf("%d values for %d slices", len(s.Values), len(s.Labels)))
	}
	if len(s.Colors) > 0 && len(s.Colors) != len(s.Labels) {
		return apierrors.NewValidationError("colors", fmt.Sprintf("%d colors for %d slices", len(s.Colors), len(s.Labels)))
	}
	for i, v := range s.Values {
		if v < 0 {
			return apierrors.NewValidationError(fmt.Sprintf("data[%d]", i), "negative slice")
		}
	}
	return nil
}

// Total returns the sum of all slice values
func (s PieSeries) Total() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

func (s PieSeries) clone() SeriesData {
	return PieSeries{
		Labels: append([]string(nil), s.Labels...),
		Values: append([]float64(nil), s.Values...),
		Colors: append([]string(nil), s.Colors...),
	}
}

// Region is one area of a map-style breakdown
type Region struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// RegionSeries backs map charts
type RegionSeries struct {
	Regions []Region `json:"regions"`
}

func (s RegionSeries) Supports(kind ChartKind) bool { return kind == ChartMap }

func (s RegionSeries) Validate() error {
	if len(s.Regions) == 0 {
		return apierrors.NewValidationError("regions", "no regions")
	}
	seen := make(map[string]bool, len(s.Regions))
	for i, r := range s.Regions {
		if r.ID == "" {
			return apierrors.NewValidationError(fmt.Sprintf("regions[%d]", i), "missing id")
		}
		if seen[r.ID] {
			return apierrors.NewValidationError(fmt.Sprintf("regions[%d]", i), "duplicate id "+r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

func (s RegionSeries) clone() SeriesData {
	return RegionSeries{Regions: append([]Region(nil), s.Regions...)}
}

// Point is one x/y sample of a scatter chart
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// ScatterSeries backs scatter charts
type ScatterSeries struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
}

func (s ScatterSeries) Supports(kind ChartKind) bool { return kind == ChartScatter }

func (s ScatterSeries) Validate() error {
	if len(s.Points) == 0 {
		return apierrors.NewValidationError("points", "no points")
	}
	return nil
}

func (s ScatterSeries) clone() SeriesData {
	return ScatterSeries{Label: s.Label, Points: append([]Point(nil), s.Points...), Color: s.Color}
}

// RenderConfig carries optional hints for chart renderers
type RenderConfig struct {
	XAxis      string `json:"xAxis,omitempty"`
	YAxis      string `json:"yAxis,omitempty"`
	Unit       string `json:"unit,omitempty"`
	ShowLegend bool   `json:"showLegend"`
}

// Visualization is one chart descriptor attached to a message
type Visualization struct {
	ID     string
	Kind   ChartKind
	Title  string
	Data   SeriesData
	Config *RenderConfig
}

// NewVisualization validates that data can back kind and returns the descriptor.
func NewVisualization(id string, kind ChartKind, title string, data SeriesData, cfg *RenderConfig) (Visualization, error) {
	if !kind.Valid() {
		return Visualization{}, apierrors.NewValidationError("type", fmt.Sprintf("unknown chart kind %q", kind))
	}
	if data == nil {
		return Visualization{}, apierrors.NewValidationError("data", "missing series data")
	}
	if !data.Supports(kind) {
		return Visualization{}, apierrors.NewValidationError("data", fmt.Sprintf("%T cannot back a %s chart", data, kind))
	}
	if err := data.Validate(); err != nil {
		return Visualization{}, fmt.Errorf("%s: %w", id, err)
	}
	return Visualization{ID: id, Kind: kind, Title: title, Data: data, Config: cfg}, nil
}

// Clone returns a deep copy of the visualization
func (v Visualization) Clone() Visualization {
	out := v
	if v.Data != nil {
		out.Data = v.Data.clone()
	}
	if v.Config != nil {
		cfg := *v.Config
		out.Config = &cfg
	}
	return out
}

// MarshalJSON emits the chart kind as "type" next to the series payload
func (v Visualization) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string        `json:"id"`
		Type   ChartKind     `json:"type"`
		Title  string        `json:"title"`
		Data   SeriesData    `json:"data"`
		Config *RenderConfig `json:"config,omitempty"`
	}{v.ID, v.Kind, v.Title, v.Data, v.Config})
}

// UnmarshalJSON decodes the series payload into the variant that backs the
// chart kind named by "type", then validates it like NewVisualization.
func (v *Visualization) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string          `json:"id"`
		Type   ChartKind       `json:"type"`
		Title  string          `json:"title"`
		Data   json.RawMessage `json:"data"`
		Config *RenderConfig   `json:"config,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var series SeriesData
	switch raw.Type {
	case ChartBar, ChartLine, ChartArea:
		var s CategorySeries
		if err := json.Unmarshal(raw.Data, &s); err != nil {
			return fmt.Errorf("%s: %w", raw.ID, err)
		}
		series = s
	case ChartPie:
		var s PieSeries
		if err := json.Unmarshal(raw.Data, &s); err != nil {
			return fmt.Errorf("%s: %w", raw.ID, err)
		}
		series = s
	case ChartMap:
		var s RegionSeries
		if err := json.Unmarshal(raw.Data, &s); err != nil {
			return fmt.Errorf("%s: %w", raw.ID, err)
		}
		series = s
	case ChartScatter:
		var s ScatterSeries
		if err := json.Unmarshal(raw.Data, &s); err != nil {
			return fmt.Errorf("%s: %w", raw.ID, err)
		}
		series = s
	}

	decoded, err := NewVisualization(raw.ID, raw.Type, raw.Title, series, raw.Config)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
