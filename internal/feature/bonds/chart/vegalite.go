// Package chart builds Vega-Lite specifications for the dashboard charts.
package chart

import (
	"time"

	"bond_dashboard/internal/feature/bonds/domain/entity"
)

const (
	schemaURL = "https://vega.github.io/schema/vega-lite/v5.json"
	// Title is shown above the adjusted close chart.
	Title = "Adjusted Close for Multiple Bonds"
)

// Spec is the subset of a Vega-Lite specification used by the dashboard.
type Spec struct {
	Schema   string   `json:"$schema"`
	Title    string   `json:"title"`
	Width    string   `json:"width"`
	Data     Data     `json:"data"`
	Mark     string   `json:"mark"`
	Encoding Encoding `json:"encoding"`
	Params   []Param  `json:"params,omitempty"`
}

// Data holds inline rows.
type Data struct {
	Values []Point `json:"values"`
}

// Point is one plotted row.
type Point struct {
	Date          string  `json:"date"`
	AdjustedClose float64 `json:"adjusted_close"`
	Bond          string  `json:"Bond"`
}

// Encoding maps row fields to visual channels.
type Encoding struct {
	X       Field   `json:"x"`
	Y       Field   `json:"y"`
	Color   Field   `json:"color"`
	Tooltip []Field `json:"tooltip"`
}

// Field is a channel definition.
type Field struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Param is a selection parameter.
type Param struct {
	Name   string `json:"name"`
	Select string `json:"select"`
	Bind   string `json:"bind"`
}

// NewLineChart returns a multi-series line chart of adjusted close over time,
// one color per bond. It returns nil when there is nothing to plot.
func NewLineChart(prices []entity.BondPrice) *Spec {
	if len(prices) == 0 {
		return nil
	}

	values := make([]Point, 0, len(prices))
	for _, p := range prices {
		values = append(values, Point{
			Date:          p.Date.UTC().Format(time.DateOnly),
			AdjustedClose: p.AdjustedClose,
			Bond:          p.Bond,
		})
	}

	date := Field{Field: "date", Type: "temporal"}
	adjClose := Field{Field: "adjusted_close", Type: "quantitative"}
	bond := Field{Field: entity.BondColumn, Type: "nominal"}

	return &Spec{
		Schema: schemaURL,
		Title:  Title,
		Width:  "container",
		Data:   Data{Values: values},
		Mark:   "line",
		Encoding: Encoding{
			X:       date,
			Y:       adjClose,
			Color:   bond,
			Tooltip: []Field{date, adjClose, bond},
		},
		// pan and zoom on both axes
		Params: []Param{{Name: "grid", Select: "interval", Bind: "scales"}},
	}
}
