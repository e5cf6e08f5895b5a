// Package web holds the HTML templates of the dashboard.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DashboardTemplate is the name of the dashboard page template.
const DashboardTemplate = "dashboard.tmpl"

// LegendItem explains one family of summary columns.
type LegendItem struct {
	Column      string
	Description string
}

// SummaryLegend describes the columns of the summary table.
var SummaryLegend = []LegendItem{
	{Column: "num_yield_reports", Description: "the number of available yield observations in the db."},
	{Column: "maX", Description: "the average of the X latest yield observations."},
	{Column: "diff_maX", Description: "the latest yield - the maX."},
}

// Templates parses the embedded templates. It panics if they are invalid,
// which can only happen when the binary was built with a broken template.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.tmpl"))
}

// Funcs returns the helpers available to the templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"cell": FormatCell,
	}
}

// FormatCell renders a summary table value.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
