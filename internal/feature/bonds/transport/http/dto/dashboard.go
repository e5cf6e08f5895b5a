package dto

// PriceResponse is one row of a single series.
type PriceResponse struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	AdjustedClose float64 `json:"adjusted_close"`
}

// BondPriceResponse is one row of the combined price table.
type BondPriceResponse struct {
	Bond          string  `json:"Bond"`
	Date          string  `json:"date"`
	AdjustedClose float64 `json:"adjusted_close"`
}

// SummaryResponse is a summary table.
type SummaryResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// SeriesErrorResponse reports a failed fetch for one series.
type SeriesErrorResponse struct {
	SeriesID string `json:"series_id"`
	Bond     string `json:"bond"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// DashboardResponse is the JSON form of the dashboard page.
type DashboardResponse struct {
	Selected []SeriesItem          `json:"selected"`
	Prices   []BondPriceResponse   `json:"prices"`
	Summary  SummaryResponse       `json:"summary"`
	Errors   []SeriesErrorResponse `json:"errors"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
