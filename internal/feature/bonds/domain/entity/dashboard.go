package entity

// Fetch stages reported in SeriesError.
const (
	StagePrices  = "prices"
	StageSummary = "summary"
)

// BondColumn is the column added to combined tables to name the series of each row.
const BondColumn = "Bond"

// SeriesError records a failed fetch for one selected series.
type SeriesError struct {
	Series  Series `json:"series"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Dashboard is everything rendered for one selection of series.
type Dashboard struct {
	Selected []Series      `json:"selected"`
	Prices   []BondPrice   `json:"prices"`
	Summary  SummaryTable  `json:"summary"`
	Errors   []SeriesError `json:"errors"`
}

// HasChart reports whether any price rows were collected.
func (d Dashboard) HasChart() bool {
	return len(d.Prices) > 0
}

// HasSummary reports whether any summary rows were collected.
func (d Dashboard) HasSummary() bool {
	return d.Summary.Len() > 0
}

// IsSelected reports whether the series with the given ID is part of the selection.
func (d Dashboard) IsSelected(id string) bool {
	for _, s := range d.Selected {
		if s.ID == id {
			return true
		}
	}
	return false
}
