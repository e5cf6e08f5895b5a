// Package dto defines data transfer objects for the bonds HTTP API.
package dto

// SeriesItem represents a series in API responses.
type SeriesItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Country  string `json:"country"`
	Maturity string `json:"maturity"`
}

// CountryGroup lists the series of one country.
type CountryGroup struct {
	Country string       `json:"country"`
	Series  []SeriesItem `json:"series"`
}
