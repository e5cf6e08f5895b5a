// Package entity defines the domain models for the bonds feature.
package entity

// Series identifies one government bond time series.
// ID is also the name of the database table holding its prices.
type Series struct {
	ID            string `json:"id"`             // e.g. "de10_cdw_uk_10y_gbond"
	DisplayName   string `json:"display_name"`   // e.g. "UK 10Y GBOND"
	SummarySymbol string `json:"summary_symbol"` // e.g. "UK10Y.GBOND"
	Country       string `json:"country"`        // e.g. "UK"
	Maturity      string `json:"maturity"`       // e.g. "10Y"
}

// CountryGroup is the set of series issued by one country, in registry order.
type CountryGroup struct {
	Country string   `json:"country"`
	Series  []Series `json:"series"`
}
