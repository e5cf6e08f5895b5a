package entity

import "time"

// PricePoint is one row of a series table.
type PricePoint struct {
	Date          time.Time `json:"date"`
	AdjustedClose float64   `json:"adjusted_close"`
}

// BondPrice is a PricePoint tagged with the display name of its series.
type BondPrice struct {
	Bond          string    `json:"Bond"`
	Date          time.Time `json:"date"`
	AdjustedClose float64   `json:"adjusted_close"`
}
