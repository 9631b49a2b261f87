package model

import "time"

// Bar is a single closing-price observation.
type Bar struct {
	Time  time.Time
	Close float64
}

// RawPrices is a provider response before normalization. Exactly one of
// Series (single-ticker request) or BySymbol (multi-ticker request) is set.
type RawPrices struct {
	Series   []Bar
	BySymbol map[string][]Bar
}

// PriceTable holds closing prices indexed by date and ticker.
// Dates are ascending; Closes[ticker] has one entry per date, NaN where missing.
type PriceTable struct {
	Dates   []time.Time
	Tickers []string
	Closes  map[string][]float64
}

// Len returns the number of dates in the table.
func (t *PriceTable) Len() int { return len(t.Dates) }
