package model

import "time"

// ReturnRecord is one month-over-month return observation for a ticker.
type ReturnRecord struct {
	Ticker string
	Date   time.Time
	Return float64
}

// SpikeCount is the number of months a ticker returned more than the spike threshold.
type SpikeCount struct {
	Ticker string
	Count  int
}

// RankedEntry is one row of the final momentum ranking.
type RankedEntry struct {
	Ticker        string
	TotalReturn   float64 // compounded over all records
	AverageReturn float64
	Increases     int // month-to-month increases in return
}
