package calculator

import (
	"math"

	"MomentumScreener/internal/model"
)

// PercentChange returns p2/p1 - 1.
func PercentChange(p1, p2 float64) float64 {
	return p2/p1 - 1
}

// MonthlyReturns computes period-over-period returns for every ticker column in the table
// and reshapes them into long-form records, ticker by ticker in table order.
// Missing cells are skipped; the first observed month of each ticker has no return.
func MonthlyReturns(table *model.PriceTable) []model.ReturnRecord {
	var records []model.ReturnRecord
	for _, ticker := range table.Tickers {
		closes := table.Closes[ticker]
		prev := math.NaN()
		for i, c := range closes {
			if math.IsNaN(c) {
				continue
			}
			if !math.IsNaN(prev) {
				records = append(records, model.ReturnRecord{
					Ticker: ticker,
					Date:   table.Dates[i],
					Return: PercentChange(prev, c),
				})
			}
			prev = c
		}
	}
	return records
}
