package ranker

import (
	"sort"

	"MomentumScreener/internal/calculator"
	"MomentumScreener/internal/model"
)

// SortRecords orders records by ticker, then date, in place.
func SortRecords(records []model.ReturnRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Ticker != records[j].Ticker {
			return records[i].Ticker < records[j].Ticker
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// groupByTicker returns each ticker's returns in ascending date order.
func groupByTicker(records []model.ReturnRecord) (map[string][]float64, []string) {
	sorted := append([]model.ReturnRecord(nil), records...)
	SortRecords(sorted)

	groups := make(map[string][]float64)
	var tickers []string
	for _, r := range sorted {
		if _, ok := groups[r.Ticker]; !ok {
			tickers = append(tickers, r.Ticker)
		}
		groups[r.Ticker] = append(groups[r.Ticker], r.Return)
	}
	return groups, tickers
}

// Spikes counts, per ticker, the months whose return exceeds threshold.
// Every ticker with records is listed, including those with zero spikes,
// highest count first and ties by ticker.
func Spikes(records []model.ReturnRecord, threshold float64) []model.SpikeCount {
	groups, tickers := groupByTicker(records)
	out := make([]model.SpikeCount, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, model.SpikeCount{Ticker: t, Count: calculator.CountAbove(groups[t], threshold)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Rank builds the momentum ranking: total compounded return, average return and
// month-to-month increases, joined on ticker. A ticker missing any one metric is dropped.
// Ordered by total return, then increases, both descending.
func Rank(records []model.ReturnRecord) []model.RankedEntry {
	groups, tickers := groupByTicker(records)

	total := make(map[string]float64, len(tickers))
	avg := make(map[string]float64, len(tickers))
	increases := make(map[string]int, len(tickers))
	for _, t := range tickers {
		rs := groups[t]
		if v, err := calculator.CompoundReturn(rs); err == nil {
			total[t] = v
		}
		if v, err := calculator.MeanReturn(rs); err == nil {
			avg[t] = v
		}
		increases[t] = calculator.CountIncreases(rs)
	}

	out := make([]model.RankedEntry, 0, len(tickers))
	for _, t := range tickers {
		tr, ok1 := total[t]
		ar, ok2 := avg[t]
		inc, ok3 := increases[t]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out = append(out, model.RankedEntry{Ticker: t, TotalReturn: tr, AverageReturn: ar, Increases: inc})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalReturn != out[j].TotalReturn {
			return out[i].TotalReturn > out[j].TotalReturn
		}
		return out[i].Increases > out[j].Increases
	})
	return out
}
