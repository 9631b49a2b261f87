package collector

import (
	"errors"
	"math"
	"sort"
	"time"

	"MomentumScreener/internal/model"
)

var (
	// ErrMissingClose is returned when a provider response carries no close prices.
	ErrMissingClose = errors.New("close prices not found in response")
	// ErrEmptyBatch is returned when a batch has no symbols.
	ErrEmptyBatch = errors.New("empty batch")
)

// Normalize converts a provider response into a PriceTable. The expected shape is
// chosen by batch size: a single symbol reads raw.Series, more read raw.BySymbol.
// Bars without a positive, finite close are dropped.
func Normalize(batch []string, raw *model.RawPrices) (*model.PriceTable, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	if raw == nil {
		return nil, ErrMissingClose
	}

	series := make(map[string][]model.Bar, len(batch))
	if len(batch) == 1 {
		bars := validBars(raw.Series)
		if len(bars) == 0 {
			return nil, ErrMissingClose
		}
		series[batch[0]] = bars
	} else {
		if len(raw.BySymbol) == 0 {
			return nil, ErrMissingClose
		}
		for _, sym := range batch {
			if bars := validBars(raw.BySymbol[sym]); len(bars) > 0 {
				series[sym] = bars
			}
		}
	}

	return buildTable(batch, series), nil
}

func validBars(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close > 0 && !math.IsInf(b.Close, 1) {
			out = append(out, b)
		}
	}
	return out
}

// buildTable aligns per-symbol bars on the union of their dates.
func buildTable(batch []string, series map[string][]model.Bar) *model.PriceTable {
	index := make(map[time.Time]int)
	var dates []time.Time
	for _, sym := range batch {
		for _, b := range series[sym] {
			d := monthKey(b.Time)
			if _, ok := index[d]; !ok {
				index[d] = 0
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, d := range dates {
		index[d] = i
	}

	t := &model.PriceTable{
		Dates:  dates,
		Closes: make(map[string][]float64, len(batch)),
	}
	for _, sym := range batch {
		bars, ok := series[sym]
		if !ok {
			continue
		}
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, b := range bars {
			col[index[monthKey(b.Time)]] = b.Close
		}
		t.Tickers = append(t.Tickers, sym)
		t.Closes[sym] = col
	}
	return t
}

// monthKey maps a bar to the first day of its calendar month in the bar's own location,
// expressed in UTC, so bars from exchanges in different zones line up on the same row.
func monthKey(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
}
