package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"MomentumScreener/internal/model"
)

// Output file names.
const (
	MonthlyFile = "monthly_momentum.csv"
	SpikesFile  = "momentum_spikes.csv"
	RankedFile  = "ranked_stocks.csv"
)

const dateLayout = "2006-01-02"

var (
	monthlyHeader = []string{"Date", "Ticker", "Monthly Return"}
	spikesHeader  = []string{"Ticker", "Months > 5% Return"}
	rankedHeader  = []string{"Ticker", "12-Month Return", "Average Monthly Return", "Month-to-Month Increases"}
)

// formatFloat renders v at full precision (shortest representation that round-trips).
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MonthlyRows renders return records in the order given.
func MonthlyRows(records []model.ReturnRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Date.Format(dateLayout), r.Ticker, formatFloat(r.Return)}
	}
	return rows
}

// SpikeRows renders spike counts in the order given.
func SpikeRows(spikes []model.SpikeCount) [][]string {
	rows := make([][]string, len(spikes))
	for i, s := range spikes {
		rows[i] = []string{s.Ticker, strconv.Itoa(s.Count)}
	}
	return rows
}

// RankedRows renders the ranking in the order given.
func RankedRows(ranking []model.RankedEntry) [][]string {
	rows := make([][]string, len(ranking))
	for i, e := range ranking {
		rows[i] = []string{e.Ticker, formatFloat(e.TotalReturn), formatFloat(e.AverageReturn), strconv.Itoa(e.Increases)}
	}
	return rows
}

// WriteCSV writes a header row followed by rows to path, replacing any existing file.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
