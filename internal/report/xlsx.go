package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"MomentumScreener/internal/model"
)

// ExcelFile is the optional workbook holding all three tables.
const ExcelFile = "momentum.xlsx"

// WriteExcel writes the monthly returns, spikes and ranking to one workbook,
// one sheet each, keeping numeric cells numeric.
func WriteExcel(path string, records []model.ReturnRecord, spikes []model.SpikeCount, ranking []model.RankedEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Monthly"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	monthly := make([][]interface{}, len(records))
	for i, r := range records {
		monthly[i] = []interface{}{r.Date.Format(dateLayout), r.Ticker, r.Return}
	}
	if err := writeSheet(f, "Monthly", monthlyHeader, monthly); err != nil {
		return err
	}

	spikeRows := make([][]interface{}, len(spikes))
	for i, s := range spikes {
		spikeRows[i] = []interface{}{s.Ticker, s.Count}
	}
	if err := writeSheet(f, "Spikes", spikesHeader, spikeRows); err != nil {
		return err
	}

	ranked := make([][]interface{}, len(ranking))
	for i, e := range ranking {
		ranked[i] = []interface{}{e.Ticker, e.TotalReturn, e.AverageReturn, e.Increases}
	}
	if err := writeSheet(f, "Ranked", rankedHeader, ranked); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}
