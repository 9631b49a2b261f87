package report

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"MomentumScreener/internal/model"
)

// Writer writes run outputs into a directory.
type Writer struct {
	Dir    string
	Excel  bool
	Logger *zap.Logger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, excel bool, logger *zap.Logger) *Writer {
	return &Writer{Dir: dir, Excel: excel, Logger: logger}
}

// WriteAll writes the three CSV files (and the workbook when enabled) and returns their paths.
// records are written in the order given.
func (w *Writer) WriteAll(records []model.ReturnRecord, spikes []model.SpikeCount, ranking []model.RankedEntry) ([]string, error) {
	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{MonthlyFile, monthlyHeader, MonthlyRows(records)},
		{SpikesFile, spikesHeader, SpikeRows(spikes)},
		{RankedFile, rankedHeader, RankedRows(ranking)},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(w.Dir, f.name)
		if err := WriteCSV(path, f.header, f.rows); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		w.Logger.Info("saved", zap.String("file", path), zap.Int("rows", len(f.rows)))
		written = append(written, path)
	}

	if w.Excel {
		path := filepath.Join(w.Dir, ExcelFile)
		if err := WriteExcel(path, records, spikes, ranking); err != nil {
			return written, fmt.Errorf("write %s: %w", ExcelFile, err)
		}
		w.Logger.Info("saved", zap.String("file", path))
		written = append(written, path)
	}
	return written, nil
}
