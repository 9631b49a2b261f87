package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MomentumScreener/internal/calculator"
	"MomentumScreener/internal/collector"
	"MomentumScreener/internal/model"
	"MomentumScreener/internal/ranker"
	"MomentumScreener/internal/report"
)

// ErrNoData is returned when no batch produced any return records.
var ErrNoData = errors.New("no data was collected")

// Options are the fixed parameters of a run.
type Options struct {
	LookbackDays   int
	SpikeThreshold float64
}

// Result is everything one run produced.
type Result struct {
	Summary *model.RunSummary
	Records []model.ReturnRecord // sorted by ticker, then date
	Spikes  []model.SpikeCount
	Ranking []model.RankedEntry
	Files   []string
}

// accumulator collects per-batch records as the run moves forward.
type accumulator struct {
	records []model.ReturnRecord
}

func (a *accumulator) add(recs []model.ReturnRecord) {
	a.records = append(a.records, recs...)
}

// Pipeline runs fetch → returns → ranking → report for a ticker list.
type Pipeline struct {
	Collector *collector.Collector
	Writer    *report.Writer
	Options   Options
	Logger    *zap.Logger
	Now       func() time.Time
}

// New creates a Pipeline.
func New(col *collector.Collector, w *report.Writer, opts Options, logger *zap.Logger) *Pipeline {
	return &Pipeline{Collector: col, Writer: w, Options: opts, Logger: logger, Now: time.Now}
}

// Run executes one pass. When no records were collected it returns the partial result
// together with ErrNoData and writes no files.
func (p *Pipeline) Run(ctx context.Context, symbols []string, trigger model.TriggerType) (*Result, error) {
	end := p.Now()
	start := end.AddDate(0, 0, -p.Options.LookbackDays)

	summary := &model.RunSummary{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Source:    p.Collector.Fetcher.Name(),
		StartedAt: end,
		Tickers:   len(symbols),
	}
	res := &Result{Summary: summary}
	p.Logger.Info("run started",
		zap.String("run_id", summary.ID), zap.Int("tickers", len(symbols)),
		zap.Time("from", start), zap.Time("to", end))

	batches, err := p.Collector.Collect(ctx, symbols, start, end)
	if err != nil {
		return res, fmt.Errorf("collect: %w", err)
	}

	all := collector.Partition(symbols, p.Collector.BatchSize)
	summary.BatchesTotal = len(all)
	summary.BatchesFailed = len(all) - len(batches)
	summary.FailedTickers = failedTickers(symbols, batches)

	acc := &accumulator{}
	for _, b := range batches {
		acc.add(calculator.MonthlyReturns(b.Table))
	}
	summary.Records = len(acc.records)
	if len(acc.records) == 0 {
		summary.FinishedAt = p.Now()
		return res, ErrNoData
	}

	ranker.SortRecords(acc.records)
	res.Records = acc.records
	res.Spikes = ranker.Spikes(acc.records, p.Options.SpikeThreshold)
	res.Ranking = ranker.Rank(acc.records)
	summary.Ranked = len(res.Ranking)

	files, err := p.Writer.WriteAll(res.Records, res.Spikes, res.Ranking)
	res.Files = files
	summary.FinishedAt = p.Now()
	if err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}

	p.Logger.Info("run finished",
		zap.String("run_id", summary.ID),
		zap.Int("records", summary.Records), zap.Int("ranked", summary.Ranked),
		zap.Int("failed_batches", summary.BatchesFailed))
	return res, nil
}

// failedTickers lists symbols that belong to no successful batch, in input order.
func failedTickers(symbols []string, ok []collector.Batch) []string {
	fetched := make(map[string]bool)
	for _, b := range ok {
		for _, s := range b.Symbols {
			fetched[s] = true
		}
	}
	var out []string
	for _, s := range symbols {
		if !fetched[s] {
			out = append(out, s)
		}
	}
	return out
}
