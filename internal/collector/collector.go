package collector

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"MomentumScreener/internal/model"
)

// Batch is one provider request's worth of symbols and, once fetched, its price table.
type Batch struct {
	Symbols []string
	Table   *model.PriceTable
}

// Collector fetches closing prices batch by batch, pausing between requests.
type Collector struct {
	Fetcher   Fetcher
	BatchSize int
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// NewCollector creates a Collector that waits at least pause between batch requests.
func NewCollector(fetcher Fetcher, batchSize int, pause time.Duration, logger *zap.Logger) *Collector {
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &Collector{
		Fetcher:   fetcher,
		BatchSize: batchSize,
		Limiter:   rate.NewLimiter(limit, 1),
		Logger:    logger,
	}
}

// Partition splits symbols into consecutive groups of at most size, preserving order.
func Partition(symbols []string, size int) [][]string {
	if size <= 0 {
		size = len(symbols)
	}
	var out [][]string
	for i := 0; i < len(symbols); i += size {
		end := i + size
		if end > len(symbols) {
			end = len(symbols)
		}
		out = append(out, symbols[i:end])
	}
	return out
}

// Collect fetches every batch in order and returns the ones that succeeded.
// Failed batches are logged and skipped without retry. The only error returned
// is ctx's, when it is cancelled during the inter-batch wait.
func (c *Collector) Collect(ctx context.Context, symbols []string, start, end time.Time) ([]Batch, error) {
	var ok []Batch
	for _, batch := range Partition(symbols, c.BatchSize) {
		if err := c.Limiter.Wait(ctx); err != nil {
			return ok, err
		}

		c.Logger.Info("downloading batch", zap.Int("size", len(batch)), zap.Strings("batch", batch))
		raw, err := c.Fetcher.FetchMonthlyCloses(ctx, batch, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return ok, ctx.Err()
			}
			c.Logger.Warn("batch download failed, skipping",
				zap.String("source", c.Fetcher.Name()), zap.Strings("batch", batch), zap.Error(err))
			continue
		}

		table, err := Normalize(batch, raw)
		if err != nil {
			c.Logger.Warn("batch response unusable, skipping", zap.Strings("batch", batch), zap.Error(err))
			continue
		}
		ok = append(ok, Batch{Symbols: batch, Table: table})
	}
	return ok, nil
}
