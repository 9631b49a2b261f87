package collector

import (
	"context"
	"time"

	"MomentumScreener/internal/model"
)

// Fetcher defines the interface for fetching monthly closing prices for a batch of symbols.
//
// Implementations return RawPrices.Series when len(symbols) == 1 and RawPrices.BySymbol
// otherwise, mirroring how market-data APIs answer single and multi-symbol requests.
type Fetcher interface {
	FetchMonthlyCloses(ctx context.Context, symbols []string, start, end time.Time) (*model.RawPrices, error)
	Name() string
}
