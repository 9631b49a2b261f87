package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"MomentumScreener/internal/model"
)

// alpacaBarsClient is the subset of the Alpaca market data client this fetcher uses.
type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca's market data API.
type AlpacaFetcher struct {
	Client alpacaBarsClient
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
// An empty baseURL uses the SDK default.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchMonthlyCloses uses GetBars for a single symbol and GetMultiBars otherwise.
// The SDK does not take a context, so ctx is only checked before the call.
func (f *AlpacaFetcher) FetchMonthlyCloses(ctx context.Context, symbols []string, start, end time.Time) (*model.RawPrices, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := marketdata.GetBarsRequest{
		TimeFrame:  marketdata.NewTimeFrame(1, marketdata.Month),
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
	}

	if len(symbols) == 1 {
		bars, err := f.Client.GetBars(symbols[0], req)
		if err != nil {
			return nil, fmt.Errorf("alpaca get bars: %w", err)
		}
		return &model.RawPrices{Series: convertAlpacaBars(bars)}, nil
	}

	multi, err := f.Client.GetMultiBars(symbols, req)
	if err != nil {
		return nil, fmt.Errorf("alpaca get multi bars: %w", err)
	}
	bySymbol := make(map[string][]model.Bar, len(multi))
	for sym, bars := range multi {
		if len(bars) == 0 {
			continue
		}
		bySymbol[sym] = convertAlpacaBars(bars)
	}
	return &model.RawPrices{BySymbol: bySymbol}, nil
}

func convertAlpacaBars(bars []marketdata.Bar) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		out = append(out, model.Bar{Time: b.Timestamp.UTC(), Close: b.Close})
	}
	return out
}
