package collector

import (
	"context"
	"fmt"
	"time"

	"MomentumScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data  map[string][]model.Bar
	Fail  map[string]bool // any batch containing one of these symbols errors
	Calls [][]string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMonthlyCloses(_ context.Context, symbols []string, start, end time.Time) (*model.RawPrices, error) {
	m.Calls = append(m.Calls, append([]string(nil), symbols...))
	for _, sym := range symbols {
		if m.Fail[sym] {
			return nil, fmt.Errorf("mock: request failed for %s", sym)
		}
	}

	if len(symbols) == 1 {
		return &model.RawPrices{Series: m.window(symbols[0], start, end)}, nil
	}
	bySymbol := make(map[string][]model.Bar)
	for _, sym := range symbols {
		if bars := m.window(sym, start, end); len(bars) > 0 {
			bySymbol[sym] = bars
		}
	}
	return &model.RawPrices{BySymbol: bySymbol}, nil
}

func (m *MockFetcher) window(symbol string, start, end time.Time) []model.Bar {
	var out []model.Bar
	for _, b := range m.Data[symbol] {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// MonthlyBars builds consecutive month-start bars from the given closes, starting at first.
func MonthlyBars(first time.Time, closes ...float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: first.AddDate(0, i, 0), Close: c}
	}
	return bars
}
