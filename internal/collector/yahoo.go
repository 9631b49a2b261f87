package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
	_ "time/tzdata"

	"MomentumScreener/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// errNoChartData marks a symbol the chart API knows nothing about in the requested range.
var errNoChartData = errors.New("yahoo: no data returned")

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

type yahooQuote struct {
	Close []*float64 `json:"close"`
}

type yahooAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				GmtOffset            int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote    []yahooQuote    `json:"quote"`
				AdjClose []yahooAdjClose `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchMonthlyCloses requests one chart per symbol. A symbol without data is left out of a
// multi-symbol response; any other failure fails the whole batch.
func (f *YahooFetcher) FetchMonthlyCloses(ctx context.Context, symbols []string, start, end time.Time) (*model.RawPrices, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(symbols) == 1 {
		bars, err := f.fetchChart(ctx, symbols[0], start, end)
		if err != nil && !errors.Is(err, errNoChartData) {
			return nil, err
		}
		return &model.RawPrices{Series: bars}, nil
	}

	bySymbol := make(map[string][]model.Bar, len(symbols))
	for _, sym := range symbols {
		bars, err := f.fetchChart(ctx, sym, start, end)
		if errors.Is(err, errNoChartData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sym, err)
		}
		bySymbol[sym] = bars
	}
	return &model.RawPrices{BySymbol: bySymbol}, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1mo")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errNoChartData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, errNoChartData
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errNoChartData
	}

	result := chart.Chart.Result[0]
	closes := pickCloses(result.Indicators.AdjClose, result.Indicators.Quote)
	if closes == nil {
		return nil, errNoChartData
	}

	// month bars start at exchange-local midnight
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GmtOffset)
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // null or zero bars
		}
		bars = append(bars, model.Bar{Time: time.Unix(ts, 0).In(loc), Close: *closes[i]})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// exchangeLocation resolves the exchange's time zone, falling back to its current UTC offset.
func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset == 0 {
		return time.UTC
	}
	return time.FixedZone(name, gmtOffset)
}

// pickCloses prefers the dividend/split adjusted close and falls back to the raw close.
func pickCloses(adj []yahooAdjClose, quote []yahooQuote) []*float64 {
	if len(adj) > 0 && len(adj[0].AdjClose) > 0 {
		return adj[0].AdjClose
	}
	if len(quote) > 0 && len(quote[0].Close) > 0 {
		return quote[0].Close
	}
	return nil
}
