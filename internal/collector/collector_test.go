package collector

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MomentumScreener/internal/model"
)

var jan = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPartition(t *testing.T) {
	syms := []string{"A", "B", "C", "D", "E"}
	assert.Equal(t, [][]string{{"A", "B"}, {"C", "D"}, {"E"}}, Partition(syms, 2))
	assert.Equal(t, [][]string{{"A", "B", "C", "D", "E"}}, Partition(syms, 50))
	assert.Empty(t, Partition(nil, 50))
}

func TestNormalize_SingleSeries(t *testing.T) {
	raw := &model.RawPrices{Series: MonthlyBars(jan, 10, 11)}
	table, err := Normalize([]string{"AAPL"}, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, table.Tickers)
	assert.Equal(t, []float64{10, 11}, table.Closes["AAPL"])
	assert.Equal(t, 2, table.Len())
}

func TestNormalize_MissingClose(t *testing.T) {
	_, err := Normalize([]string{"AAPL"}, &model.RawPrices{})
	assert.ErrorIs(t, err, ErrMissingClose)

	_, err = Normalize([]string{"A", "B"}, &model.RawPrices{Series: MonthlyBars(jan, 1)})
	assert.ErrorIs(t, err, ErrMissingClose)

	_, err = Normalize(nil, &model.RawPrices{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestNormalize_MultiAlignsDates(t *testing.T) {
	raw := &model.RawPrices{BySymbol: map[string][]model.Bar{
		"A": MonthlyBars(jan, 1, 2, 3),
		// B starts a month later, with a mid-month timestamp
		"B": {{Time: jan.AddDate(0, 1, 14), Close: 5}, {Time: jan.AddDate(0, 2, 0), Close: 6}},
	}}
	table, err := Normalize([]string{"A", "B", "C"}, raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Tickers)
	require.Len(t, table.Dates, 3)
	assert.Equal(t, jan, table.Dates[0])
	assert.True(t, math.IsNaN(table.Closes["B"][0]))
	assert.Equal(t, 5.0, table.Closes["B"][1])
	assert.Equal(t, 6.0, table.Closes["B"][2])
}

func TestNormalize_DropsNonPositiveCloses(t *testing.T) {
	raw := &model.RawPrices{BySymbol: map[string][]model.Bar{
		"A": MonthlyBars(jan, 0, 10, 11),
		"B": MonthlyBars(jan, 0, 0),
		"C": MonthlyBars(jan, math.NaN(), -1, 4),
	}}
	table, err := Normalize([]string{"A", "B", "C"}, raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, table.Tickers)
	assert.True(t, math.IsNaN(table.Closes["A"][0]))
	assert.Equal(t, 10.0, table.Closes["A"][1])
	assert.True(t, math.IsNaN(table.Closes["C"][1]))
	assert.Equal(t, 4.0, table.Closes["C"][2])

	_, err = Normalize([]string{"B"}, &model.RawPrices{Series: MonthlyBars(jan, 0, 0)})
	assert.ErrorIs(t, err, ErrMissingClose)
}

func TestCollect_SkipsFailedBatch(t *testing.T) {
	mock := &MockFetcher{
		Data: map[string][]model.Bar{
			"A": MonthlyBars(jan, 1, 2),
			"B": MonthlyBars(jan, 3, 4),
			"C": MonthlyBars(jan, 5, 6),
			"D": MonthlyBars(jan, 7, 8),
			"E": MonthlyBars(jan, 9, 10),
		},
		Fail: map[string]bool{"C": true},
	}
	c := NewCollector(mock, 2, 0, zap.NewNop())

	batches, err := c.Collect(context.Background(), []string{"A", "B", "C", "D", "E"}, jan, jan.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Len(t, mock.Calls, 3, "no retries")
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"A", "B"}, batches[0].Symbols)
	assert.Equal(t, []string{"E"}, batches[1].Symbols)
	assert.Equal(t, []float64{9, 10}, batches[1].Table.Closes["E"])
}

func TestCollect_SingleTickerWithoutData(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.Bar{"A": MonthlyBars(jan, 1, 2)}}
	c := NewCollector(mock, 1, 0, zap.NewNop())

	batches, err := c.Collect(context.Background(), []string{"A", "ZZZ"}, jan, jan.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"A"}, batches[0].Symbols)
}

func TestCollect_PausesBetweenBatches(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.Bar{}}
	c := NewCollector(mock, 1, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := c.Collect(context.Background(), []string{"A", "B", "C"}, jan, jan)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, mock.Calls, 3)
}

func TestCollect_CancelledContext(t *testing.T) {
	mock := &MockFetcher{}
	c := NewCollector(mock, 1, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Collect(ctx, []string{"A", "B"}, jan, jan)
	assert.ErrorIs(t, err, context.Canceled)
}
